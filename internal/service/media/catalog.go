package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/oshokin/vidstash/internal/logger"
	"github.com/oshokin/vidstash/internal/storage"
)

const (
	// CatalogKey is the storage key of the catalog snapshot.
	CatalogKey = "VIDEO_LIST_STORAGE"
	// AvailabilityKey is the storage key of the available ids.
	AvailabilityKey = "DOWNLOADED_VIDEO_IDS"

	// itemIndexSize bounds the id lookup cache.
	itemIndexSize = 4096
)

// Catalog is the durable copy of the catalog snapshot and the availability set.
type Catalog interface {
	// Load returns the persisted snapshot, or ErrEmptyCatalog when there is none.
	Load(ctx context.Context) ([]*MediaItem, error)
	// Save replaces the persisted snapshot.
	Save(ctx context.Context, items []*MediaItem) error
	// Lookup returns one item of the snapshot by id, or ErrUnknownItem.
	Lookup(ctx context.Context, id string) (*MediaItem, error)
	// LoadAvailability returns the persisted availability set.
	LoadAvailability(ctx context.Context) (AvailabilitySet, error)
	// MarkAvailable adds id to the availability set and persists it before returning.
	MarkAvailable(ctx context.Context, id string) error
}

// PersistentCatalog implements Catalog on top of a key-value store.
// Values are JSON: an array of items under CatalogKey and an array of ids under AvailabilityKey.
type PersistentCatalog struct {
	store storage.Store
	// index caches items by id for Lookup.
	index *lru.Cache[string, *MediaItem]

	// mu serializes the read-modify-write of the availability set.
	mu sync.Mutex
	// available is the last persisted availability set; nil until first read.
	available AvailabilitySet
}

// NewPersistentCatalog creates a catalog backed by store.
func NewPersistentCatalog(store storage.Store) (*PersistentCatalog, error) {
	index, err := lru.New[string, *MediaItem](itemIndexSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create item index: %w", err)
	}

	return &PersistentCatalog{
		store: store,
		index: index,
	}, nil
}

// Load returns the persisted snapshot.
func (c *PersistentCatalog) Load(ctx context.Context) ([]*MediaItem, error) {
	raw, err := c.store.Get(ctx, CatalogKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, ErrEmptyCatalog
	}

	if err != nil {
		return nil, &PersistenceError{Op: "read", Key: CatalogKey, Err: err}
	}

	var items []*MediaItem
	if err = json.Unmarshal(raw, &items); err != nil {
		return nil, &PersistenceError{Op: "decode", Key: CatalogKey, Err: err}
	}

	items = compactItems(items)
	if len(items) == 0 {
		return nil, ErrEmptyCatalog
	}

	c.reindex(items)

	return items, nil
}

// Save replaces the persisted snapshot.
func (c *PersistentCatalog) Save(ctx context.Context, items []*MediaItem) error {
	items = compactItems(items)

	raw, err := json.Marshal(items)
	if err != nil {
		return &PersistenceError{Op: "encode", Key: CatalogKey, Err: err}
	}

	if err = c.store.Set(ctx, CatalogKey, raw); err != nil {
		return &PersistenceError{Op: "write", Key: CatalogKey, Err: err}
	}

	c.reindex(items)

	logger.Debugf(ctx, "Saved catalog snapshot with %d items", len(items))

	return nil
}

// Lookup returns one item by id, loading the snapshot on a cache miss.
func (c *PersistentCatalog) Lookup(ctx context.Context, id string) (*MediaItem, error) {
	if item, ok := c.index.Get(id); ok {
		return item, nil
	}

	items, err := c.Load(ctx)
	if errors.Is(err, ErrEmptyCatalog) {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownItem, id)
	}

	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if item.ID == id {
			return item, nil
		}
	}

	return nil, fmt.Errorf("%w: '%s'", ErrUnknownItem, id)
}

// LoadAvailability returns a copy of the persisted availability set.
// A missing entry is an empty set.
func (c *PersistentCatalog) LoadAvailability(ctx context.Context) (AvailabilitySet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	set, err := c.availabilityLocked(ctx)
	if err != nil {
		return nil, err
	}

	return set.Clone(), nil
}

// MarkAvailable adds id to the availability set and persists the whole set.
// Marking an id that is already persisted writes nothing.
func (c *PersistentCatalog) MarkAvailable(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	set, err := c.availabilityLocked(ctx)
	if err != nil {
		return err
	}

	if set.Has(id) {
		return nil
	}

	next := set.Clone()
	next.Add(id)

	raw, err := json.Marshal(next.IDs())
	if err != nil {
		return &PersistenceError{Op: "encode", Key: AvailabilityKey, Err: err}
	}

	if err = c.store.Set(ctx, AvailabilityKey, raw); err != nil {
		return &PersistenceError{Op: "write", Key: AvailabilityKey, Err: err}
	}

	c.available = next

	return nil
}

func (c *PersistentCatalog) availabilityLocked(ctx context.Context) (AvailabilitySet, error) {
	if c.available != nil {
		return c.available, nil
	}

	raw, err := c.store.Get(ctx, AvailabilityKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		c.available = NewAvailabilitySet()

		return c.available, nil
	}

	if err != nil {
		return nil, &PersistenceError{Op: "read", Key: AvailabilityKey, Err: err}
	}

	var ids []string
	if err = json.Unmarshal(raw, &ids); err != nil {
		// The next MarkAvailable overwrites the unreadable entry.
		logger.Warnf(ctx, "Discarding unreadable %s: %v",
			AvailabilityKey, &PersistenceError{Op: "decode", Key: AvailabilityKey, Err: err})

		c.available = NewAvailabilitySet()

		return c.available, nil
	}

	c.available = NewAvailabilitySet(ids...)

	return c.available, nil
}

func (c *PersistentCatalog) reindex(items []*MediaItem) {
	c.index.Purge()

	for _, item := range items {
		c.index.Add(item.ID, item)
	}
}

// compactItems drops nil entries and entries without an id, keeping the first of duplicate ids.
func compactItems(items []*MediaItem) []*MediaItem {
	seen := make(map[string]struct{}, len(items))
	result := make([]*MediaItem, 0, len(items))

	for _, item := range items {
		if item == nil || item.ID == "" {
			continue
		}

		if _, ok := seen[item.ID]; ok {
			continue
		}

		seen[item.ID] = struct{}{}

		result = append(result, item)
	}

	return result
}
