package media

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oshokin/vidstash/internal/client/media"
	"github.com/oshokin/vidstash/internal/logger"
)

// Download is the caller's view of one requested download.
// Requests coalesced onto the same transfer share a Download.
type Download struct {
	itemID string
	done   chan struct{}
	once   sync.Once
	path   string
	err    error
}

func newDownload(itemID string) *Download {
	return &Download{
		itemID: itemID,
		done:   make(chan struct{}),
	}
}

func newResolvedDownload(itemID, path string) *Download {
	download := newDownload(itemID)
	download.resolve(path, nil)

	return download
}

// ItemID returns the id of the requested item.
func (d *Download) ItemID() string {
	return d.itemID
}

// Done is closed once the download has an outcome.
func (d *Download) Done() <-chan struct{} {
	return d.done
}

// Wait blocks until the download finishes or ctx is done.
// On success it returns the local path.
func (d *Download) Wait(ctx context.Context) (string, error) {
	select {
	case <-d.done:
		return d.path, d.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (d *Download) resolve(path string, err error) {
	d.once.Do(func() {
		d.path = path
		d.err = err

		close(d.done)
	})
}

// activeTransfer is the coordinator's bookkeeping for one in-flight download.
type activeTransfer struct {
	generation uint64
	download   *Download
	cancel     context.CancelFunc
	// previous is a cancelled transfer of the same item that must release the temporary file first.
	previous *activeTransfer
	finished chan struct{}
}

// CoordinatorOptions holds the collaborators of a Coordinator.
type CoordinatorOptions struct {
	Client       media.Client
	Catalog      Catalog
	Content      ContentStore
	Engine       TransferEngine
	Connectivity ConnectivityChecker
	// MaxConcurrentDownloads bounds running transfers; values below 1 mean 1.
	MaxConcurrentDownloads int64
}

// Coordinator owns the download records and the in-memory availability set.
// It is the only writer of both; transfers report back through their progress channel and outcome.
type Coordinator struct {
	client       media.Client
	catalog      Catalog
	content      ContentStore
	engine       TransferEngine
	connectivity ConnectivityChecker
	resolver     *Resolver

	// lifetime is cancelled by Shutdown and parents every transfer.
	lifetime       context.Context //nolint:containedctx // Transfers outlive the requests that start them.
	cancelLifetime context.CancelFunc
	semaphore      chan struct{}
	transfers      sync.WaitGroup

	mu         sync.RWMutex
	items      []*MediaItem
	records    map[string]*DownloadRecord
	available  AvailabilitySet
	active     map[string]*activeTransfer
	cancelling map[string]*activeTransfer
	generation uint64
	stats      Statistics
	closed     bool

	subscribersMu    sync.RWMutex
	subscribers      map[uint64]chan StatusUpdate
	nextSubscriberID uint64
}

// NewCoordinator creates a coordinator. Call LoadLibrary before serving requests.
func NewCoordinator(opts CoordinatorOptions) *Coordinator {
	maxConcurrent := max(opts.MaxConcurrentDownloads, 1)
	lifetime, cancel := context.WithCancel(context.Background())

	coordinator := &Coordinator{
		client:         opts.Client,
		catalog:        opts.Catalog,
		content:        opts.Content,
		engine:         opts.Engine,
		connectivity:   opts.Connectivity,
		lifetime:       lifetime,
		cancelLifetime: cancel,
		semaphore:      make(chan struct{}, maxConcurrent),
		records:        make(map[string]*DownloadRecord),
		available:      NewAvailabilitySet(),
		active:         make(map[string]*activeTransfer),
		cancelling:     make(map[string]*activeTransfer),
		stats:          Statistics{StartTime: time.Now()},
		subscribers:    make(map[uint64]chan StatusUpdate),
	}

	coordinator.resolver = NewResolver(coordinator, opts.Content)

	return coordinator
}

// Resolver returns the resolver bound to this coordinator.
func (c *Coordinator) Resolver() *Resolver {
	return c.resolver
}

// LoadLibrary loads the persisted catalog, falling back to the remote catalog when nothing is stored,
// and reloads the availability set. A remote catalog is persisted for the next start.
func (c *Coordinator) LoadLibrary(ctx context.Context) ([]*MediaItem, error) {
	items, err := c.catalog.Load(ctx)
	if err != nil {
		var persistenceErr *PersistenceError
		if !errors.Is(err, ErrEmptyCatalog) && !errors.As(err, &persistenceErr) {
			return nil, err
		}

		if persistenceErr != nil {
			logger.Warnf(ctx, "Failed to load persisted catalog, fetching it again: %v", err)
		}

		items, err = c.fetchRemoteCatalog(ctx)
		if err != nil {
			return nil, err
		}
	} else {
		logger.Debugf(ctx, "Loaded %d items from the persisted catalog", len(items))
	}

	available, err := c.catalog.LoadAvailability(ctx)
	if err != nil {
		logger.Warnf(ctx, "Failed to load downloaded video ids: %v", err)

		available = NewAvailabilitySet()
	}

	c.mu.Lock()
	c.items = items

	for id := range available {
		c.available.Add(id)
	}
	c.mu.Unlock()

	return items, nil
}

func (c *Coordinator) fetchRemoteCatalog(ctx context.Context) ([]*MediaItem, error) {
	if !c.connectivity.IsConnected(ctx) {
		return nil, fmt.Errorf("no persisted catalog: %w", ErrOffline)
	}

	videos, err := c.client.FetchCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch remote catalog: %w", err)
	}

	items := make([]*MediaItem, 0, len(videos))
	for _, video := range videos {
		items = append(items, NewMediaItem(video))
	}

	items = compactItems(items)
	if len(items) == 0 {
		return nil, ErrEmptyCatalog
	}

	if err = c.catalog.Save(ctx, items); err != nil {
		logger.Warnf(ctx, "Failed to persist catalog: %v", err)
	}

	logger.Infof(ctx, "Fetched %d videos from the remote catalog", len(items))

	return items, nil
}

// Items returns the combined view of every catalog item, in catalog order.
func (c *Coordinator) Items() []ItemView {
	c.mu.RLock()
	defer c.mu.RUnlock()

	views := make([]ItemView, 0, len(c.items))
	for _, item := range c.items {
		views = append(views, c.viewLocked(item))
	}

	return views
}

// Item returns the combined view of one item.
func (c *Coordinator) Item(ctx context.Context, id string) (ItemView, error) {
	item, err := c.catalog.Lookup(ctx, id)

	c.mu.RLock()
	defer c.mu.RUnlock()

	if err != nil {
		// The snapshot may not have been persisted; the loaded library still knows the item.
		item = c.findLocked(id)
		if item == nil {
			return ItemView{}, err
		}
	}

	return c.viewLocked(item), nil
}

func (c *Coordinator) findLocked(id string) *MediaItem {
	for _, item := range c.items {
		if item.ID == id {
			return item
		}
	}

	return nil
}

func (c *Coordinator) viewLocked(item *MediaItem) ItemView {
	record := c.statusLocked(item.ID)
	available := c.available.Has(item.ID)

	return ItemView{
		Item:      item,
		Record:    record,
		URI:       resolveURI(item, record, available, c.content),
		Available: available,
	}
}

// GetStatus returns a snapshot of the record for id. It never blocks on I/O.
func (c *Coordinator) GetStatus(id string) DownloadRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.statusLocked(id)
}

func (c *Coordinator) statusLocked(id string) DownloadRecord {
	if record, ok := c.records[id]; ok {
		return *record
	}

	// Items persisted as available have no record after a restart.
	if c.available.Has(id) {
		return DownloadRecord{
			Status:    DownloadStatusCompleted,
			Progress:  100,
			LocalPath: c.content.PathFor(id),
		}
	}

	return DownloadRecord{Status: DownloadStatusNotStarted}
}

// IsAvailable reports whether id is stored locally.
func (c *Coordinator) IsAvailable(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.available.Has(id)
}

// Statistics returns a snapshot of the session statistics.
func (c *Coordinator) Statistics() Statistics {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := c.stats
	stats.Duration = time.Since(stats.StartTime)
	stats.Failures = append([]TransferFailure(nil), c.stats.Failures...)

	return stats
}

// RequestDownload starts downloading item, or returns the download already in flight for it.
// A completed item yields an already resolved Download. When offline it returns ErrOffline and changes nothing.
func (c *Coordinator) RequestDownload(ctx context.Context, item *MediaItem) (*Download, error) {
	if item == nil || item.ID == "" {
		return nil, ErrUnknownItem
	}

	if !c.connectivity.IsConnected(ctx) {
		return nil, ErrOffline
	}

	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()

		return nil, ErrCoordinatorClosed
	}

	if active, ok := c.active[item.ID]; ok {
		c.stats.Coalesced++
		c.mu.Unlock()

		logger.Debugf(ctx, "Download of '%s' is already in flight", item.ID)

		return active.download, nil
	}

	if record := c.statusLocked(item.ID); record.Status == DownloadStatusCompleted {
		c.mu.Unlock()

		return newResolvedDownload(item.ID, record.LocalPath), nil
	}

	c.generation++

	transferCtx, cancel := context.WithCancel(c.lifetime)
	transfer := &activeTransfer{
		generation: c.generation,
		download:   newDownload(item.ID),
		cancel:     cancel,
		previous:   c.cancelling[item.ID],
		finished:   make(chan struct{}),
	}

	// Retrying resets progress together with the transition to Downloading.
	record := &DownloadRecord{Status: DownloadStatusDownloading}
	c.records[item.ID] = record
	c.active[item.ID] = transfer
	c.stats.Started++

	c.transfers.Add(1)
	c.publishLocked(item.ID, *record)
	c.mu.Unlock()

	go c.run(transferCtx, transfer, item)

	return transfer.download, nil
}

// Cancel stops the in-flight download of id. The record returns to NotStarted,
// the partial file is removed, and waiters receive ErrTransferCancelled.
func (c *Coordinator) Cancel(ctx context.Context, id string) error {
	c.mu.Lock()

	transfer, ok := c.active[id]
	if !ok {
		c.mu.Unlock()

		return fmt.Errorf("%w: '%s'", ErrNothingToCancel, id)
	}

	delete(c.active, id)
	c.cancelling[id] = transfer

	record := &DownloadRecord{Status: DownloadStatusNotStarted}
	c.records[id] = record
	c.stats.Cancelled++
	c.publishLocked(id, *record)

	c.mu.Unlock()

	transfer.cancel()

	logger.Infof(ctx, "Cancelled download of '%s'", id)

	return nil
}

// run drives one transfer from queueing to its outcome.
func (c *Coordinator) run(ctx context.Context, transfer *activeTransfer, item *MediaItem) {
	defer c.transfers.Done()
	defer close(transfer.finished)
	defer transfer.cancel()

	result, err := c.execute(ctx, transfer, item)

	c.complete(ctx, transfer, item, result, err)
}

func (c *Coordinator) execute(
	ctx context.Context,
	transfer *activeTransfer,
	item *MediaItem,
) (*TransferResult, error) {
	// A cancelled transfer of the same item may still be removing its temporary file.
	if transfer.previous != nil {
		select {
		case <-transfer.previous.finished:
		case <-ctx.Done():
			return nil, &TransferError{ItemID: item.ID, Phase: TransferPhaseQueued, Err: ctx.Err()}
		}
	}

	select {
	case c.semaphore <- struct{}{}:
	case <-ctx.Done():
		return nil, &TransferError{ItemID: item.ID, Phase: TransferPhaseQueued, Err: ctx.Err()}
	}

	defer func() {
		<-c.semaphore
	}()

	handle := c.engine.Begin(ctx, TransferRequest{
		ItemID:          item.ID,
		RemoteURL:       item.VideoURL,
		DestinationPath: c.content.PathFor(item.ID),
	})

	logger.DebugKV(ctx, "Download running",
		"item_id", item.ID,
		"transfer_id", handle.ID())

	for progress := range handle.Events() {
		c.applyProgress(transfer, item.ID, progress)
	}

	return handle.Wait(context.WithoutCancel(ctx))
}

// applyProgress records a progress event if the transfer is still current and the value increases.
func (c *Coordinator) applyProgress(transfer *activeTransfer, id string, progress int) {
	c.mu.Lock()

	if !c.isCurrentLocked(transfer, id) {
		c.mu.Unlock()

		return
	}

	record := c.records[id]
	if progress <= record.Progress || progress > 100 {
		c.mu.Unlock()

		return
	}

	record.Progress = progress
	c.publishLocked(id, *record)

	c.mu.Unlock()
}

//nolint:funlen // Success, failure and cancellation share the same bookkeeping.
func (c *Coordinator) complete(
	ctx context.Context,
	transfer *activeTransfer,
	item *MediaItem,
	result *TransferResult,
	err error,
) {
	ctx = context.WithoutCancel(ctx)

	// Checked outside c.mu: GetStatus must not wait on disk I/O.
	missing := err == nil && !c.content.Exists(item.ID)

	c.mu.Lock()

	if !c.isCurrentLocked(transfer, item.ID) {
		// Cancelled through Cancel, which already reset the record.
		if c.cancelling[item.ID] == transfer {
			delete(c.cancelling, item.ID)
		}

		c.mu.Unlock()

		transfer.download.resolve("", ErrTransferCancelled)

		return
	}

	delete(c.active, item.ID)

	if missing {
		err = &TransferError{ItemID: item.ID, Phase: TransferPhaseFinalizing, Err: ErrMissingLocalFile}
	}

	if err != nil {
		var (
			record    *DownloadRecord
			outcome   = err
			cancelled = errors.Is(err, context.Canceled) || errors.Is(err, ErrTransferCancelled)
		)

		if cancelled {
			// Shutdown: leave the item ready for a later request.
			record = &DownloadRecord{Status: DownloadStatusNotStarted}
			outcome = ErrTransferCancelled
			c.stats.Cancelled++
		} else {
			record = c.records[item.ID]
			record.Status = DownloadStatusFailed
			record.Error = err.Error()
			c.stats.Failed++
			c.stats.Failures = append(c.stats.Failures, newTransferFailure(item, err))
		}

		c.records[item.ID] = record
		c.publishLocked(item.ID, *record)

		c.mu.Unlock()

		if !cancelled {
			logger.Errorf(ctx, "Failed to download '%s': %v", item.Title, err)
		}

		transfer.download.resolve("", outcome)

		return
	}

	localPath := c.content.PathFor(item.ID)
	record := c.records[item.ID]
	record.Status = DownloadStatusCompleted
	record.Progress = 100
	record.LocalPath = localPath
	record.Error = ""
	c.available.Add(item.ID)
	c.stats.Completed++
	c.stats.BytesDownloaded += result.Bytes
	c.publishLocked(item.ID, *record)

	c.mu.Unlock()

	// A failed write only costs a re-download after restart; the in-memory state stays Completed.
	if persistErr := c.catalog.MarkAvailable(ctx, item.ID); persistErr != nil {
		logger.Warnf(ctx, "Downloaded '%s' but failed to remember it: %v", item.Title, persistErr)
	}

	logger.Infof(ctx, "Video downloaded successfully: %s", item.Title)

	transfer.download.resolve(localPath, nil)
}

func (c *Coordinator) isCurrentLocked(transfer *activeTransfer, id string) bool {
	active, ok := c.active[id]

	return ok && active.generation == transfer.generation
}

// Subscribe registers an observer of record changes.
// Updates are dropped for a subscriber whose buffer is full; call the returned function to unsubscribe.
func (c *Coordinator) Subscribe(buffer int) (<-chan StatusUpdate, func()) {
	updates := make(chan StatusUpdate, max(buffer, 1))

	c.subscribersMu.Lock()
	id := c.nextSubscriberID
	c.nextSubscriberID++
	c.subscribers[id] = updates
	c.subscribersMu.Unlock()

	var once sync.Once

	return updates, func() {
		once.Do(func() {
			c.subscribersMu.Lock()
			delete(c.subscribers, id)
			c.subscribersMu.Unlock()

			close(updates)
		})
	}
}

// publishLocked must be called with c.mu held so subscribers see updates in the order they were applied.
// It never blocks.
func (c *Coordinator) publishLocked(id string, record DownloadRecord) {
	update := StatusUpdate{
		ItemID:    id,
		Record:    record,
		UpdatedAt: time.Now(),
	}

	c.subscribersMu.RLock()
	defer c.subscribersMu.RUnlock()

	for _, subscriber := range c.subscribers {
		select {
		case subscriber <- update:
		default:
		}
	}
}

// Wait blocks until every download started so far has an outcome, or ctx is done.
func (c *Coordinator) Wait(ctx context.Context) error {
	done := make(chan struct{})

	go func() {
		c.transfers.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown rejects new requests, cancels running transfers and waits for them to clean up.
func (c *Coordinator) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.cancelLifetime()

	return c.Wait(ctx)
}
