package media

// AvailabilitySource is the view of download state the Resolver needs.
type AvailabilitySource interface {
	IsAvailable(id string) bool
	GetStatus(id string) DownloadRecord
}

// Resolver picks the playback URI for an item.
type Resolver struct {
	source  AvailabilitySource
	content ContentStore
}

// NewResolver creates a resolver reading state from source.
func NewResolver(source AvailabilitySource, content ContentStore) *Resolver {
	return &Resolver{
		source:  source,
		content: content,
	}
}

// Resolve returns the local path when the item is available, the remote URL otherwise.
// Nothing is cached between calls.
func (r *Resolver) Resolve(item *MediaItem) string {
	if item == nil {
		return ""
	}

	return resolveURI(item, r.source.GetStatus(item.ID), r.source.IsAvailable(item.ID), r.content)
}

func resolveURI(item *MediaItem, record DownloadRecord, available bool, content ContentStore) string {
	if available || record.Status == DownloadStatusCompleted {
		return content.PathFor(item.ID)
	}

	return item.VideoURL
}
