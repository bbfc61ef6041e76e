package media

import (
	"fmt"
	"slices"
	"time"

	"github.com/oshokin/vidstash/internal/client/media"
)

// MediaItem is a video known to the library. It is immutable once stored.
type MediaItem struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Duration     string `json:"duration"`
	UploadTime   string `json:"uploadTime"`
	Views        string `json:"views"`
	Author       string `json:"author"`
	Subscriber   string `json:"subscriber"`
	VideoURL     string `json:"videoUrl"`
	Description  string `json:"description"`
	IsLive       bool   `json:"isLive"`
}

// NewMediaItem converts a catalog entry into a library item.
func NewMediaItem(video *media.Video) *MediaItem {
	return &MediaItem{
		ID:           video.ID,
		Title:        video.Title,
		ThumbnailURL: video.ThumbnailURL,
		Duration:     video.Duration,
		UploadTime:   video.UploadTime,
		Views:        video.Views,
		Author:       video.Author,
		Subscriber:   video.Subscriber,
		VideoURL:     video.VideoURL,
		Description:  video.Description,
		IsLive:       video.IsLive,
	}
}

// DownloadStatus is the lifecycle state of a single item's download.
type DownloadStatus uint8

const (
	// DownloadStatusNotStarted - nothing has been downloaded, or a download was cancelled.
	DownloadStatusNotStarted DownloadStatus = iota
	// DownloadStatusDownloading - a transfer is queued or running.
	DownloadStatusDownloading
	// DownloadStatusCompleted - the file is stored locally. Terminal.
	DownloadStatusCompleted
	// DownloadStatusFailed - the last transfer failed; a new request retries it.
	DownloadStatusFailed
)

// String returns a human-readable representation of the DownloadStatus.
func (s DownloadStatus) String() string {
	switch s {
	case DownloadStatusNotStarted:
		return "not_started"
	case DownloadStatusDownloading:
		return "downloading"
	case DownloadStatusCompleted:
		return "completed"
	case DownloadStatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown: %d", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s DownloadStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// DownloadRecord is the per-item download state.
// Completed implies Progress is 100 and LocalPath is set; NotStarted implies Progress is 0 and no LocalPath.
type DownloadRecord struct {
	Status    DownloadStatus `json:"status"`
	Progress  int            `json:"progress"`
	LocalPath string         `json:"localPath,omitempty"`
	// Error is the message of the last failure, kept for display.
	Error string `json:"error,omitempty"`
}

// ItemView joins an item with its download state and playback URI.
type ItemView struct {
	Item      *MediaItem     `json:"item"`
	Record    DownloadRecord `json:"record"`
	URI       string         `json:"uri"`
	Available bool           `json:"available"`
}

// StatusUpdate is published to subscribers whenever a record changes.
type StatusUpdate struct {
	ItemID    string         `json:"itemId"`
	Record    DownloadRecord `json:"record"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// AvailabilitySet is the set of item ids stored locally.
type AvailabilitySet map[string]struct{}

// NewAvailabilitySet creates a set holding ids.
func NewAvailabilitySet(ids ...string) AvailabilitySet {
	set := make(AvailabilitySet, len(ids))
	for _, id := range ids {
		set.Add(id)
	}

	return set
}

// Has reports whether id is in the set.
func (s AvailabilitySet) Has(id string) bool {
	_, ok := s[id]

	return ok
}

// Add inserts id. Empty ids are ignored.
func (s AvailabilitySet) Add(id string) {
	if id == "" {
		return
	}

	s[id] = struct{}{}
}

// Clone returns an independent copy.
func (s AvailabilitySet) Clone() AvailabilitySet {
	clone := make(AvailabilitySet, len(s))
	for id := range s {
		clone[id] = struct{}{}
	}

	return clone
}

// IDs returns the ids sorted, so persisted snapshots are stable.
func (s AvailabilitySet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids
}
