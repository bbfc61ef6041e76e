package api

//go:generate $MOCKGEN -source=library.go -destination=mocks/library_mock.go

import (
	"context"

	"github.com/oshokin/vidstash/internal/service/media"
)

// Library is the part of the download coordinator the HTTP API serves.
type Library interface {
	// Items returns the combined view of every catalog item.
	Items() []media.ItemView
	// Item returns the combined view of one item, or an error wrapping media.ErrUnknownItem.
	Item(ctx context.Context, id string) (media.ItemView, error)
	// RequestDownload starts or joins the download of item.
	RequestDownload(ctx context.Context, item *media.MediaItem) (*media.Download, error)
	// Cancel stops the in-flight download of id.
	Cancel(ctx context.Context, id string) error
	// GetStatus returns a snapshot of the record for id.
	GetStatus(id string) media.DownloadRecord
	// Statistics returns the session statistics.
	Statistics() media.Statistics
}
