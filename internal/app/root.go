package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/sourcegraph/conc/iter"
	"go.uber.org/zap"

	"github.com/oshokin/vidstash/internal/config"
	"github.com/oshokin/vidstash/internal/logger"
	media_service "github.com/oshokin/vidstash/internal/service/media"
)

// progressUpdatesBuffer is large enough for every percentage of one item plus its final status.
const progressUpdatesBuffer = 128

// downloadOutcome is the result of one requested id.
type downloadOutcome struct {
	ItemID string
	Path   string
	Err    error
}

// ExecuteRootCommand is the entry point for downloading.
// It loads the library and downloads the items with the given ids, then prints a summary.
func ExecuteRootCommand(ctx context.Context, cfg *config.Config, opts RuntimeOptions, args []string) {
	ids, err := collectItemIDs(args)
	if err != nil {
		logger.Fatalf(ctx, "Failed to collect ids: %v", err)
	}

	appRuntime, err := NewRuntime(cfg, opts)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize: %v", err)
	}

	// Ensure statistics are ALWAYS printed, even on panic.
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf(ctx, "Panic recovered: %v", r)
		}

		if closeErr := appRuntime.Close(ctx); closeErr != nil {
			logger.Warnf(ctx, "Failed to shut down cleanly: %v", closeErr)
		}

		media_service.PrintSummary(ctx, appRuntime.Coordinator().Statistics())
	}()

	if _, err = appRuntime.Coordinator().LoadLibrary(ctx); err != nil {
		logger.Errorf(ctx, "Failed to load the video library: %v", err)

		return
	}

	downloadItems(ctx, appRuntime.Coordinator(), ids)
}

// downloadItems requests every id and waits for all of them.
// A progress bar is shown for a single item unless debug logging would interleave with it.
func downloadItems(ctx context.Context, coordinator *media_service.Coordinator, ids []string) []downloadOutcome {
	if len(ids) == 1 && logger.Level() <= zap.InfoLevel {
		stop := trackProgress(coordinator, ids[0])
		defer stop()
	}

	return iter.Map(ids, func(id *string) downloadOutcome {
		return downloadItem(ctx, coordinator, *id)
	})
}

func downloadItem(ctx context.Context, coordinator *media_service.Coordinator, id string) downloadOutcome {
	outcome := downloadOutcome{ItemID: id}

	view, err := coordinator.Item(ctx, id)
	if err != nil {
		logger.Warnf(ctx, "Skipping '%s': %v", id, err)

		outcome.Err = err

		return outcome
	}

	download, err := coordinator.RequestDownload(ctx, view.Item)
	if err != nil {
		if errors.Is(err, media_service.ErrOffline) {
			logger.Warnf(ctx, "Cannot download '%s': you are offline, connect to the internet to download videos",
				view.Item.Title)
		} else {
			logger.Errorf(ctx, "Failed to start downloading '%s': %v", view.Item.Title, err)
		}

		outcome.Err = err

		return outcome
	}

	outcome.Path, outcome.Err = download.Wait(ctx)

	switch {
	case outcome.Err == nil:
		logger.Debugf(ctx, "'%s' is stored at %s", view.Item.Title, outcome.Path)
	case errors.Is(outcome.Err, context.Canceled), errors.Is(outcome.Err, media_service.ErrTransferCancelled):
		logger.Infof(ctx, "Download of '%s' was cancelled", view.Item.Title)
	}

	return outcome
}

// trackProgress draws a progress bar for id from the coordinator's status updates.
func trackProgress(coordinator *media_service.Coordinator, id string) func() {
	updates, unsubscribe := coordinator.Subscribe(progressUpdatesBuffer)
	bar := progressbar.Default(100, fmt.Sprintf("Downloading %s", id))
	done := make(chan struct{})

	go func() {
		defer close(done)

		for update := range updates {
			if update.ItemID != id {
				continue
			}

			switch update.Record.Status {
			case media_service.DownloadStatusDownloading:
				_ = bar.Set(update.Record.Progress)
			case media_service.DownloadStatusCompleted:
				_ = bar.Finish()
			case media_service.DownloadStatusFailed, media_service.DownloadStatusNotStarted:
				_ = bar.Exit()
			}
		}
	}()

	return func() {
		unsubscribe()
		<-done
	}
}
