package media

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/oshokin/vidstash/internal/logger"
)

// Statistics summarizes the downloads of the current session.
type Statistics struct {
	Started         int64             `json:"started"`
	Completed       int64             `json:"completed"`
	Failed          int64             `json:"failed"`
	Cancelled       int64             `json:"cancelled"`
	Coalesced       int64             `json:"coalesced"`
	BytesDownloaded int64             `json:"bytesDownloaded"`
	StartTime       time.Time         `json:"startTime"`
	Duration        time.Duration     `json:"duration"`
	Failures        []TransferFailure `json:"failures,omitempty"`
}

// TransferFailure is one failed download kept for the summary.
type TransferFailure struct {
	ItemID  string `json:"itemId"`
	Title   string `json:"title"`
	Phase   string `json:"phase,omitempty"`
	Message string `json:"message"`
}

func newTransferFailure(item *MediaItem, err error) TransferFailure {
	failure := TransferFailure{
		ItemID:  item.ID,
		Title:   item.Title,
		Message: err.Error(),
	}

	var transferErr *TransferError
	if errors.As(err, &transferErr) {
		failure.Phase = string(transferErr.Phase)
		failure.Message = transferErr.Err.Error()
	}

	return failure
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}

	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	return fmt.Sprintf("%ds", seconds)
}

const summaryRule = "═══════════════════════════════════════════════════════════════"

func printSummaryHeader(ctx context.Context, wasInterrupted bool) {
	logger.Info(ctx, "")
	logger.Info(ctx, summaryRule)

	if wasInterrupted {
		logger.Info(ctx, "           DOWNLOAD SUMMARY (Interrupted)")
	} else {
		logger.Info(ctx, "                     DOWNLOAD SUMMARY")
	}

	logger.Info(ctx, summaryRule)
}

// PrintSummary logs a formatted summary of stats. Nothing is printed when no download started.
func PrintSummary(ctx context.Context, stats Statistics) {
	if stats.Started == 0 && stats.Coalesced == 0 {
		return
	}

	printSummaryHeader(ctx, ctx.Err() != nil)
	logger.Infof(ctx, "Started:          %d", stats.Started)
	logger.Infof(ctx, "Completed:        %d", stats.Completed)

	if stats.Failed > 0 {
		logger.Infof(ctx, "Failed:           %d", stats.Failed)
	}

	if stats.Cancelled > 0 {
		logger.Infof(ctx, "Cancelled:        %d", stats.Cancelled)
	}

	if stats.Coalesced > 0 {
		logger.Infof(ctx, "Already running:  %d", stats.Coalesced)
	}

	if stats.BytesDownloaded > 0 {
		//nolint:gosec // BytesDownloaded is always positive, no overflow risk.
		logger.Infof(ctx, "Data Downloaded:  %s", humanize.Bytes(uint64(stats.BytesDownloaded)))
	}

	// Only show if duration is meaningful (> 100ms).
	if stats.Duration > 100*time.Millisecond {
		logger.Infof(ctx, "Duration:         %s", formatDuration(stats.Duration))

		if stats.BytesDownloaded > 0 {
			bytesPerSecond := float64(stats.BytesDownloaded) / stats.Duration.Seconds()
			logger.Infof(ctx, "Average Speed:    %s/s", humanize.Bytes(uint64(bytesPerSecond)))
		}
	}

	logger.Info(ctx, summaryRule)

	if len(stats.Failures) == 0 {
		return
	}

	logger.Info(ctx, "")
	logger.Info(ctx, "Failed downloads:")

	for _, failure := range stats.Failures {
		if failure.Phase != "" {
			logger.Infof(ctx, "  • %s (%s) while %s: %s", failure.Title, failure.ItemID, failure.Phase, failure.Message)
		} else {
			logger.Infof(ctx, "  • %s (%s): %s", failure.Title, failure.ItemID, failure.Message)
		}
	}
}
