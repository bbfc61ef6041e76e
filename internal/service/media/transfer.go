package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/vidstash/internal/client/media"
	"github.com/oshokin/vidstash/internal/config"
	"github.com/oshokin/vidstash/internal/constants"
	"github.com/oshokin/vidstash/internal/logger"
	"github.com/oshokin/vidstash/internal/utils"
)

// progressBufferSize fits every possible percentage, so the engine never blocks on a slow consumer.
const progressBufferSize = 101

// TransferRequest describes one network-to-disk transfer.
type TransferRequest struct {
	ItemID          string
	RemoteURL       string
	DestinationPath string
}

// TransferResult is the outcome of a successful transfer.
type TransferResult struct {
	// Path is the destination the file was written to.
	Path string
	// Bytes is the number of bytes written.
	Bytes int64
}

// TransferEngine starts transfers.
type TransferEngine interface {
	// Begin starts a transfer in the background and returns its handle immediately.
	Begin(ctx context.Context, request TransferRequest) *TransferHandle
}

// TransferHandle is a running transfer.
// Events yields strictly increasing percentages and is closed before Done is closed.
type TransferHandle struct {
	id     string
	itemID string
	events chan int
	done   chan struct{}
	cancel context.CancelCauseFunc

	// lastProgress is touched only by the producer.
	lastProgress int
	finishOnce   sync.Once
	result       *TransferResult
	err          error
}

func newTransferHandle(itemID string, cancel context.CancelCauseFunc) *TransferHandle {
	return &TransferHandle{
		id:     uuid.NewString(),
		itemID: itemID,
		events: make(chan int, progressBufferSize),
		done:   make(chan struct{}),
		cancel: cancel,
	}
}

// ID returns the unique id of this transfer, used to correlate log lines.
func (h *TransferHandle) ID() string {
	return h.id
}

// ItemID returns the id of the item being transferred.
func (h *TransferHandle) ItemID() string {
	return h.itemID
}

// Events returns the progress stream.
func (h *TransferHandle) Events() <-chan int {
	return h.events
}

// Done is closed once the outcome is available.
func (h *TransferHandle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the transfer finishes or ctx is done.
func (h *TransferHandle) Wait(ctx context.Context) (*TransferResult, error) {
	select {
	case <-h.done:
		return h.result, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel aborts the transfer. The outcome becomes a TransferError wrapping ErrTransferCancelled.
func (h *TransferHandle) Cancel() {
	h.cancel(ErrTransferCancelled)
}

// emit publishes progress when it is a strict increase within 1..100.
func (h *TransferHandle) emit(progress int) {
	if progress <= h.lastProgress || progress > 100 {
		return
	}

	h.lastProgress = progress
	h.events <- progress
}

// finish closes the progress stream, then publishes the outcome.
func (h *TransferHandle) finish(result *TransferResult, err error) {
	h.finishOnce.Do(func() {
		close(h.events)

		h.result = result
		h.err = err

		close(h.done)
	})
}

// HTTPTransferEngine downloads remote files through a media client.
type HTTPTransferEngine struct {
	client media.Client
	// speedLimit is the per-transfer limit in bytes per throttleInterval; 0 disables throttling.
	speedLimit       int64
	throttleInterval time.Duration
	// stallTimeout fails a transfer when no bytes arrive for this long; 0 disables the check.
	stallTimeout time.Duration
}

// NewHTTPTransferEngine creates an engine with the given limits.
func NewHTTPTransferEngine(client media.Client, speedLimit int64, stallTimeout time.Duration) *HTTPTransferEngine {
	return &HTTPTransferEngine{
		client:           client,
		speedLimit:       speedLimit,
		throttleInterval: config.ThrottleInterval,
		stallTimeout:     stallTimeout,
	}
}

// Begin starts the transfer in its own goroutine.
func (e *HTTPTransferEngine) Begin(ctx context.Context, request TransferRequest) *TransferHandle {
	transferCtx, cancel := context.WithCancelCause(ctx)
	handle := newTransferHandle(request.ItemID, cancel)

	go func() {
		result, err := e.transfer(transferCtx, handle, request)

		handle.finish(result, err)
		cancel(nil)
	}()

	return handle
}

//nolint:funlen // Sequential steps of one transfer read best together.
func (e *HTTPTransferEngine) transfer(
	ctx context.Context,
	handle *TransferHandle,
	request TransferRequest,
) (*TransferResult, error) {
	watchdog := newStallWatchdog(e.stallTimeout, func() {
		handle.cancel(ErrTransferStalled)
	})
	defer watchdog.stop()

	logger.DebugKV(ctx, "Transfer started",
		"transfer_id", handle.ID(),
		"item_id", request.ItemID,
		"url", request.RemoteURL)

	fetchResult, err := e.client.FetchVideo(ctx, request.RemoteURL)
	if err != nil {
		return nil, e.fail(ctx, request, TransferPhaseFetching, err)
	}

	defer fetchResult.Body.Close() //nolint:errcheck // Error on close is not critical here.

	watchdog.reset()

	if err = os.MkdirAll(filepath.Dir(request.DestinationPath), constants.DefaultFolderPermissions); err != nil {
		return nil, e.fail(ctx, request, TransferPhasePreparing, err)
	}

	tempFilePath := request.DestinationPath + constants.ExtensionPart

	// Always overwrite .part files, they indicate incomplete downloads.
	file, err := os.OpenFile(filepath.Clean(tempFilePath), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, constants.DefaultFilePermissions)
	if err != nil {
		return nil, e.fail(ctx, request, TransferPhasePreparing, err)
	}

	var downloadSucceeded bool

	defer func() {
		if downloadSucceeded {
			return
		}

		closeErr := file.Close()

		if removeErr := os.Remove(tempFilePath); removeErr != nil && !os.IsNotExist(removeErr) {
			logger.Warnf(ctx, "Failed to clean up temporary file '%s': %v (close error: %v)",
				tempFilePath, removeErr, closeErr)
		}
	}()

	progress := &progressWriter{
		total: fetchResult.TotalBytes,
		emit:  handle.emit,
		touch: watchdog.reset,
	}

	bytesWritten, err := e.copy(ctx, io.MultiWriter(file, progress), fetchResult.Body)
	if err != nil {
		return nil, e.fail(ctx, request, TransferPhaseWriting, err)
	}

	// Verify that we downloaded the announced number of bytes.
	if fetchResult.TotalBytes >= 0 && bytesWritten != fetchResult.TotalBytes {
		return nil, e.fail(ctx, request, TransferPhaseVerifying, fmt.Errorf(
			"%w: wrote %d bytes, expected %d bytes",
			ErrIncompleteDownload,
			bytesWritten,
			fetchResult.TotalBytes,
		))
	}

	if err = file.Sync(); err != nil {
		return nil, e.fail(ctx, request, TransferPhaseFinalizing, err)
	}

	// Close before rename, Windows refuses to rename open files.
	downloadSucceeded = true

	if err = file.Close(); err != nil {
		_ = os.Remove(tempFilePath)

		return nil, e.fail(ctx, request, TransferPhaseFinalizing, err)
	}

	if err = os.Rename(tempFilePath, request.DestinationPath); err != nil {
		_ = os.Remove(tempFilePath)

		return nil, e.fail(ctx, request, TransferPhaseFinalizing, err)
	}

	handle.emit(100)

	logger.DebugKV(ctx, "Transfer finished",
		"transfer_id", handle.ID(),
		"item_id", request.ItemID,
		"bytes", bytesWritten)

	return &TransferResult{
		Path:  request.DestinationPath,
		Bytes: bytesWritten,
	}, nil
}

// copy streams src into dst, throttled to speedLimit bytes per throttleInterval when set.
func (e *HTTPTransferEngine) copy(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	if e.speedLimit <= 0 {
		return io.Copy(dst, src)
	}

	var written int64

	for {
		n, err := io.CopyN(dst, src, e.speedLimit)
		written += n

		if errors.Is(err, io.EOF) {
			return written, nil
		}

		if err != nil {
			return written, err
		}

		// Throttle to respect speed limit.
		if err = utils.SleepContext(ctx, e.throttleInterval); err != nil {
			return written, err
		}
	}
}

// fail wraps err into a TransferError, preferring the cancellation cause when the context was cancelled.
func (e *HTTPTransferEngine) fail(ctx context.Context, request TransferRequest, phase TransferPhase, err error) error {
	cause := context.Cause(ctx)

	switch {
	case cause == nil, errors.Is(err, cause):
	case errors.Is(cause, context.Canceled):
		// The parent was cancelled; keep context.Canceled visible in the chain.
		err = fmt.Errorf("%w: %w", cause, err)
	default:
		// Stall or explicit cancel; the read error is only a symptom.
		err = fmt.Errorf("%w: %v", cause, err) //nolint:errorlint // The cause is the error to match on.
	}

	return &TransferError{
		ItemID: request.ItemID,
		Phase:  phase,
		Err:    err,
	}
}

// progressWriter turns written bytes into percentages and feeds the stall watchdog.
type progressWriter struct {
	total   int64
	written int64
	emit    func(int)
	touch   func()
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.touch()

	w.written += int64(len(p))

	if w.total > 0 {
		w.emit(utils.FloorPercent(w.written, w.total))
	}

	return len(p), nil
}

// stallWatchdog calls onStall when reset is not called within timeout.
type stallWatchdog struct {
	timeout time.Duration
	timer   *time.Timer
}

func newStallWatchdog(timeout time.Duration, onStall func()) *stallWatchdog {
	if timeout <= 0 {
		return &stallWatchdog{}
	}

	return &stallWatchdog{
		timeout: timeout,
		timer:   time.AfterFunc(timeout, onStall),
	}
}

func (w *stallWatchdog) reset() {
	if w.timer != nil {
		w.timer.Reset(w.timeout)
	}
}

func (w *stallWatchdog) stop() {
	if w.timer != nil {
		w.timer.Stop()
	}
}
