package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/vidstash/internal/constants"
	"github.com/oshokin/vidstash/internal/storage"
)

// testTimeout bounds every wait in these tests.
const testTimeout = 5 * time.Second

// fakeScript describes what one fake transfer does.
type fakeScript struct {
	// progress is emitted in order.
	progress []int
	// raw bypasses the handle's own filtering so the coordinator sees every value.
	raw bool
	// step, when set, must be signalled before each progress value is emitted.
	step chan struct{}
	// gate, when set, must be closed before the transfer finishes.
	gate chan struct{}
	// err fails the transfer after the progress values.
	err error
}

// fakeEngine runs scripted transfers and counts how often each item was started.
type fakeEngine struct {
	mu     sync.Mutex
	begins map[string]int
	script func(request TransferRequest) fakeScript
}

func newFakeEngine(script func(request TransferRequest) fakeScript) *fakeEngine {
	return &fakeEngine{
		begins: make(map[string]int),
		script: script,
	}
}

func (e *fakeEngine) Begin(ctx context.Context, request TransferRequest) *TransferHandle {
	e.mu.Lock()
	e.begins[request.ItemID]++
	script := e.script(request)
	e.mu.Unlock()

	transferCtx, cancel := context.WithCancelCause(ctx)
	handle := newTransferHandle(request.ItemID, cancel)

	go func() {
		defer cancel(nil)

		cancelled := func() {
			handle.finish(nil, &TransferError{
				ItemID: request.ItemID,
				Phase:  TransferPhaseWriting,
				Err:    context.Cause(transferCtx),
			})
		}

		for _, progress := range script.progress {
			if script.step != nil {
				select {
				case <-script.step:
				case <-transferCtx.Done():
					cancelled()

					return
				}
			}

			if script.raw {
				handle.events <- progress
			} else {
				handle.emit(progress)
			}
		}

		if script.gate != nil {
			select {
			case <-script.gate:
			case <-transferCtx.Done():
				cancelled()

				return
			}
		}

		if script.err != nil {
			handle.finish(nil, &TransferError{ItemID: request.ItemID, Phase: TransferPhaseWriting, Err: script.err})

			return
		}

		if err := os.MkdirAll(filepath.Dir(request.DestinationPath), constants.DefaultFolderPermissions); err != nil {
			handle.finish(nil, &TransferError{ItemID: request.ItemID, Phase: TransferPhasePreparing, Err: err})

			return
		}

		payload := []byte("fake video")
		if err := os.WriteFile(request.DestinationPath, payload, constants.DefaultFilePermissions); err != nil {
			handle.finish(nil, &TransferError{ItemID: request.ItemID, Phase: TransferPhaseFinalizing, Err: err})

			return
		}

		handle.finish(&TransferResult{Path: request.DestinationPath, Bytes: int64(len(payload))}, nil)
	}()

	return handle
}

func (e *fakeEngine) beginCount(id string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.begins[id]
}

// succeed is a script that completes immediately.
func succeed(TransferRequest) fakeScript {
	return fakeScript{progress: []int{50, 100}}
}

// testEnv bundles a coordinator with its collaborators.
type testEnv struct {
	coordinator *Coordinator
	engine      *fakeEngine
	store       storage.Store
	catalog     *PersistentCatalog
	content     *FileContentStore
	mediaDir    string
}

type testEnvOptions struct {
	store         storage.Store
	mediaDir      string
	connectivity  ConnectivityChecker
	script        func(TransferRequest) fakeScript
	maxConcurrent int64
}

func newTestEnv(t *testing.T, opts testEnvOptions) *testEnv {
	t.Helper()

	if opts.store == nil {
		opts.store = storage.NewMemoryStore()
	}

	if opts.mediaDir == "" {
		opts.mediaDir = filepath.Join(t.TempDir(), "videos")
	}

	if opts.connectivity == nil {
		opts.connectivity = StaticConnectivity(true)
	}

	if opts.script == nil {
		opts.script = succeed
	}

	if opts.maxConcurrent == 0 {
		opts.maxConcurrent = 4
	}

	catalog, err := NewPersistentCatalog(opts.store)
	require.NoError(t, err)

	content := NewFileContentStore(opts.mediaDir)
	engine := newFakeEngine(opts.script)

	coordinator := NewCoordinator(CoordinatorOptions{
		Catalog:                catalog,
		Content:                content,
		Engine:                 engine,
		Connectivity:           opts.connectivity,
		MaxConcurrentDownloads: opts.maxConcurrent,
	})

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
		defer cancel()

		_ = coordinator.Shutdown(ctx)
	})

	return &testEnv{
		coordinator: coordinator,
		engine:      engine,
		store:       opts.store,
		catalog:     catalog,
		content:     content,
		mediaDir:    opts.mediaDir,
	}
}

func testItem(id string) *MediaItem {
	return &MediaItem{
		ID:       id,
		Title:    "Video " + id,
		Author:   "Blender Foundation",
		VideoURL: "https://x/" + id + ".mp4",
	}
}

// waitDownload waits for d with the test timeout.
func waitDownload(t *testing.T, d *Download) (string, error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(t.Context(), testTimeout)
	defer cancel()

	path, err := d.Wait(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("download of '%s' did not finish in time", d.ItemID())
	}

	return path, err
}

// nextUpdate reads one update with the test timeout.
func nextUpdate(t *testing.T, updates <-chan StatusUpdate) StatusUpdate {
	t.Helper()

	select {
	case update, ok := <-updates:
		require.True(t, ok, "updates channel closed")

		return update
	case <-time.After(testTimeout):
		t.Fatal("no status update in time")

		return StatusUpdate{}
	}
}

// assertRecordInvariants checks the per-status invariants of a record.
func assertRecordInvariants(t *testing.T, record DownloadRecord) {
	t.Helper()

	switch record.Status {
	case DownloadStatusCompleted:
		require.Equal(t, 100, record.Progress)
		require.NotEmpty(t, record.LocalPath)
	case DownloadStatusNotStarted:
		require.Equal(t, 0, record.Progress)
		require.Empty(t, record.LocalPath)
	case DownloadStatusDownloading, DownloadStatusFailed:
		require.GreaterOrEqual(t, record.Progress, 0)
		require.LessOrEqual(t, record.Progress, 100)
	}
}
