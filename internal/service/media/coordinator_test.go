package media

import (
	"context"
	"errors"
	"math/rand/v2"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/oshokin/vidstash/internal/client/media"
	mock_media_client "github.com/oshokin/vidstash/internal/client/media/mocks"
	"github.com/oshokin/vidstash/internal/storage"
	mock_storage "github.com/oshokin/vidstash/internal/storage/mocks"
)

// TestCoordinator_DownloadScenario follows item "42" through progress 10, 35, 70, 100 to completion.
func TestCoordinator_DownloadScenario(t *testing.T) {
	t.Parallel()

	step := make(chan struct{})
	gate := make(chan struct{})

	env := newTestEnv(t, testEnvOptions{
		script: func(TransferRequest) fakeScript {
			return fakeScript{progress: []int{10, 35, 70, 100}, step: step, gate: gate}
		},
	})

	item := testItem("42")
	resolver := env.coordinator.Resolver()

	assert.Equal(t, "https://x/42.mp4", resolver.Resolve(item))
	assert.Equal(t, DownloadRecord{Status: DownloadStatusNotStarted}, env.coordinator.GetStatus("42"))

	updates, unsubscribe := env.coordinator.Subscribe(16)
	defer unsubscribe()

	download, err := env.coordinator.RequestDownload(t.Context(), item)
	require.NoError(t, err)

	update := nextUpdate(t, updates)
	assert.Equal(t, "42", update.ItemID)
	assert.Equal(t, DownloadRecord{Status: DownloadStatusDownloading}, update.Record)

	for _, progress := range []int{10, 35, 70, 100} {
		step <- struct{}{}

		update = nextUpdate(t, updates)
		assert.Equal(t, progress, update.Record.Progress)
		assert.Equal(t, DownloadRecord{Status: DownloadStatusDownloading, Progress: progress},
			env.coordinator.GetStatus("42"))
		assert.Equal(t, "https://x/42.mp4", resolver.Resolve(item))
	}

	close(gate)

	path, err := waitDownload(t, download)
	require.NoError(t, err)

	expectedPath := filepath.Join(env.mediaDir, "video_42.mp4")
	assert.Equal(t, expectedPath, path)

	update = nextUpdate(t, updates)
	assert.Equal(t, DownloadStatusCompleted, update.Record.Status)

	assert.Equal(t, DownloadRecord{
		Status:    DownloadStatusCompleted,
		Progress:  100,
		LocalPath: expectedPath,
	}, env.coordinator.GetStatus("42"))
	assert.Equal(t, expectedPath, resolver.Resolve(item))
	assert.True(t, env.coordinator.IsAvailable("42"))
	assert.True(t, env.content.Exists("42"))

	persisted, err := env.catalog.LoadAvailability(t.Context())
	require.NoError(t, err)
	assert.True(t, persisted.Has("42"))
}

// TestCoordinator_FailureKeepsProgress simulates a failure at 40 percent.
func TestCoordinator_FailureKeepsProgress(t *testing.T) {
	t.Parallel()

	networkErr := errors.New("connection reset by peer")

	env := newTestEnv(t, testEnvOptions{
		script: func(TransferRequest) fakeScript {
			return fakeScript{progress: []int{40}, err: networkErr}
		},
	})

	item := testItem("42")

	download, err := env.coordinator.RequestDownload(t.Context(), item)
	require.NoError(t, err)

	_, err = waitDownload(t, download)
	require.ErrorIs(t, err, networkErr)

	var transferErr *TransferError
	require.ErrorAs(t, err, &transferErr)
	assert.Equal(t, "42", transferErr.ItemID)

	record := env.coordinator.GetStatus("42")
	assert.Equal(t, DownloadStatusFailed, record.Status)
	assert.Equal(t, 40, record.Progress)
	assert.Empty(t, record.LocalPath)
	assert.Contains(t, record.Error, "connection reset by peer")

	assert.Equal(t, "https://x/42.mp4", env.coordinator.Resolver().Resolve(item))
	assert.False(t, env.coordinator.IsAvailable("42"))

	stats := env.coordinator.Statistics()
	assert.Equal(t, int64(1), stats.Failed)
	require.Len(t, stats.Failures, 1)
	assert.Equal(t, string(TransferPhaseWriting), stats.Failures[0].Phase)
}

// TestCoordinator_RetryAfterFailure tests the Failed -> Downloading -> Completed path.
func TestCoordinator_RetryAfterFailure(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32

	gate := make(chan struct{})

	env := newTestEnv(t, testEnvOptions{
		script: func(TransferRequest) fakeScript {
			if attempts.Add(1) == 1 {
				return fakeScript{progress: []int{40}, err: errors.New("timeout")}
			}

			return fakeScript{progress: []int{100}, gate: gate}
		},
	})

	item := testItem("7")

	download, err := env.coordinator.RequestDownload(t.Context(), item)
	require.NoError(t, err)

	_, err = waitDownload(t, download)
	require.Error(t, err)
	assert.Equal(t, DownloadStatusFailed, env.coordinator.GetStatus("7").Status)

	retry, err := env.coordinator.RequestDownload(t.Context(), item)
	require.NoError(t, err)
	assert.NotSame(t, download, retry)

	// The retry starts from zero with the failure cleared.
	assert.Equal(t, DownloadRecord{Status: DownloadStatusDownloading}, env.coordinator.GetStatus("7"))

	close(gate)

	_, err = waitDownload(t, retry)
	require.NoError(t, err)
	assert.Equal(t, DownloadStatusCompleted, env.coordinator.GetStatus("7").Status)
	assert.Equal(t, 2, env.engine.beginCount("7"))
}

// TestCoordinator_Offline tests that offline requests change nothing.
func TestCoordinator_Offline(t *testing.T) {
	t.Parallel()

	var online atomic.Bool

	online.Store(true)

	env := newTestEnv(t, testEnvOptions{
		connectivity: ConnectivityFunc(func(context.Context) bool { return online.Load() }),
		script: func(request TransferRequest) fakeScript {
			if request.ItemID == "failed" {
				return fakeScript{progress: []int{30}, err: errors.New("boom")}
			}

			return succeed(request)
		},
	})

	failed, err := env.coordinator.RequestDownload(t.Context(), testItem("failed"))
	require.NoError(t, err)

	_, err = waitDownload(t, failed)
	require.Error(t, err)

	online.Store(false)

	for _, id := range []string{"fresh", "failed"} {
		before := env.coordinator.GetStatus(id)

		download, requestErr := env.coordinator.RequestDownload(t.Context(), testItem(id))
		require.ErrorIs(t, requestErr, ErrOffline)
		assert.Nil(t, download)
		assert.Equal(t, before, env.coordinator.GetStatus(id))
	}

	assert.Equal(t, 0, env.engine.beginCount("fresh"))
	assert.Equal(t, 1, env.engine.beginCount("failed"))
}

// TestCoordinator_ConcurrentRequestsCoalesce tests that one transfer serves concurrent same-id requests.
func TestCoordinator_ConcurrentRequestsCoalesce(t *testing.T) {
	t.Parallel()

	gate := make(chan struct{})

	env := newTestEnv(t, testEnvOptions{
		script: func(TransferRequest) fakeScript {
			return fakeScript{progress: []int{25, 100}, gate: gate}
		},
	})

	const requests = 16

	var (
		waitGroup sync.WaitGroup
		downloads = make([]*Download, requests)
		errs      = make([]error, requests)
	)

	item := testItem("same")

	for i := range requests {
		waitGroup.Add(1)

		go func() {
			defer waitGroup.Done()

			downloads[i], errs[i] = env.coordinator.RequestDownload(context.Background(), item)
		}()
	}

	waitGroup.Wait()

	for i := range requests {
		require.NoError(t, errs[i])
		assert.Same(t, downloads[0], downloads[i])
	}

	close(gate)

	_, err := waitDownload(t, downloads[0])
	require.NoError(t, err)

	assert.Equal(t, 1, env.engine.beginCount("same"))

	stats := env.coordinator.Statistics()
	assert.Equal(t, int64(1), stats.Started)
	assert.Equal(t, int64(requests-1), stats.Coalesced)
}

// TestCoordinator_CompletedIsTerminal tests that completed items are not downloaded again.
func TestCoordinator_CompletedIsTerminal(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, testEnvOptions{})
	item := testItem("done")

	first, err := env.coordinator.RequestDownload(t.Context(), item)
	require.NoError(t, err)

	path, err := waitDownload(t, first)
	require.NoError(t, err)

	again, err := env.coordinator.RequestDownload(t.Context(), item)
	require.NoError(t, err)

	select {
	case <-again.Done():
	default:
		t.Fatal("request for a completed item must resolve immediately")
	}

	againPath, err := again.Wait(t.Context())
	require.NoError(t, err)
	assert.Equal(t, path, againPath)
	assert.Equal(t, 1, env.engine.beginCount("done"))
}

// TestCoordinator_Cancel tests cancelling an in-flight download.
func TestCoordinator_Cancel(t *testing.T) {
	t.Parallel()

	step := make(chan struct{})
	gate := make(chan struct{})

	var attempts atomic.Int32

	env := newTestEnv(t, testEnvOptions{
		script: func(TransferRequest) fakeScript {
			if attempts.Add(1) == 1 {
				return fakeScript{progress: []int{20, 60}, step: step, gate: gate}
			}

			return succeed(TransferRequest{})
		},
	})

	item := testItem("c")

	updates, unsubscribe := env.coordinator.Subscribe(16)
	defer unsubscribe()

	download, err := env.coordinator.RequestDownload(t.Context(), item)
	require.NoError(t, err)

	nextUpdate(t, updates)

	step <- struct{}{}

	assert.Equal(t, 20, nextUpdate(t, updates).Record.Progress)

	require.NoError(t, env.coordinator.Cancel(t.Context(), "c"))
	assert.Equal(t, DownloadRecord{Status: DownloadStatusNotStarted}, env.coordinator.GetStatus("c"))

	_, err = waitDownload(t, download)
	require.ErrorIs(t, err, ErrTransferCancelled)

	// Nothing from the cancelled transfer reaches the record.
	assert.Equal(t, DownloadRecord{Status: DownloadStatusNotStarted}, env.coordinator.GetStatus("c"))
	require.ErrorIs(t, env.coordinator.Cancel(t.Context(), "c"), ErrNothingToCancel)

	retry, err := env.coordinator.RequestDownload(t.Context(), item)
	require.NoError(t, err)

	_, err = waitDownload(t, retry)
	require.NoError(t, err)
	assert.Equal(t, DownloadStatusCompleted, env.coordinator.GetStatus("c").Status)
	assert.Equal(t, int64(1), env.coordinator.Statistics().Cancelled)
}

// TestCoordinator_PersistenceErrorKeepsCompleted tests that a failed write never rolls back completion.
func TestCoordinator_PersistenceErrorKeepsCompleted(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	store := mock_storage.NewMockStore(ctrl)

	store.EXPECT().Get(gomock.Any(), AvailabilityKey).Return(nil, storage.ErrKeyNotFound)
	store.EXPECT().Set(gomock.Any(), AvailabilityKey, gomock.Any()).Return(errors.New("disk full"))

	env := newTestEnv(t, testEnvOptions{store: store})

	download, err := env.coordinator.RequestDownload(t.Context(), testItem("p"))
	require.NoError(t, err)

	_, err = waitDownload(t, download)
	require.NoError(t, err)

	assert.Equal(t, DownloadStatusCompleted, env.coordinator.GetStatus("p").Status)
	assert.True(t, env.coordinator.IsAvailable("p"))
}

// TestCoordinator_RestartResolvesLocalPath tests that availability survives a restart.
func TestCoordinator_RestartResolvesLocalPath(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryStore()
	mediaDir := filepath.Join(t.TempDir(), "videos")
	item := testItem("42")

	require.NoError(t, mustCatalog(t, store).Save(t.Context(), []*MediaItem{item, testItem("43")}))

	first := newTestEnv(t, testEnvOptions{store: store, mediaDir: mediaDir})

	_, err := first.coordinator.LoadLibrary(t.Context())
	require.NoError(t, err)

	download, err := first.coordinator.RequestDownload(t.Context(), item)
	require.NoError(t, err)

	_, err = waitDownload(t, download)
	require.NoError(t, err)
	require.NoError(t, first.coordinator.Shutdown(t.Context()))

	restarted := newTestEnv(t, testEnvOptions{store: store, mediaDir: mediaDir})

	items, err := restarted.coordinator.LoadLibrary(t.Context())
	require.NoError(t, err)
	require.Len(t, items, 2)

	expectedPath := filepath.Join(mediaDir, "video_42.mp4")
	assert.Equal(t, expectedPath, restarted.coordinator.Resolver().Resolve(item))
	assert.Equal(t, "https://x/43.mp4", restarted.coordinator.Resolver().Resolve(testItem("43")))
	assert.Equal(t, DownloadRecord{
		Status:    DownloadStatusCompleted,
		Progress:  100,
		LocalPath: expectedPath,
	}, restarted.coordinator.GetStatus("42"))

	views := restarted.coordinator.Items()
	require.Len(t, views, 2)
	assert.True(t, views[0].Available)
	assert.Equal(t, expectedPath, views[0].URI)
	assert.False(t, views[1].Available)
	assert.Equal(t, DownloadStatusNotStarted, views[1].Record.Status)
}

// TestCoordinator_LoadLibraryFetchesOnce tests the remote bootstrap and the persisted snapshot afterwards.
func TestCoordinator_LoadLibraryFetchesOnce(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	client := mock_media_client.NewMockClient(ctrl)
	store := storage.NewMemoryStore()

	client.EXPECT().FetchCatalog(gomock.Any()).Return([]*media.Video{
		{ID: "1", Title: "Big Buck Bunny", VideoURL: "https://x/1.mp4"},
		{ID: "2", Title: "Elephant Dream", VideoURL: "https://x/2.mp4"},
		{ID: "1", Title: "Duplicate", VideoURL: "https://x/dup.mp4"},
	}, nil).Times(1)

	for range 2 {
		catalog := mustCatalog(t, store)
		coordinator := NewCoordinator(CoordinatorOptions{
			Client:       client,
			Catalog:      catalog,
			Content:      NewFileContentStore(t.TempDir()),
			Engine:       newFakeEngine(succeed),
			Connectivity: StaticConnectivity(true),
		})

		items, err := coordinator.LoadLibrary(t.Context())
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "Big Buck Bunny", items[0].Title)

		view, err := coordinator.Item(t.Context(), "2")
		require.NoError(t, err)
		assert.Equal(t, "https://x/2.mp4", view.URI)

		_, err = coordinator.Item(t.Context(), "404")
		require.ErrorIs(t, err, ErrUnknownItem)
	}
}

// TestCoordinator_LoadLibraryOffline tests that an empty library cannot bootstrap offline.
func TestCoordinator_LoadLibraryOffline(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, testEnvOptions{connectivity: StaticConnectivity(false)})

	_, err := env.coordinator.LoadLibrary(t.Context())
	require.ErrorIs(t, err, ErrOffline)
}

// TestCoordinator_Shutdown tests that shutdown cancels running transfers and rejects new ones.
func TestCoordinator_Shutdown(t *testing.T) {
	t.Parallel()

	gate := make(chan struct{})
	defer close(gate)

	env := newTestEnv(t, testEnvOptions{
		script: func(TransferRequest) fakeScript {
			return fakeScript{progress: []int{5}, gate: gate}
		},
	})

	download, err := env.coordinator.RequestDownload(t.Context(), testItem("s"))
	require.NoError(t, err)

	require.NoError(t, env.coordinator.Shutdown(t.Context()))

	_, err = waitDownload(t, download)
	require.ErrorIs(t, err, ErrTransferCancelled)
	assert.Equal(t, DownloadRecord{Status: DownloadStatusNotStarted}, env.coordinator.GetStatus("s"))

	_, err = env.coordinator.RequestDownload(t.Context(), testItem("t"))
	require.ErrorIs(t, err, ErrCoordinatorClosed)
}

// TestCoordinator_ConcurrencyLimit tests that queued downloads wait for a free slot.
func TestCoordinator_ConcurrencyLimit(t *testing.T) {
	t.Parallel()

	gate := make(chan struct{})

	env := newTestEnv(t, testEnvOptions{
		maxConcurrent: 1,
		script: func(TransferRequest) fakeScript {
			return fakeScript{progress: []int{100}, gate: gate}
		},
	})

	first, err := env.coordinator.RequestDownload(t.Context(), testItem("a"))
	require.NoError(t, err)

	second, err := env.coordinator.RequestDownload(t.Context(), testItem("b"))
	require.NoError(t, err)

	assert.Equal(t, DownloadStatusDownloading, env.coordinator.GetStatus("b").Status)
	assert.Eventually(t, func() bool { return env.engine.beginCount("a")+env.engine.beginCount("b") == 1 },
		testTimeout, 5*time.Millisecond)

	close(gate)

	_, err = waitDownload(t, first)
	require.NoError(t, err)

	_, err = waitDownload(t, second)
	require.NoError(t, err)
	assert.Equal(t, 1, env.engine.beginCount("b"))
}

// TestCoordinator_RandomProgressStreams checks record invariants and monotonic progress for random event streams.
func TestCoordinator_RandomProgressStreams(t *testing.T) {
	t.Parallel()

	random := rand.New(rand.NewPCG(42, 2024)) //nolint:gosec // Deterministic test data.

	for iteration := range 50 {
		events := make([]int, random.IntN(60))
		for i := range events {
			events[i] = random.IntN(111) - 5
		}

		fail := random.IntN(3) == 0

		env := newTestEnv(t, testEnvOptions{
			script: func(TransferRequest) fakeScript {
				script := fakeScript{progress: events, raw: true}
				if fail {
					script.err = errors.New("random failure")
				}

				return script
			},
		})

		updates, unsubscribe := env.coordinator.Subscribe(256)

		download, err := env.coordinator.RequestDownload(t.Context(), testItem("r"))
		require.NoError(t, err)

		_, err = waitDownload(t, download)
		unsubscribe()

		last := 0

		for update := range updates {
			assertRecordInvariants(t, update.Record)

			if update.Record.Status == DownloadStatusDownloading || update.Record.Status == DownloadStatusFailed {
				require.GreaterOrEqual(t, update.Record.Progress, last, "iteration %d", iteration)

				last = update.Record.Progress
			}
		}

		final := env.coordinator.GetStatus("r")
		assertRecordInvariants(t, final)

		if fail {
			require.Error(t, err)
			assert.Equal(t, DownloadStatusFailed, final.Status)
			assert.Equal(t, last, final.Progress)
		} else {
			require.NoError(t, err)
			assert.Equal(t, DownloadStatusCompleted, final.Status)
		}
	}
}

// TestCoordinator_UnsubscribeClosesChannel tests the subscription lifecycle.
func TestCoordinator_UnsubscribeClosesChannel(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, testEnvOptions{})

	updates, unsubscribe := env.coordinator.Subscribe(0)
	unsubscribe()
	unsubscribe()

	_, ok := <-updates
	assert.False(t, ok)

	// Publishing without subscribers must not block.
	download, err := env.coordinator.RequestDownload(t.Context(), testItem("u"))
	require.NoError(t, err)

	_, err = waitDownload(t, download)
	require.NoError(t, err)
}

// TestCoordinator_RequestValidation tests rejected inputs.
func TestCoordinator_RequestValidation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, testEnvOptions{})

	_, err := env.coordinator.RequestDownload(t.Context(), nil)
	require.ErrorIs(t, err, ErrUnknownItem)

	_, err = env.coordinator.RequestDownload(t.Context(), &MediaItem{})
	require.ErrorIs(t, err, ErrUnknownItem)
}

func mustCatalog(t *testing.T, store storage.Store) *PersistentCatalog {
	t.Helper()

	catalog, err := NewPersistentCatalog(store)
	require.NoError(t, err)

	return catalog
}

// TestCoordinator_CorruptAvailabilityRecovers tests that an unreadable availability entry is
// replaced by the next completed download and survives a restart.
func TestCoordinator_CorruptAvailabilityRecovers(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(t.Context(), AvailabilityKey, []byte("{not json")))

	env := newTestEnv(t, testEnvOptions{store: store})

	for _, id := range []string{"42", "7"} {
		download, err := env.coordinator.RequestDownload(t.Context(), testItem(id))
		require.NoError(t, err)

		_, err = waitDownload(t, download)
		require.NoError(t, err)
	}

	reloaded, err := mustCatalog(t, store).LoadAvailability(t.Context())
	require.NoError(t, err)
	assert.True(t, reloaded.Has("42"))
	assert.True(t, reloaded.Has("7"))
}

// TestCoordinator_UpdatesFollowStateOrder tests that subscribers never see progress of a
// transfer after the update that cancelled it.
func TestCoordinator_UpdatesFollowStateOrder(t *testing.T) {
	t.Parallel()

	const cycles = 100

	progress := make([]int, 50)
	for i := range progress {
		progress[i] = i + 1
	}

	// Transfers never finish on their own, so every one of them ends through Cancel.
	never := make(chan struct{})

	env := newTestEnv(t, testEnvOptions{
		script: func(TransferRequest) fakeScript {
			return fakeScript{progress: progress, gate: never}
		},
	})

	updates, unsubscribe := env.coordinator.Subscribe(1 << 14)
	item := testItem("o")
	downloads := make([]*Download, 0, cycles)

	for range cycles {
		download, err := env.coordinator.RequestDownload(t.Context(), item)
		require.NoError(t, err)

		downloads = append(downloads, download)

		require.NoError(t, env.coordinator.Cancel(t.Context(), "o"))
	}

	for _, download := range downloads {
		_, err := waitDownload(t, download)
		require.ErrorIs(t, err, ErrTransferCancelled)
	}

	unsubscribe()

	var (
		started      bool
		lastProgress int
		received     int
	)

	for update := range updates {
		received++

		switch update.Record.Status {
		case DownloadStatusDownloading:
			if update.Record.Progress == 0 {
				started, lastProgress = true, 0

				continue
			}

			require.True(t, started, "progress %d arrived after the download was reset", update.Record.Progress)
			require.Greater(t, update.Record.Progress, lastProgress)

			lastProgress = update.Record.Progress
		case DownloadStatusNotStarted:
			started, lastProgress = false, 0
		default:
			t.Fatalf("unexpected status %s", update.Record.Status)
		}
	}

	assert.GreaterOrEqual(t, received, 2*cycles)
	assert.Equal(t, DownloadRecord{Status: DownloadStatusNotStarted}, env.coordinator.GetStatus("o"))
}

// statusCheckingContent reports whether GetStatus stays responsive while a file is checked.
type statusCheckingContent struct {
	*FileContentStore

	coordinator *Coordinator
	checks      atomic.Int32
	blocked     atomic.Bool
}

func (s *statusCheckingContent) Exists(id string) bool {
	done := make(chan struct{})

	go func() {
		defer close(done)

		s.coordinator.GetStatus(id)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		s.blocked.Store(true)
	}

	s.checks.Add(1)

	return s.FileContentStore.Exists(id)
}

// TestCoordinator_FileCheckOutsideLock tests that GetStatus does not wait for the completion file check.
func TestCoordinator_FileCheckOutsideLock(t *testing.T) {
	t.Parallel()

	catalog := mustCatalog(t, storage.NewMemoryStore())
	content := &statusCheckingContent{FileContentStore: NewFileContentStore(filepath.Join(t.TempDir(), "videos"))}

	coordinator := NewCoordinator(CoordinatorOptions{
		Catalog:                catalog,
		Content:                content,
		Engine:                 newFakeEngine(succeed),
		Connectivity:           StaticConnectivity(true),
		MaxConcurrentDownloads: 1,
	})
	content.coordinator = coordinator

	download, err := coordinator.RequestDownload(t.Context(), testItem("s"))
	require.NoError(t, err)

	_, err = waitDownload(t, download)
	require.NoError(t, err)

	assert.Positive(t, content.checks.Load())
	assert.False(t, content.blocked.Load(), "GetStatus waited for the file check")
	assert.Equal(t, DownloadStatusCompleted, coordinator.GetStatus("s").Status)

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	require.NoError(t, coordinator.Shutdown(ctx))
}
