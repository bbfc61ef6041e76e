package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	client_media "github.com/oshokin/vidstash/internal/client/media"
	"github.com/oshokin/vidstash/internal/service/media"
	"github.com/oshokin/vidstash/internal/storage"
	"github.com/oshokin/vidstash/internal/utils"
)

// newUpstream serves a one-item catalog and its video.
func newUpstream(t *testing.T, payload []byte) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/catalog.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		_ = json.NewEncoder(w).Encode([]client_media.Video{{
			ID:       "1",
			Title:    "Big Buck Bunny",
			VideoURL: "http://" + r.Host + "/videos/1.mp4",
		}})
	})

	mux.HandleFunc("/videos/1.mp4", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		_, _ = w.Write(payload)
	})

	upstream := httptest.NewServer(mux)
	t.Cleanup(upstream.Close)

	return upstream
}

func TestServer_EndToEnd(t *testing.T) {
	t.Parallel()

	payload := bytes.Repeat([]byte("frame"), 4096)
	upstream := newUpstream(t, payload)
	mediaRoot := filepath.Join(t.TempDir(), "videos")

	client := client_media.NewClient(upstream.URL+"/catalog.json", utils.NewSimpleUserAgentProvider("vidstash-test"))
	catalog, err := media.NewPersistentCatalog(storage.NewMemoryStore())
	require.NoError(t, err)

	coordinator := media.NewCoordinator(media.CoordinatorOptions{
		Client:                 client,
		Catalog:                catalog,
		Content:                media.NewFileContentStore(mediaRoot),
		Engine:                 media.NewHTTPTransferEngine(client, 0, time.Second),
		Connectivity:           media.StaticConnectivity(true),
		MaxConcurrentDownloads: 2,
	})

	t.Cleanup(func() {
		_ = coordinator.Shutdown(context.Background())
	})

	_, err = coordinator.LoadLibrary(t.Context())
	require.NoError(t, err)

	server := httptest.NewServer(NewServer(coordinator, mediaRoot, "").Handler())
	t.Cleanup(server.Close)

	get := func(path string) *http.Response {
		request, requestErr := http.NewRequestWithContext(t.Context(), http.MethodGet, server.URL+path, http.NoBody)
		require.NoError(t, requestErr)

		response, requestErr := server.Client().Do(request)
		require.NoError(t, requestErr)

		t.Cleanup(func() { _ = response.Body.Close() })

		return response
	}

	var before uriResponse
	require.NoError(t, json.NewDecoder(get("/api/videos/1/uri").Body).Decode(&before))
	assert.Equal(t, upstream.URL+"/videos/1.mp4", before.URI)

	request, err := http.NewRequestWithContext(t.Context(), http.MethodPost, server.URL+"/api/videos/1/download", http.NoBody)
	require.NoError(t, err)

	response, err := server.Client().Do(request)
	require.NoError(t, err)
	_ = response.Body.Close()
	assert.Contains(t, []int{http.StatusAccepted, http.StatusOK}, response.StatusCode)

	assert.Eventually(t, func() bool {
		return coordinator.GetStatus("1").Status == media.DownloadStatusCompleted
	}, 5*time.Second, 10*time.Millisecond)

	var after uriResponse
	require.NoError(t, json.NewDecoder(get("/api/videos/1/uri").Body).Decode(&after))
	assert.Equal(t, filepath.Join(mediaRoot, "video_1.mp4"), after.URI)

	stream := get("/media/video_1.mp4")
	require.Equal(t, http.StatusOK, stream.StatusCode)

	streamed, err := io.ReadAll(stream.Body)
	require.NoError(t, err)
	assert.Equal(t, payload, streamed)

	var stats media.Statistics
	require.NoError(t, json.NewDecoder(get("/api/stats").Body).Decode(&stats))
	assert.Equal(t, int64(1), stats.Completed)
	assert.Equal(t, int64(len(payload)), stats.BytesDownloaded)
}

func TestServer_StartStop(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, t.TempDir())

	require.ErrorIs(t, server.Stop(t.Context()), ErrServerNotRunning)
	require.NoError(t, server.Start(t.Context()))
	assert.True(t, server.IsRunning())
	require.ErrorIs(t, server.Start(t.Context()), ErrServerAlreadyRunning)

	request, err := http.NewRequestWithContext(t.Context(), http.MethodGet, "http://"+server.Addr()+"/api/health", http.NoBody)
	require.NoError(t, err)

	response, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	_ = response.Body.Close()
	assert.Equal(t, http.StatusOK, response.StatusCode)

	require.NoError(t, server.Stop(t.Context()))
	assert.False(t, server.IsRunning())
	assert.Equal(t, "127.0.0.1:0", server.Addr())
}
