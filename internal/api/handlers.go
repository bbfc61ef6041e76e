package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/oshokin/vidstash/internal/logger"
	"github.com/oshokin/vidstash/internal/service/media"
	"github.com/oshokin/vidstash/internal/version"
)

// User-facing outcomes of a download request.
const (
	MessageDownloadStarted   = "Download started"
	MessageAlreadyDownloaded = "Video is already downloaded"
	MessageOffline           = "You are offline, connect to the internet to download videos"
)

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// videoResponse is the combined view of an item plus where a player can stream the local copy.
type videoResponse struct {
	media.ItemView

	StreamURL string `json:"streamUrl,omitempty"`
}

type downloadResponse struct {
	ItemID  string               `json:"itemId"`
	Record  media.DownloadRecord `json:"record"`
	Message string               `json:"message"`
}

type uriResponse struct {
	ItemID string `json:"itemId"`
	URI    string `json:"uri"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, healthResponse{
		Status:  "ok",
		Version: version.Version,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.library.Statistics())
}

func (s *Server) handleListVideos(w http.ResponseWriter, r *http.Request) {
	views := s.library.Items()

	response := make([]videoResponse, 0, len(views))
	for _, view := range views {
		response = append(response, newVideoResponse(view))
	}

	writeJSON(w, r, http.StatusOK, response)
}

func (s *Server) handleGetVideo(w http.ResponseWriter, r *http.Request) {
	view, err := s.library.Item(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(w, r, http.StatusOK, newVideoResponse(view))
}

func (s *Server) handleResolveVideo(w http.ResponseWriter, r *http.Request) {
	view, err := s.library.Item(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(w, r, http.StatusOK, uriResponse{
		ItemID: view.Item.ID,
		URI:    view.URI,
	})
}

func (s *Server) handleStartDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	view, err := s.library.Item(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)

		return
	}

	if _, err = s.library.RequestDownload(ctx, view.Item); err != nil {
		writeError(w, r, err)

		return
	}

	response := downloadResponse{
		ItemID:  view.Item.ID,
		Record:  s.library.GetStatus(view.Item.ID),
		Message: MessageDownloadStarted,
	}

	status := http.StatusAccepted
	if response.Record.Status == media.DownloadStatusCompleted {
		status = http.StatusOK
		response.Message = MessageAlreadyDownloaded
	}

	writeJSON(w, r, status, response)
}

func (s *Server) handleCancelDownload(w http.ResponseWriter, r *http.Request) {
	if err := s.library.Cancel(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func newVideoResponse(view media.ItemView) videoResponse {
	response := videoResponse{ItemView: view}

	if view.Available || view.Record.Status == media.DownloadStatusCompleted {
		response.StreamURL = MediaPrefix + url.PathEscape(media.FileNameFor(view.Item.ID))
	}

	return response
}

// statusForError maps library errors to HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, media.ErrUnknownItem):
		return http.StatusNotFound
	case errors.Is(err, media.ErrOffline), errors.Is(err, media.ErrCoordinatorClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, media.ErrNothingToCancel):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)

	message := err.Error()
	if errors.Is(err, media.ErrOffline) {
		message = MessageOffline
	}

	if status == http.StatusInternalServerError {
		logger.Errorf(r.Context(), "Request %s %s failed: %v", r.Method, r.URL.Path, err)
	}

	writeJSON(w, r, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Warnf(r.Context(), "Failed to encode response for %s: %v", r.URL.Path, err)
	}
}
