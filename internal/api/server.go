package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/oshokin/vidstash/internal/logger"
)

var (
	// ErrServerAlreadyRunning indicates that Start was called twice.
	ErrServerAlreadyRunning = errors.New("server is already running")
	// ErrServerNotRunning indicates that Stop was called before Start.
	ErrServerNotRunning = errors.New("server is not running")
)

const (
	// apiTimeout bounds a single JSON request. Media streaming is not bounded.
	apiTimeout        = 30 * time.Second
	readHeaderTimeout = 15 * time.Second
	idleTimeout       = 60 * time.Second

	// MediaPrefix is the route under which stored videos are served.
	MediaPrefix = "/media/"
)

// Server is the local HTTP API over the media library.
type Server struct {
	library   Library
	mediaRoot string
	address   string
	router    *chi.Mux
	server    *http.Server
	listener  net.Listener
	running   bool
	mu        sync.RWMutex
}

// NewServer creates a server for library that streams stored files from mediaRoot and listens on address.
func NewServer(library Library, mediaRoot, address string) *Server {
	s := &Server{
		library:   library,
		mediaRoot: mediaRoot,
		address:   address,
		router:    chi.NewRouter(),
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(apiTimeout))

		r.Get("/health", s.handleHealth)
		r.Get("/stats", s.handleStats)

		r.Route("/videos", func(r chi.Router) {
			r.Get("/", s.handleListVideos)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetVideo)
				r.Get("/uri", s.handleResolveVideo)
				r.Post("/download", s.handleStartDownload)
				r.Delete("/download", s.handleCancelDownload)
			})
		})
	})

	fileServer := http.FileServer(http.Dir(s.mediaRoot))
	s.router.Handle(MediaPrefix+"*", http.StripPrefix(MediaPrefix, fileServer))
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrServerAlreadyRunning
	}

	var listenConfig net.ListenConfig

	listener, err := listenConfig.Listen(ctx, "tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	httpServer := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}

	s.listener = listener
	s.server = httpServer
	s.running = true

	go func() {
		if serveErr := httpServer.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Errorf(ctx, "HTTP server error: %v", serveErr)
		}
	}()

	logger.Infof(ctx, "HTTP API listening on http://%s", listener.Addr())

	return nil
}

// Stop gracefully stops the server, waiting for active requests until ctx is done.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return ErrServerNotRunning
	}

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.running = false
	s.server = nil
	s.listener = nil

	return nil
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.running
}

// Addr returns the listening address, which differs from the configured one when the port is 0.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}

	return s.address
}

// requestLogger logs every request with the zap logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startedAt := time.Now()
		wrapped := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			kvs := []any{
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.Status(),
				"bytes", wrapped.BytesWritten(),
				"duration", time.Since(startedAt),
			}

			if wrapped.Status() >= http.StatusInternalServerError {
				logger.WarnKV(r.Context(), "HTTP request failed", kvs...)

				return
			}

			logger.DebugKV(r.Context(), "HTTP request", kvs...)
		}()

		next.ServeHTTP(wrapped, r)
	})
}
