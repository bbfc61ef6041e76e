package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	media_client "github.com/oshokin/vidstash/internal/client/media"
	"github.com/oshokin/vidstash/internal/config"
	media_service "github.com/oshokin/vidstash/internal/service/media"
	"github.com/oshokin/vidstash/internal/storage"
	"github.com/oshokin/vidstash/internal/utils"
	"github.com/oshokin/vidstash/internal/version"
)

const (
	// productName identifies the application in the default User-Agent.
	productName = "vidstash"

	// shutdownTimeout bounds the cleanup of cancelled transfers on exit.
	shutdownTimeout = 10 * time.Second
)

// RuntimeOptions are command-line overrides that are not part of the configuration file.
type RuntimeOptions struct {
	// Offline forces offline mode regardless of the configured connectivity mode.
	Offline bool
}

// Runtime holds the components shared by every command.
type Runtime struct {
	cfg         *config.Config
	store       storage.Store
	content     *media_service.FileContentStore
	coordinator *media_service.Coordinator
}

// NewRuntime opens the configured store and builds the download coordinator.
func NewRuntime(cfg *config.Config, opts RuntimeOptions) (*Runtime, error) {
	store, err := storage.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.StorageBackend, err)
	}

	catalog, err := media_service.NewPersistentCatalog(store)
	if err != nil {
		_ = store.Close()

		return nil, err
	}

	client := media_client.NewClient(cfg.CatalogURL, newUserAgentProvider(cfg))
	content := media_service.NewFileContentStore(cfg.MediaPath)

	coordinator := media_service.NewCoordinator(media_service.CoordinatorOptions{
		Client:                 client,
		Catalog:                catalog,
		Content:                content,
		Engine:                 media_service.NewHTTPTransferEngine(client, cfg.ParsedDownloadSpeedLimit, cfg.ParsedStallTimeout),
		Connectivity:           media_service.NewConnectivityChecker(cfg, client, opts.Offline),
		MaxConcurrentDownloads: cfg.MaxConcurrentDownloads,
	})

	return &Runtime{
		cfg:         cfg,
		store:       store,
		content:     content,
		coordinator: coordinator,
	}, nil
}

// Coordinator returns the download coordinator.
func (r *Runtime) Coordinator() *media_service.Coordinator {
	return r.coordinator
}

// Content returns the local video store.
func (r *Runtime) Content() *media_service.FileContentStore {
	return r.content
}

// Close cancels running transfers, waits for their cleanup and closes the store.
func (r *Runtime) Close(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	return errors.Join(
		r.coordinator.Shutdown(shutdownCtx),
		r.store.Close(),
	)
}

func newUserAgentProvider(cfg *config.Config) utils.UserAgentProvider {
	if userAgent := strings.TrimSpace(cfg.UserAgent); userAgent != "" {
		return utils.NewSimpleUserAgentProvider(userAgent)
	}

	return utils.NewProductUserAgentProvider(productName, version.Short())
}
