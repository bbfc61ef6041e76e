package app

import (
	"context"
	"time"

	"github.com/oshokin/vidstash/internal/api"
	"github.com/oshokin/vidstash/internal/config"
	"github.com/oshokin/vidstash/internal/logger"
	media_service "github.com/oshokin/vidstash/internal/service/media"
)

// serverStopTimeout bounds the graceful stop of the HTTP API.
const serverStopTimeout = 5 * time.Second

// ExecuteServeCommand runs the local HTTP API until ctx is cancelled.
func ExecuteServeCommand(ctx context.Context, cfg *config.Config, opts RuntimeOptions) {
	if err := serve(ctx, cfg, opts); err != nil {
		logger.Fatalf(ctx, "Failed to serve the HTTP API: %v", err)
	}
}

func serve(ctx context.Context, cfg *config.Config, opts RuntimeOptions) error {
	appRuntime, err := NewRuntime(cfg, opts)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := appRuntime.Close(ctx); closeErr != nil {
			logger.Warnf(ctx, "Failed to shut down cleanly: %v", closeErr)
		}

		media_service.PrintSummary(ctx, appRuntime.Coordinator().Statistics())
	}()

	items, err := appRuntime.Coordinator().LoadLibrary(ctx)
	if err != nil {
		return err
	}

	logger.Infof(ctx, "Serving %d videos from %s", len(items), appRuntime.Content().Root())

	server := api.NewServer(appRuntime.Coordinator(), appRuntime.Content().Root(), cfg.ListenAddress)
	if err = server.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	logger.Info(ctx, "Shutting down the HTTP API")

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), serverStopTimeout)
	defer cancel()

	return server.Stop(stopCtx)
}
