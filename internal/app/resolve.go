package app

import (
	"context"
	"fmt"
	"io"

	"github.com/oshokin/vidstash/internal/config"
	"github.com/oshokin/vidstash/internal/logger"
)

// ExecuteResolveCommand prints the playback URI of every id: the local file when stored, the remote URL otherwise.
func ExecuteResolveCommand(ctx context.Context, cfg *config.Config, opts RuntimeOptions, args []string, out io.Writer) {
	if err := resolveItems(ctx, cfg, opts, args, out); err != nil {
		logger.Fatalf(ctx, "Failed to resolve videos: %v", err)
	}
}

func resolveItems(ctx context.Context, cfg *config.Config, opts RuntimeOptions, args []string, out io.Writer) error {
	ids, err := collectItemIDs(args)
	if err != nil {
		return err
	}

	appRuntime, err := NewRuntime(cfg, opts)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := appRuntime.Close(ctx); closeErr != nil {
			logger.Warnf(ctx, "Failed to shut down cleanly: %v", closeErr)
		}
	}()

	coordinator := appRuntime.Coordinator()

	if _, err = coordinator.LoadLibrary(ctx); err != nil {
		return err
	}

	resolver := coordinator.Resolver()

	for _, id := range ids {
		view, itemErr := coordinator.Item(ctx, id)
		if itemErr != nil {
			logger.Warnf(ctx, "Skipping '%s': %v", id, itemErr)

			continue
		}

		if _, err = fmt.Fprintf(out, "%s\t%s\n", id, resolver.Resolve(view.Item)); err != nil {
			return err
		}
	}

	return nil
}
