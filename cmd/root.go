package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oshokin/vidstash/internal/app"
	"github.com/oshokin/vidstash/internal/config"
	"github.com/oshokin/vidstash/internal/logger"
)

var (
	//nolint:gochecknoglobals // It is required for configuration initialization before the application starts.
	configFilenameFromFlag string

	//nolint:gochecknoglobals,lll // It is initialized once during the application's startup and shared across the command execution logic.
	appConfig *config.Config

	//nolint:gochecknoglobals,lll // Cobra command requires a global definition for proper command-line parsing and execution.
	rootCmd = &cobra.Command{
		Use:   "vidstash [flags] {ids}",
		Short: "Download videos from the catalog for offline playback.",
		Long: `Vidstash keeps a local library of videos from a remote catalog.
It can:
- Download videos by catalog id, with progress and a session summary
- List the library with download status and playback URI
- Resolve the URI a player should use: the local file when stored, the remote URL otherwise
- Serve the library over a local HTTP API

Downloads are stored as video_<id>.mp4 and remembered across restarts.`,
		Args:             cobra.MinimumNArgs(1),
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, ids []string) {
			app.ExecuteRootCommand(cmd.Context(), appConfig, runtimeOptions(cmd.Flags()), ids)
		},
	}
)

// Execute executes the root command.
func Execute() {
	signals := []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM}
	ctx, stop := signal.NotifyContext(context.Background(), signals...)

	defer func() {
		_ = logger.Logger().Sync()
	}()

	defer stop()

	go func() {
		defer stop()

		err := rootCmd.ExecuteContext(ctx)
		cobra.CheckErr(err)
	}()

	<-ctx.Done()
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	persistentFlags := rootCmd.PersistentFlags()

	persistentFlags.StringVarP(
		&configFilenameFromFlag,
		"config",
		"c",
		"",
		fmt.Sprintf("path to the configuration file (default is '%s')",
			config.DefaultConfigFilename))

	persistentFlags.StringP(
		"output",
		"o",
		"",
		"directory to store downloaded videos (the path will be created if it doesn’t exist).")

	persistentFlags.StringP(
		"speed-limit",
		"s",
		"",
		"set download speed limit per video, for example: 500 kbps, 1 mbps, 1.5 mbps.")

	persistentFlags.Int64P(
		"concurrency",
		"n",
		0,
		"maximum number of videos downloaded at the same time.")

	persistentFlags.Bool(
		"offline",
		false,
		"act as if the network were unreachable: serve only what is stored locally.")
}

func initConfig(cmd *cobra.Command, _ []string) {
	var err error

	appConfig, err = config.LoadConfig(configFilenameFromFlag)
	if err != nil {
		logger.Fatalf(cmd.Context(), "Failed to load configuration: %v", err)
	}

	if err = bindFlagsToConfig(cmd.Flags(), appConfig); err != nil {
		logger.Fatalf(cmd.Context(), "Invalid configuration: %v", err)
	}

	logger.SetLevel(appConfig.ParsedLogLevel)
}

func bindFlagsToConfig(flags *pflag.FlagSet, cfg *config.Config) error {
	if flag := flags.Lookup("output"); flag != nil && flag.Changed {
		cfg.MediaPath, _ = flags.GetString("output")
	}

	if flag := flags.Lookup("speed-limit"); flag != nil && flag.Changed {
		cfg.DownloadSpeedLimit, _ = flags.GetString("speed-limit")
	}

	if flag := flags.Lookup("concurrency"); flag != nil && flag.Changed {
		cfg.MaxConcurrentDownloads, _ = flags.GetInt64("concurrency")
	}

	return config.ValidateConfig(cfg)
}

func runtimeOptions(flags *pflag.FlagSet) app.RuntimeOptions {
	offline, _ := flags.GetBool("offline")

	return app.RuntimeOptions{Offline: offline}
}

// skipConfig replaces initConfig for commands that work without a configuration file.
func skipConfig(*cobra.Command, []string) {}
