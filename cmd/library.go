package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/vidstash/internal/app"
)

var (
	//nolint:gochecknoglobals // Cobra command requires a global definition.
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List the library with download status and playback URI",
		Long: `Print every catalog item with its download status, progress and the URI a player should use.

The catalog is fetched once and stored locally, so listing works offline after the first run.`,
		Args:             cobra.NoArgs,
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, _ []string) {
			app.ExecuteListCommand(cmd.Context(), appConfig, runtimeOptions(cmd.Flags()), cmd.OutOrStdout())
		},
	}

	//nolint:gochecknoglobals // Cobra command requires a global definition.
	resolveCmd = &cobra.Command{
		Use:   "resolve {ids}",
		Short: "Print the playback URI of videos",
		Long: `Print one line per id: the id and the URI a player should use.
The URI is the local file when the video is stored, the remote URL otherwise.`,
		Args:             cobra.MinimumNArgs(1),
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, ids []string) {
			app.ExecuteResolveCommand(cmd.Context(), appConfig, runtimeOptions(cmd.Flags()), ids, cmd.OutOrStdout())
		},
	}

	//nolint:gochecknoglobals // Cobra command requires a global definition.
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the library over a local HTTP API",
		Long: `Serve the library on listen_address until interrupted.

Endpoints:
  GET    /api/health
  GET    /api/videos
  GET    /api/videos/{id}
  GET    /api/videos/{id}/uri
  POST   /api/videos/{id}/download
  DELETE /api/videos/{id}/download
  GET    /api/stats
  GET    /media/video_{id}.mp4`,
		Args:             cobra.NoArgs,
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, _ []string) {
			app.ExecuteServeCommand(cmd.Context(), appConfig, runtimeOptions(cmd.Flags()))
		},
	}
)

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	rootCmd.AddCommand(listCmd, resolveCmd, serveCmd)
}
