package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oshokin/vidstash/internal/app"
	"github.com/oshokin/vidstash/internal/version"
)

var (
	//nolint:gochecknoglobals // Cobra command requires a global definition.
	configCmd = &cobra.Command{
		Use:              "config",
		Short:            "Configuration management commands",
		PersistentPreRun: skipConfig,
	}

	//nolint:gochecknoglobals // Cobra command requires a global definition.
	configInitCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with default values",
		Long: `Write a configuration file with every key set to its default.
An existing file is never overwritten.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			app.ExecuteConfigInitCommand(cmd.Context(), configFilenameFromFlag)
		},
	}

	//nolint:gochecknoglobals // Cobra command requires a global definition.
	configSetCmd = &cobra.Command{
		Use:   "set {key} {value}",
		Short: "Update one key of the configuration file",
		Long: `Update one key of the configuration file, keeping the order and comments of the others.

Example:
  vidstash config set download_speed_limit "1 MB"`,
		Args: cobra.ExactArgs(2), //nolint:mnd // Key and value.
		Run: func(cmd *cobra.Command, args []string) {
			app.ExecuteConfigSetCommand(cmd.Context(), configFilenameFromFlag, args[0], args[1])
		},
	}

	//nolint:gochecknoglobals // Cobra command requires a global definition.
	versionCmd = &cobra.Command{
		Use:              "version",
		Short:            "Print the version",
		Args:             cobra.NoArgs,
		PersistentPreRun: skipConfig,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.Full())
		},
	}
)

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	configCmd.AddCommand(configInitCmd, configSetCmd)
	rootCmd.AddCommand(configCmd, versionCmd)
}
