package app

import (
	"context"

	"github.com/oshokin/vidstash/internal/config"
	"github.com/oshokin/vidstash/internal/logger"
)

// ExecuteConfigInitCommand writes a configuration file with default values.
func ExecuteConfigInitCommand(ctx context.Context, configFilename string) {
	if configFilename == "" {
		configFilename = config.DefaultConfigFilename
	}

	if err := config.WriteDefaultConfig(configFilename); err != nil {
		logger.Fatalf(ctx, "Failed to write configuration: %v", err)
	}

	logger.Infof(ctx, "Configuration written to %s", configFilename)
}

// ExecuteConfigSetCommand updates one key of the configuration file.
// The updated file is validated so a typo is reported right away.
func ExecuteConfigSetCommand(ctx context.Context, configFilename, key, value string) {
	if err := setConfigValue(configFilename, key, value); err != nil {
		logger.Fatalf(ctx, "Failed to update configuration: %v", err)
	}

	logger.Infof(ctx, "Configuration updated: %s = %s", key, value)
}

func setConfigValue(configFilename, key, value string) error {
	if configFilename == "" {
		configFilename = config.DefaultConfigFilename
	}

	if err := config.SetConfigValue(configFilename, key, value); err != nil {
		return err
	}

	cfg, err := config.LoadConfig(configFilename)
	if err != nil {
		return err
	}

	return config.ValidateConfig(cfg)
}
