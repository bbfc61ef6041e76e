package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/vidstash/internal/constants"
	"github.com/oshokin/vidstash/internal/logger"
	"github.com/oshokin/vidstash/internal/utils"
)

// Config holds all configuration settings.
type Config struct {
	// CatalogURL is the endpoint returning the remote video catalog as JSON.
	CatalogURL string `mapstructure:"catalog_url"`
	// MediaPath is the directory where downloaded videos are stored.
	MediaPath string `mapstructure:"media_path"`
	// StorageBackend selects the durable key-value store: file, duckdb or memory.
	StorageBackend string `mapstructure:"storage_backend"`
	// StoragePath is the directory (file backend) or database file (duckdb backend) for persisted state.
	StoragePath string `mapstructure:"storage_path"`
	// LogLevel specifies the logging verbosity level.
	LogLevel string `mapstructure:"log_level"`
	// DownloadSpeedLimit sets the maximum download speed per transfer (e.g., "1MB", "500KB").
	DownloadSpeedLimit string `mapstructure:"download_speed_limit"`
	// StallTimeout is how long a transfer may go without receiving bytes before it fails (e.g., "30s").
	StallTimeout string `mapstructure:"stall_timeout"`
	// MaxConcurrentDownloads is the maximum number of transfers running at the same time.
	MaxConcurrentDownloads int64 `mapstructure:"max_concurrent_downloads"`
	// ConnectivityMode selects how connectivity is detected: auto, online or offline.
	ConnectivityMode string `mapstructure:"connectivity_mode"`
	// ConnectivityProbeURL is requested with HEAD in auto mode to decide whether the network is reachable.
	ConnectivityProbeURL string `mapstructure:"connectivity_probe_url"`
	// ConnectivityProbeTimeout bounds a single connectivity probe (e.g., "3s").
	ConnectivityProbeTimeout string `mapstructure:"connectivity_probe_timeout"`
	// ListenAddress is the address of the local HTTP API.
	ListenAddress string `mapstructure:"listen_address"`
	// UserAgent overrides the User-Agent header. Empty means "vidstash/<version>".
	UserAgent string `mapstructure:"user_agent"`
	// ParsedLogLevel is the parsed zap log level.
	ParsedLogLevel zapcore.Level
	// ParsedDownloadSpeedLimit is the parsed download speed limit in bytes per second.
	ParsedDownloadSpeedLimit int64
	// ParsedStallTimeout is the parsed stall timeout.
	ParsedStallTimeout time.Duration
	// ParsedConnectivityProbeTimeout is the parsed connectivity probe timeout.
	ParsedConnectivityProbeTimeout time.Duration
}

const (
	// DefaultConfigFilename is the default name of the configuration file.
	DefaultConfigFilename = ".vidstash.yaml"

	// DefaultCatalogURL is the public catalog of sample videos.
	DefaultCatalogURL = "https://gist.githubusercontent.com/poudyalanil/ca84582cbeb4fc123a13290a586da925/raw/14a27bd0bcd0cd323b35ad79cf3b493dddf6216b/videos.json" //nolint:lll

	// DefaultMaxLogLength is the default maximum size (in bytes) for logged HTTP dumps.
	DefaultMaxLogLength = 1 * 1024 * 1024 // 1 MB

	// ThrottleInterval is the period of one throttled chunk when a speed limit is set.
	ThrottleInterval = time.Second

	// envPrefix is the prefix of environment variables overriding file values.
	envPrefix = "VIDSTASH"
)

// Storage backends.
const (
	StorageBackendFile   = "file"
	StorageBackendDuckDB = "duckdb"
	StorageBackendMemory = "memory"
)

// Connectivity modes.
const (
	ConnectivityModeAuto    = "auto"
	ConnectivityModeOnline  = "online"
	ConnectivityModeOffline = "offline"
)

// Static error definitions for better error handling.
var (
	// ErrEmptyCatalogURL indicates that the catalog URL is missing.
	ErrEmptyCatalogURL = errors.New("catalog_url cannot be empty")
	// ErrInvalidCatalogURL indicates that the catalog URL is not an absolute http(s) URL.
	ErrInvalidCatalogURL = errors.New("catalog_url must be an absolute http or https URL")
	// ErrEmptyMediaPath indicates that the media directory is missing.
	ErrEmptyMediaPath = errors.New("media_path cannot be empty")
	// ErrUnknownStorageBackend indicates that the storage backend is not recognized.
	ErrUnknownStorageBackend = errors.New("unknown storage backend")
	// ErrEmptyStoragePath indicates that a persistent backend has no path.
	ErrEmptyStoragePath = errors.New("storage_path cannot be empty for a persistent backend")
	// ErrUnknownLogLevel indicates that the log level is not recognized.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrInvalidStallTimeout indicates that the stall timeout is invalid.
	ErrInvalidStallTimeout = errors.New("stall_timeout must be positive")
	// ErrStallTimeoutTooShort indicates that throttling would trip the stall detector.
	ErrStallTimeoutTooShort = errors.New("stall_timeout must be longer than the throttle interval when a speed limit is set")
	// ErrInvalidConcurrentDownloads indicates that the concurrent downloads count is invalid.
	ErrInvalidConcurrentDownloads = errors.New("max concurrent downloads must be a positive integer")
	// ErrUnknownConnectivityMode indicates that the connectivity mode is not recognized.
	ErrUnknownConnectivityMode = errors.New("unknown connectivity mode")
	// ErrEmptyProbeURL indicates that auto connectivity has nothing to probe.
	ErrEmptyProbeURL = errors.New("connectivity_probe_url cannot be empty in auto mode")
	// ErrInvalidProbeTimeout indicates that the probe timeout is invalid.
	ErrInvalidProbeTimeout = errors.New("connectivity_probe_timeout must be positive")
	// ErrUnknownConfigKey indicates that SetConfigValue was asked for a key the config does not have.
	ErrUnknownConfigKey = errors.New("unknown configuration key")
)

// defaultValue is a configuration key with its default.
type defaultValue struct {
	key   string
	value any
}

// defaultValues lists every key in the order used by WriteDefaultConfig.
//
//nolint:gochecknoglobals // Immutable table shared by LoadConfig and WriteDefaultConfig.
var defaultValues = []defaultValue{
	{key: "catalog_url", value: DefaultCatalogURL},
	{key: "media_path", value: "videos"},
	{key: "storage_backend", value: StorageBackendFile},
	{key: "storage_path", value: "vidstash-data"},
	{key: "log_level", value: "info"},
	{key: "download_speed_limit", value: ""},
	{key: "stall_timeout", value: "30s"},
	{key: "max_concurrent_downloads", value: 2},
	{key: "connectivity_mode", value: ConnectivityModeAuto},
	{key: "connectivity_probe_url", value: "https://clients3.google.com/generate_204"},
	{key: "connectivity_probe_timeout", value: "3s"},
	{key: "listen_address", value: "127.0.0.1:8787"},
	{key: "user_agent", value: ""},
}

// LoadConfig loads configuration settings from a YAML file.
// Keys missing from the file take their defaults, and VIDSTASH_* environment variables win over both.
func LoadConfig(configFilename string) (*Config, error) {
	if configFilename == "" {
		configFilename = DefaultConfigFilename
	}

	for _, dv := range defaultValues {
		viper.SetDefault(dv.key, dv.value)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	viper.SetConfigFile(configFilename)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config from file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// ValidateConfig checks the configuration for validity and sets derived fields.
//
//nolint:funlen,gocognit,cyclop // Validation functions naturally have high complexity and length due to sequential checks.
func ValidateConfig(cfg *Config) error {
	var (
		downloadSpeedLimit       = strings.TrimSpace(cfg.DownloadSpeedLimit)
		parsedDownloadSpeedLimit uint64
		err                      error
	)

	catalogURL := strings.TrimSpace(cfg.CatalogURL)
	if catalogURL == "" {
		return ErrEmptyCatalogURL
	}

	if !isHTTPURL(catalogURL) {
		return fmt.Errorf("%w: '%s'", ErrInvalidCatalogURL, catalogURL)
	}

	cfg.CatalogURL = catalogURL

	if strings.TrimSpace(cfg.MediaPath) == "" {
		return ErrEmptyMediaPath
	}

	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))
	if !slices.Contains([]string{StorageBackendFile, StorageBackendDuckDB, StorageBackendMemory}, cfg.StorageBackend) {
		return fmt.Errorf("%w: '%s'", ErrUnknownStorageBackend, cfg.StorageBackend)
	}

	if cfg.StorageBackend != StorageBackendMemory && strings.TrimSpace(cfg.StoragePath) == "" {
		return ErrEmptyStoragePath
	}

	parsedLogLevel, isLogLevelCorrect := logger.ParseLogLevel(cfg.LogLevel)
	if !(isLogLevelCorrect) {
		return fmt.Errorf("%w: '%s'", ErrUnknownLogLevel, cfg.LogLevel)
	}

	cfg.ParsedLogLevel = parsedLogLevel

	if downloadSpeedLimit != "" && downloadSpeedLimit != "0" {
		parsedDownloadSpeedLimit, err = humanize.ParseBytes(downloadSpeedLimit)
		if err != nil {
			return fmt.Errorf("failed to parse download speed limit: %w", err)
		}
	}

	// io.CopyN accepts only int64 so we transform it safely in order to use it later.
	cfg.ParsedDownloadSpeedLimit = utils.SafeUint64ToInt64(parsedDownloadSpeedLimit)

	cfg.ParsedStallTimeout, err = time.ParseDuration(cfg.StallTimeout)
	if err != nil {
		return fmt.Errorf("failed to parse stall timeout: %w", err)
	}

	if cfg.ParsedStallTimeout <= 0 {
		return ErrInvalidStallTimeout
	}

	if cfg.ParsedDownloadSpeedLimit > 0 && cfg.ParsedStallTimeout <= ThrottleInterval {
		return ErrStallTimeoutTooShort
	}

	if cfg.MaxConcurrentDownloads <= 0 {
		return ErrInvalidConcurrentDownloads
	}

	cfg.ConnectivityMode = strings.ToLower(strings.TrimSpace(cfg.ConnectivityMode))

	switch cfg.ConnectivityMode {
	case ConnectivityModeOnline, ConnectivityModeOffline:
	case ConnectivityModeAuto:
		if strings.TrimSpace(cfg.ConnectivityProbeURL) == "" {
			return ErrEmptyProbeURL
		}

		cfg.ParsedConnectivityProbeTimeout, err = time.ParseDuration(cfg.ConnectivityProbeTimeout)
		if err != nil {
			return fmt.Errorf("failed to parse connectivity probe timeout: %w", err)
		}

		if cfg.ParsedConnectivityProbeTimeout <= 0 {
			return ErrInvalidProbeTimeout
		}
	default:
		return fmt.Errorf("%w: '%s'", ErrUnknownConnectivityMode, cfg.ConnectivityMode)
	}

	return nil
}

// WriteDefaultConfig writes a configuration file with every key set to its default.
// It refuses to overwrite an existing file.
func WriteDefaultConfig(configFilename string) error {
	if configFilename == "" {
		configFilename = DefaultConfigFilename
	}

	mapNode := &yaml.Node{Kind: yaml.MappingNode}

	for _, dv := range defaultValues {
		var valueNode yaml.Node
		if err := valueNode.Encode(dv.value); err != nil {
			return fmt.Errorf("failed to encode default for '%s': %w", dv.key, err)
		}

		mapNode.Content = append(mapNode.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: dv.key},
			&valueNode)
	}

	content, err := yaml.Marshal(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{mapNode}})
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	file, err := os.OpenFile(configFilename, os.O_CREATE|os.O_EXCL|os.O_WRONLY, constants.DefaultFilePermissions)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	defer file.Close() //nolint:errcheck // Write error is returned below.

	if _, err = file.Write(content); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SetConfigValue updates a single key in the configuration file while preserving the original format and order.
// Keys absent from the file are appended.
func SetConfigValue(configFilename, key, value string) error {
	if !isKnownKey(key) {
		return fmt.Errorf("%w: '%s'", ErrUnknownConfigKey, key)
	}

	if configFilename == "" {
		configFilename = getConfigFilePath()
	}

	// Read the original file content.
	originalContent, err := os.ReadFile(configFilename)
	if err != nil {
		return handleMissingConfigFile(configFilename, key, value, err)
	}

	// Parse YAML while preserving order using yaml.Node.
	var node yaml.Node
	if err = yaml.Unmarshal(originalContent, &node); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	setValueInNode(&node, key, value)

	// Marshal back to YAML (preserves order).
	newContent, err := yaml.Marshal(&node)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	// Write the file back with preserved order.
	if err = os.WriteFile(configFilename, newContent, constants.DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// getConfigFilePath returns the config file path from viper or the default.
func getConfigFilePath() string {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		return DefaultConfigFilename
	}

	return configFile
}

// handleMissingConfigFile creates a new config file if it doesn't exist.
func handleMissingConfigFile(configFile, key, value string, err error) error {
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// File doesn't exist, create it with viper.
	viper.Set(key, value)

	if err = viper.SafeWriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	return nil
}

// setValueInNode sets key to value in the YAML node tree, appending the key when it is missing.
func setValueInNode(node *yaml.Node, key, value string) {
	// An empty document gets a fresh mapping.
	if len(node.Content) == 0 {
		node.Kind = yaml.DocumentNode
		node.Content = []*yaml.Node{{Kind: yaml.MappingNode}}
	}

	// The root node is a document node, content[0] is the actual map.
	mapNode := node.Content[0]
	if mapNode.Kind != yaml.MappingNode {
		return
	}

	// Iterate through key-value pairs (stored as alternating nodes).
	for i := 0; i+1 < len(mapNode.Content); i += 2 {
		if mapNode.Content[i].Value != key {
			continue
		}

		valueNode := mapNode.Content[i+1]
		valueNode.Kind = yaml.ScalarNode
		valueNode.Tag = ""
		valueNode.Value = value

		return
	}

	mapNode.Content = append(mapNode.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Value: value})
}

func isKnownKey(key string) bool {
	return slices.ContainsFunc(defaultValues, func(dv defaultValue) bool {
		return dv.key == key
	})
}

func isHTTPURL(rawURL string) bool {
	parsed, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return false
	}

	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
