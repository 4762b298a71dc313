package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g. SHOWCASE_STORAGE_PRIMARY_ROOT
const EnvPrefix = "SHOWCASE"

// Config represents the entire application configuration
type Config struct {
	Storage   StorageConfig   `mapstructure:"storage"`
	Registry  RegistryConfig  `mapstructure:"registry"`
	Probe     ProbeConfig     `mapstructure:"probe"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Database  DatabaseConfig  `mapstructure:"database"`
}

// StorageConfig contains the upload tiers
type StorageConfig struct {
	DataDir        string  `mapstructure:"data_dir"`
	PrimaryRoot    string  `mapstructure:"primary_root"`
	PrimaryMaxMB   float64 `mapstructure:"primary_max_mb"`
	SecondaryRoot  string  `mapstructure:"secondary_root"`
	SecondaryMaxMB float64 `mapstructure:"secondary_max_mb"`
	PublicURLBase  string  `mapstructure:"public_url_base"`
}

// RegistryConfig selects where storage targets are persisted
type RegistryConfig struct {
	Backend string `mapstructure:"backend"` // json or sqlite
	Path    string `mapstructure:"path"`
}

// ProbeConfig selects the disk usage backend
type ProbeConfig struct {
	Backend        string `mapstructure:"backend"` // command, statfs or gopsutil
	CommandTimeout string `mapstructure:"command_timeout"`
}

// DiscoveryConfig selects the partition listing backend
type DiscoveryConfig struct {
	Backend string `mapstructure:"backend"` // command or gopsutil
	Timeout string `mapstructure:"timeout"`
}

// HTTPConfig contains HTTP server configuration
type HTTPConfig struct {
	BindAddr      string `mapstructure:"bind_addr"`
	AdminUsername string `mapstructure:"admin_username"`
	AdminPassword string `mapstructure:"admin_password"`
	ReadTimeout   string `mapstructure:"read_timeout"`
	WriteTimeout  string `mapstructure:"write_timeout"`
	IdleTimeout   string `mapstructure:"idle_timeout"`
	MaxUploadMB   int    `mapstructure:"max_upload_mb"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// Load loads configuration from the specified file path. A missing file is
// not an error; defaults and SHOWCASE_* environment variables apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.data_dir", "data")
	v.SetDefault("storage.primary_root", filepath.Join("public", "uploads"))
	v.SetDefault("storage.primary_max_mb", 10*1024)
	v.SetDefault("storage.secondary_root", "")
	v.SetDefault("storage.secondary_max_mb", 0)
	v.SetDefault("storage.public_url_base", "/uploads")
	v.SetDefault("registry.backend", "json")
	v.SetDefault("registry.path", "")
	v.SetDefault("probe.backend", "command")
	v.SetDefault("probe.command_timeout", "5s")
	v.SetDefault("discovery.backend", "command")
	v.SetDefault("discovery.timeout", "5s")
	v.SetDefault("http.bind_addr", "0.0.0.0:8080")
	v.SetDefault("http.admin_username", "admin")
	v.SetDefault("http.admin_password", "")
	v.SetDefault("http.read_timeout", "30s")
	v.SetDefault("http.write_timeout", "60s")
	v.SetDefault("http.idle_timeout", "60s")
	v.SetDefault("http.max_upload_mb", 50)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("database.path", "")
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Storage.PrimaryRoot) == "" {
		return fmt.Errorf("storage.primary_root is required")
	}
	if c.Storage.PrimaryMaxMB < 0 {
		return fmt.Errorf("storage.primary_max_mb must not be negative")
	}
	if c.Storage.SecondaryMaxMB < 0 {
		return fmt.Errorf("storage.secondary_max_mb must not be negative")
	}
	if c.Storage.SecondaryRoot != "" && filepath.Clean(c.Storage.SecondaryRoot) == filepath.Clean(c.Storage.PrimaryRoot) {
		return fmt.Errorf("storage.secondary_root must differ from storage.primary_root")
	}

	switch c.Registry.Backend {
	case "json", "sqlite":
	default:
		return fmt.Errorf("invalid registry.backend: %s", c.Registry.Backend)
	}

	switch c.Probe.Backend {
	case "command", "statfs", "gopsutil":
	default:
		return fmt.Errorf("invalid probe.backend: %s", c.Probe.Backend)
	}

	switch c.Discovery.Backend {
	case "command", "gopsutil":
	default:
		return fmt.Errorf("invalid discovery.backend: %s", c.Discovery.Backend)
	}

	durations := map[string]string{
		"probe.command_timeout": c.Probe.CommandTimeout,
		"discovery.timeout":     c.Discovery.Timeout,
		"http.read_timeout":     c.HTTP.ReadTimeout,
		"http.write_timeout":    c.HTTP.WriteTimeout,
		"http.idle_timeout":     c.HTTP.IdleTimeout,
	}
	for key, value := range durations {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
	}

	if c.HTTP.MaxUploadMB <= 0 {
		return fmt.Errorf("http.max_upload_mb must be positive")
	}

	// Validate logging config
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// Valid levels
	default:
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
		// Valid formats
	default:
		return fmt.Errorf("invalid logging.format: %s", c.Logging.Format)
	}

	return nil
}

// GetRegistryPath returns the JSON registry location
func (c *Config) GetRegistryPath() string {
	if c.Registry.Path != "" {
		return c.Registry.Path
	}
	return filepath.Join(c.Storage.DataDir, "storage-targets.json")
}

// GetDatabasePath returns the SQLite registry location
func (c *Config) GetDatabasePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return filepath.Join(c.Storage.DataDir, "storage.db")
}

// GetCommandTimeout returns the probe command timeout as time.Duration
func (c *ProbeConfig) GetCommandTimeout() time.Duration {
	d, _ := time.ParseDuration(c.CommandTimeout)
	if d == 0 {
		return 5 * time.Second
	}
	return d
}

// GetTimeout returns the discovery timeout as time.Duration
func (c *DiscoveryConfig) GetTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	if d == 0 {
		return 5 * time.Second
	}
	return d
}

// GetReadTimeout returns the read timeout as time.Duration
func (c *HTTPConfig) GetReadTimeout() time.Duration {
	d, _ := time.ParseDuration(c.ReadTimeout)
	if d == 0 {
		return 30 * time.Second
	}
	return d
}

// GetWriteTimeout returns the write timeout as time.Duration
func (c *HTTPConfig) GetWriteTimeout() time.Duration {
	d, _ := time.ParseDuration(c.WriteTimeout)
	if d == 0 {
		return 60 * time.Second
	}
	return d
}

// GetIdleTimeout returns the idle timeout as time.Duration
func (c *HTTPConfig) GetIdleTimeout() time.Duration {
	d, _ := time.ParseDuration(c.IdleTimeout)
	if d == 0 {
		return 60 * time.Second
	}
	return d
}

// GetMaxUploadBytes returns the request body limit for uploads
func (c *HTTPConfig) GetMaxUploadBytes() int64 {
	if c.MaxUploadMB <= 0 {
		return 50 * 1024 * 1024
	}
	return int64(c.MaxUploadMB) * 1024 * 1024
}
