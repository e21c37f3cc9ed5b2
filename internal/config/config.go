package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// StoreDriver identifies the persistent key-value backend
type StoreDriver string

const (
	StoreDriverBolt   StoreDriver = "bolt"
	StoreDriverBadger StoreDriver = "badger"
	StoreDriverRedis  StoreDriver = "redis"
	StoreDriverMemory StoreDriver = "memory"
)

// Config holds all application configuration
type Config struct {
	API          APIConfig          `mapstructure:"api"`
	Cache        CacheConfig        `mapstructure:"cache"`
	Store        StoreConfig        `mapstructure:"store"`
	Connectivity ConnectivityConfig `mapstructure:"connectivity"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
	UI           UIConfig           `mapstructure:"ui"`
}

// APIConfig holds remote catalog configuration
type APIConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	APIKey       string        `mapstructure:"api_key"`
	ImageBaseURL string        `mapstructure:"image_base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RateLimit    float64       `mapstructure:"rate_limit"` // requests per second
	Burst        int           `mapstructure:"burst"`
}

// CacheConfig holds cache-aside settings
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"` // freshness window; stale entries stay usable offline
}

// StoreConfig holds persistent store configuration
type StoreConfig struct {
	Driver    StoreDriver `mapstructure:"driver"`
	Path      string      `mapstructure:"path"`       // bolt/badger directory
	RedisURL  string      `mapstructure:"redis_url"`  // redis only
	KeyPrefix string      `mapstructure:"key_prefix"` // redis only
}

// ConnectivityConfig holds reachability probe configuration
type ConnectivityConfig struct {
	ProbeAddr     string        `mapstructure:"probe_addr"` // host:port, empty disables probing
	ProbeInterval time.Duration `mapstructure:"probe_interval"`
	ProbeTimeout  time.Duration `mapstructure:"probe_timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"` // empty logs to stderr
	Level string `mapstructure:"level"`
}

// MetricsConfig holds the prometheus endpoint configuration
type MetricsConfig struct {
	Addr string `mapstructure:"addr"` // empty disables the endpoint
}

// UIConfig holds UI configuration
type UIConfig struct {
	DefaultTab string `mapstructure:"default_tab"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:      "https://api.themoviedb.org/3",
			ImageBaseURL: "https://image.tmdb.org/t/p",
			Timeout:      10 * time.Second,
			RateLimit:    20,
			Burst:        5,
		},
		Cache: CacheConfig{
			TTL: 5 * time.Minute,
		},
		Store: StoreConfig{
			Driver:    StoreDriverBolt,
			Path:      defaultCachePath(),
			KeyPrefix: "marquee:",
		},
		Connectivity: ConnectivityConfig{
			ProbeAddr:     "api.themoviedb.org:443",
			ProbeInterval: 15 * time.Second,
			ProbeTimeout:  3 * time.Second,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
		UI: UIConfig{
			DefaultTab: "upcoming",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "marquee", "marquee.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "marquee", "marquee.log")
	}
}

// defaultConfigPath returns the default config file path for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "marquee")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "marquee")
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "marquee", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "marquee", "cache")
	}
}

// LoadConfig loads configuration from .env, the config file and environment.
// Extra search paths are consulted before the defaults.
func LoadConfig(paths ...string) (*Config, error) {
	// A missing .env is the normal case
	_ = godotenv.Load()

	v := viper.New()
	cfg := DefaultConfig()
	setDefaults(v, cfg)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.AddConfigPath(defaultConfigPath())
	v.AddConfigPath(".")

	// Environment variable overrides: MARQUEE_API_API_KEY, MARQUEE_STORE_DRIVER, ...
	v.SetEnvPrefix("MARQUEE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it during Unmarshal
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("api.api_key", cfg.API.APIKey)
	v.SetDefault("api.image_base_url", cfg.API.ImageBaseURL)
	v.SetDefault("api.timeout", cfg.API.Timeout)
	v.SetDefault("api.rate_limit", cfg.API.RateLimit)
	v.SetDefault("api.burst", cfg.API.Burst)

	v.SetDefault("cache.ttl", cfg.Cache.TTL)

	v.SetDefault("store.driver", string(cfg.Store.Driver))
	v.SetDefault("store.path", cfg.Store.Path)
	v.SetDefault("store.redis_url", cfg.Store.RedisURL)
	v.SetDefault("store.key_prefix", cfg.Store.KeyPrefix)

	v.SetDefault("connectivity.probe_addr", cfg.Connectivity.ProbeAddr)
	v.SetDefault("connectivity.probe_interval", cfg.Connectivity.ProbeInterval)
	v.SetDefault("connectivity.probe_timeout", cfg.Connectivity.ProbeTimeout)

	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)

	v.SetDefault("metrics.addr", cfg.Metrics.Addr)

	v.SetDefault("ui.default_tab", cfg.UI.DefaultTab)
}

// Validate checks the settings the core cannot run without
func (c *Config) Validate() error {
	if c.API.APIKey == "" {
		return errors.New("api.api_key is required (set MARQUEE_API_API_KEY)")
	}
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL)
	}
	switch c.Store.Driver {
	case StoreDriverBolt, StoreDriverBadger, StoreDriverMemory:
	case StoreDriverRedis:
		if c.Store.RedisURL == "" {
			return errors.New("store.redis_url is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown store driver: %s", c.Store.Driver)
	}
	return nil
}

// IsConfigured returns true if the catalog API key is set
func (c *Config) IsConfigured() bool {
	return c.API.APIKey != ""
}

// ClearCache removes all cached data from the default cache directory
func ClearCache(path string) error {
	if path == "" {
		path = defaultCachePath()
	}
	if err := os.RemoveAll(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}
