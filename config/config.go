package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Search    SearchConfig    `mapstructure:"search"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Janitor   JanitorConfig   `mapstructure:"janitor"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CatalogConfig selects and configures the product catalog source
type CatalogConfig struct {
	Source            string        `mapstructure:"source"` // "rest" or "file"
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	Table             string        `mapstructure:"table"`
	FilePath          string        `mapstructure:"file_path"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	MaxRetries        int           `mapstructure:"max_retries"`
}

// CacheConfig holds result cache configuration
type CacheConfig struct {
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
}

// RateLimitConfig holds per-client rate limiting configuration
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// SearchConfig holds ranking defaults
type SearchConfig struct {
	MinScore          float64 `mapstructure:"min_score"`
	Limit             int     `mapstructure:"limit"`
	ListLimit         int     `mapstructure:"list_limit"`
	MaxQueryLength    int     `mapstructure:"max_query_length"`
	ParallelThreshold int     `mapstructure:"parallel_threshold"`
	Workers           int     `mapstructure:"workers"`
}

// AnalyticsConfig selects the interaction sink
type AnalyticsConfig struct {
	Driver  string        `mapstructure:"driver"` // "sqlite", "log" or "none"
	DSN     string        `mapstructure:"dsn"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// JanitorConfig holds the sweep schedule
type JanitorConfig struct {
	Schedule string `mapstructure:"schedule"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads configuration from environment variables and config files.
// An empty configFile searches the default locations.
func Load(configFile string) (*Config, error) {
	return LoadWith(viper.New(), configFile)
}

// LoadWith loads configuration into an existing viper instance, so CLI flags bound to it take precedence
func LoadWith(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/saintathena/")
	}

	// Environment variable settings: SAINTATHENA_CACHE_TTL -> cache.ttl
	v.SetEnvPrefix("SAINTATHENA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Catalog defaults
	v.SetDefault("catalog.source", "rest")
	v.SetDefault("catalog.base_url", "")
	v.SetDefault("catalog.api_key", "")
	v.SetDefault("catalog.table", "products")
	v.SetDefault("catalog.file_path", "")
	v.SetDefault("catalog.timeout", "10s")
	v.SetDefault("catalog.requests_per_second", 20)
	v.SetDefault("catalog.burst", 10)
	v.SetDefault("catalog.max_retries", 3)

	// Cache defaults
	v.SetDefault("cache.ttl", "60s")
	v.SetDefault("cache.max_entries", 10000)

	// Rate limit defaults: 60 requests per client per minute
	v.SetDefault("ratelimit.requests", 60)
	v.SetDefault("ratelimit.window", "60s")

	// Search defaults
	v.SetDefault("search.min_score", 40)
	v.SetDefault("search.limit", 10)
	v.SetDefault("search.list_limit", 3)
	v.SetDefault("search.max_query_length", 2000)
	v.SetDefault("search.parallel_threshold", 512)
	v.SetDefault("search.workers", 0)

	// Analytics defaults
	v.SetDefault("analytics.driver", "log")
	v.SetDefault("analytics.dsn", "saintathena.db")
	v.SetDefault("analytics.timeout", "5s")

	v.SetDefault("janitor.schedule", "@every 1m")
	v.SetDefault("log.level", "info")
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Catalog.Source {
	case "rest":
		if config.Catalog.BaseURL == "" {
			return fmt.Errorf("catalog base URL is required (set SAINTATHENA_CATALOG_BASE_URL)")
		}
	case "file":
		if config.Catalog.FilePath == "" {
			return fmt.Errorf("catalog file path is required (set SAINTATHENA_CATALOG_FILE_PATH)")
		}
	default:
		return fmt.Errorf("catalog source must be 'rest' or 'file', got: %s", config.Catalog.Source)
	}

	if config.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got: %v", config.Cache.TTL)
	}
	if config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0 {
		return fmt.Errorf("rate limit requests and window must be positive")
	}
	if config.Search.MinScore < 0 || config.Search.MinScore > 100 {
		return fmt.Errorf("search min score must be between 0 and 100, got: %v", config.Search.MinScore)
	}
	if config.Search.Limit < 1 || config.Search.Limit > 100 {
		return fmt.Errorf("search limit must be between 1 and 100, got: %d", config.Search.Limit)
	}

	switch config.Analytics.Driver {
	case "sqlite", "log", "none":
	default:
		return fmt.Errorf("analytics driver must be 'sqlite', 'log' or 'none', got: %s", config.Analytics.Driver)
	}

	return nil
}
