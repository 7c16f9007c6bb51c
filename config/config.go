package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/pricelens/skumatch/internal/infrastructure/ingest"
	"github.com/pricelens/skumatch/internal/infrastructure/logging"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Matching   MatchingConfig
	Normalizer NormalizerConfig
	Ingest     IngestConfig
	Storage    StorageConfig
	Cache      CacheConfig
	RateLimit  RateLimitConfig
	Log        logging.Config
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// MatchingConfig holds the confidence model and matcher settings
type MatchingConfig struct {
	DiceWeight          float64 `mapstructure:"dice_weight"`
	UnitPenalty         float64 `mapstructure:"unit_penalty"`
	ReshapeDecay        float64 `mapstructure:"reshape_decay"`
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
	Workers             int     `mapstructure:"workers"`
	Tokenizer           string  `mapstructure:"tokenizer"` // "word" or "char"
	Debug               bool    `mapstructure:"debug"`
}

// NormalizerConfig holds normalization settings
type NormalizerConfig struct {
	Locale             string   `mapstructure:"locale"`
	ExtraStopwords     []string `mapstructure:"extra_stopwords"`
	RulesFile          string   `mapstructure:"rules_file"`
	CanonicalizeColors bool     `mapstructure:"canonicalize_colors"`
	CacheSize          int      `mapstructure:"cache_size"`
}

// IngestConfig holds file reader settings
type IngestConfig struct {
	// Countries restricts catalog rows; empty accepts every country.
	Countries []string `mapstructure:"countries"`
}

// StorageConfig holds the match store settings
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // "sqlite" or "postgres"
	DSN    string `mapstructure:"dsn"`
}

// CacheConfig holds catalog snapshot cache configuration
type CacheConfig struct {
	Driver        string        `mapstructure:"driver"` // "memory" or "redis"
	TTL           time.Duration `mapstructure:"ttl"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	KeyPrefix     string        `mapstructure:"key_prefix"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/skumatch/")

	// Environment variable settings
	v.SetEnvPrefix("SKUMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile exports variables from ./.env without overriding ones already
// set in the environment. A missing file is not an error.
func loadEnvFile() error {
	err := gotenv.Load(".env")
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Matching defaults
	v.SetDefault("matching.dice_weight", 0.20)
	v.SetDefault("matching.unit_penalty", 0.17)
	v.SetDefault("matching.reshape_decay", 1.01)
	v.SetDefault("matching.confidence_threshold", 0.4)
	v.SetDefault("matching.workers", 0) // GOMAXPROCS
	v.SetDefault("matching.tokenizer", "word")
	v.SetDefault("matching.debug", false)

	// Normalizer defaults
	v.SetDefault("normalizer.locale", "es")
	v.SetDefault("normalizer.extra_stopwords", []string{"sabor"})
	v.SetDefault("normalizer.rules_file", "")
	v.SetDefault("normalizer.canonicalize_colors", false)
	v.SetDefault("normalizer.cache_size", 50000)

	// Ingest defaults
	v.SetDefault("ingest.countries", ingest.DefaultCountries)

	// Storage defaults
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.dsn", "skumatch.db")

	// Cache defaults
	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.key_prefix", "skumatch:")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// validate validates the configuration
func validate(config *Config) error {
	m := config.Matching
	if m.DiceWeight < 0 || m.DiceWeight > 1 {
		return fmt.Errorf("matching dice_weight must be within [0, 1], got: %v", m.DiceWeight)
	}
	if m.UnitPenalty < 0 {
		return fmt.Errorf("matching unit_penalty must not be negative, got: %v", m.UnitPenalty)
	}
	if m.ReshapeDecay <= 0 {
		return fmt.Errorf("matching reshape_decay must be positive, got: %v", m.ReshapeDecay)
	}
	if m.ConfidenceThreshold <= 0 || m.ConfidenceThreshold > 1 {
		return fmt.Errorf("matching confidence_threshold must be within (0, 1], got: %v", m.ConfidenceThreshold)
	}
	if m.Tokenizer != "word" && m.Tokenizer != "char" {
		return fmt.Errorf("matching tokenizer must be 'word' or 'char', got: %s", m.Tokenizer)
	}
	if m.Workers < 0 {
		return fmt.Errorf("matching workers must not be negative, got: %d", m.Workers)
	}

	for _, c := range config.Ingest.Countries {
		if len(c) != 2 {
			return fmt.Errorf("ingest countries must be two-letter codes, got: %q", c)
		}
	}

	if config.Storage.Driver != "sqlite" && config.Storage.Driver != "postgres" {
		return fmt.Errorf("storage driver must be 'sqlite' or 'postgres', got: %s", config.Storage.Driver)
	}
	if config.Storage.DSN == "" {
		return fmt.Errorf("storage dsn is required (set SKUMATCH_STORAGE_DSN)")
	}

	if config.Cache.Driver != "memory" && config.Cache.Driver != "redis" {
		return fmt.Errorf("cache driver must be 'memory' or 'redis', got: %s", config.Cache.Driver)
	}
	if config.Cache.Driver == "redis" && config.Cache.RedisAddr == "" {
		return fmt.Errorf("redis address is required when cache driver is 'redis'")
	}

	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("ratelimit per_ip must not be negative, got: %d", config.RateLimit.PerIP)
	}

	if f := config.Log.Format; f != "json" && f != "console" {
		return fmt.Errorf("log format must be 'json' or 'console', got: %s", f)
	}

	return nil
}
