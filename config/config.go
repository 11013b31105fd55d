package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"pick-ledger-go/logging"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Database configuration (optional; the tools fall back to the local
	// JSON file cache when no Mongo host is configured)
	Database DatabaseConfig `json:"database"`

	// Logging configuration
	Logging LoggingConfig `json:"logging"`

	// Grading conventions
	Grading GradingConfig `json:"grading"`

	// Score provider fetch configuration
	Fetch FetchConfig `json:"fetch"`

	// Input/output paths
	Paths PathsConfig `json:"paths"`
}

// DatabaseConfig holds MongoDB configuration
type DatabaseConfig struct {
	Host     string        `json:"host"`
	Port     string        `json:"port"`
	Username string        `json:"username"`
	Password string        `json:"password"`
	Database string        `json:"database"`
	Timeout  time.Duration `json:"timeout"`
}

// Enabled reports whether a Mongo host was configured at all
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level       string `json:"level"`
	Prefix      string `json:"prefix"`
	EnableColor bool   `json:"enable_color"`
}

// GradingConfig holds the grading conventions the source data is
// inconsistent about, so they stay configurable rather than hardcoded.
type GradingConfig struct {
	// BaseStake is the risk assumed when neither risk nor to-win appears in
	// the source text.
	BaseStake float64 `json:"base_stake"`
	// DefaultOdds is used when the text carries no plausible price
	// (american odds magnitude under 100 is rejected as implausible).
	DefaultOdds int `json:"default_odds"`
}

// FetchConfig holds score provider HTTP settings
type FetchConfig struct {
	Timeout     time.Duration `json:"timeout"`
	Retries     int           `json:"retries"`
	Concurrency int           `json:"concurrency"`
}

// PathsConfig holds input and output file locations
type PathsConfig struct {
	TeamsDir      string `json:"teams_dir"`
	CacheDir      string `json:"cache_dir"`
	OverridesFile string `json:"overrides_file"`
	OutputCSV     string `json:"output_csv"`
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Don't treat missing .env as an error
		logging.Debugf("Could not load .env file: %v", err)
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", ""),
			Port:     getEnv("DB_PORT", "27017"),
			Username: getEnv("DB_USERNAME", ""),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "pick_ledger"),
			Timeout:  getEnvDuration("DB_TIMEOUT", 10*time.Second),
		},
		Logging: LoggingConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Prefix:      getEnv("LOG_PREFIX", ""),
			EnableColor: getEnvBool("LOG_COLOR", true),
		},
		Grading: GradingConfig{
			BaseStake:   getEnvFloat("GRADING_BASE_STAKE", 50),
			DefaultOdds: getEnvInt("GRADING_DEFAULT_ODDS", -110),
		},
		Fetch: FetchConfig{
			Timeout:     getEnvDuration("FETCH_TIMEOUT", 10*time.Second),
			Retries:     getEnvInt("FETCH_RETRIES", 3),
			Concurrency: getEnvInt("FETCH_CONCURRENCY", 4),
		},
		Paths: PathsConfig{
			TeamsDir:      getEnv("TEAMS_DIR", "data/teams"),
			CacheDir:      getEnv("CACHE_DIR", "data/cache"),
			OverridesFile: getEnv("OVERRIDES_FILE", ""),
			OutputCSV:     getEnv("OUTPUT_CSV", "ledger.csv"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks configuration for invalid values
func (c *Config) Validate() error {
	if c.Grading.BaseStake <= 0 {
		return fmt.Errorf("GRADING_BASE_STAKE must be positive, got %v", c.Grading.BaseStake)
	}
	if c.Grading.DefaultOdds > -100 && c.Grading.DefaultOdds < 100 {
		return fmt.Errorf("GRADING_DEFAULT_ODDS magnitude must be at least 100, got %d", c.Grading.DefaultOdds)
	}
	if c.Fetch.Concurrency < 1 {
		return fmt.Errorf("FETCH_CONCURRENCY must be at least 1, got %d", c.Fetch.Concurrency)
	}
	if c.Fetch.Retries < 0 {
		return fmt.Errorf("FETCH_RETRIES must not be negative, got %d", c.Fetch.Retries)
	}
	if c.Paths.TeamsDir == "" {
		return fmt.Errorf("TEAMS_DIR must not be empty")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		logging.Warnf("Invalid integer for %s: %q, using default %d", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
		logging.Warnf("Invalid number for %s: %q, using default %v", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
		logging.Warnf("Invalid boolean for %s: %q, using default %t", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
		logging.Warnf("Invalid duration for %s: %q, using default %v", key, value, defaultValue)
	}
	return defaultValue
}
