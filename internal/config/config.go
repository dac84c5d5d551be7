// ABOUTME: Configuration loading and parsing for the parley server
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete parley server configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
	CORS      CORSConfig      `yaml:"cors"`
	Retention RetentionConfig `yaml:"retention"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Presets   PresetsConfig   `yaml:"presets"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// ProvidersConfig holds API credentials for the model providers
type ProvidersConfig struct {
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`
}

// CORSConfig holds cross-origin configuration for browser clients
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// RetentionConfig controls eviction of finished conversations
type RetentionConfig struct {
	SweepInterval time.Duration `yaml:"-"`
	MaxAge        time.Duration `yaml:"-"`

	// Raw string values for YAML unmarshaling
	SweepIntervalRaw string `yaml:"sweep_interval"`
	MaxAgeRaw        string `yaml:"max_age"`
}

// RateLimitConfig holds per-client request budgets, in requests per minute
type RateLimitConfig struct {
	Default         int `yaml:"default"`
	AnalyticsList   int `yaml:"analytics_list"`
	AnalyticsDetail int `yaml:"analytics_detail"`
	Export          int `yaml:"export"`
}

// PresetsConfig points at the optional preset library file
type PresetsConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default retention and rate-limit values used when the config omits them.
const (
	DefaultHTTPAddr        = ":8000"
	DefaultSweepInterval   = time.Hour
	DefaultMaxAge          = 24 * time.Hour
	DefaultRateLimit       = 100
	DefaultAnalyticsList   = 30
	DefaultAnalyticsDetail = 10
	DefaultExportLimit     = 5
)

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Default returns a configuration usable without any config file. Provider
// keys come from the conventional environment variables.
func Default() *Config {
	cfg := &Config{
		Providers: ProvidersConfig{
			AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
			OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		},
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = DefaultHTTPAddr
	}
	if c.Retention.SweepInterval == 0 {
		c.Retention.SweepInterval = DefaultSweepInterval
	}
	if c.Retention.MaxAge == 0 {
		c.Retention.MaxAge = DefaultMaxAge
	}
	if c.RateLimit.Default == 0 {
		c.RateLimit.Default = DefaultRateLimit
	}
	if c.RateLimit.AnalyticsList == 0 {
		c.RateLimit.AnalyticsList = DefaultAnalyticsList
	}
	if c.RateLimit.AnalyticsDetail == 0 {
		c.RateLimit.AnalyticsDetail = DefaultAnalyticsDetail
	}
	if c.RateLimit.Export == 0 {
		c.RateLimit.Export = DefaultExportLimit
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}

	if c.Retention.SweepInterval < 0 || c.Retention.MaxAge < 0 {
		return fmt.Errorf("retention durations must not be negative")
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Retention.SweepIntervalRaw != "" {
		cfg.Retention.SweepInterval, err = time.ParseDuration(cfg.Retention.SweepIntervalRaw)
		if err != nil {
			return fmt.Errorf("parsing sweep_interval %q: %w", cfg.Retention.SweepIntervalRaw, err)
		}
	}

	if cfg.Retention.MaxAgeRaw != "" {
		cfg.Retention.MaxAge, err = time.ParseDuration(cfg.Retention.MaxAgeRaw)
		if err != nil {
			return fmt.Errorf("parsing max_age %q: %w", cfg.Retention.MaxAgeRaw, err)
		}
	}

	return nil
}
