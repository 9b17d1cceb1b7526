// Package config loads myreports settings from YAML files and MYREPORTS_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Backends a Config may select.
const (
	BackendLocal = "local"
	BackendHTTP  = "http"
)

// Config holds all application configuration.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Search   SearchConfig   `mapstructure:"search"`
	Data     DataConfig     `mapstructure:"data"`
	Prefetch PrefetchConfig `mapstructure:"prefetch"`
	UI       UIConfig       `mapstructure:"ui"`
	Log      LogConfig      `mapstructure:"log"`
}

type APIConfig struct {
	Backend    string        `mapstructure:"backend"`
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RateLimit  time.Duration `mapstructure:"rate_limit"`
	MaxRetries int           `mapstructure:"max_retries"`
	// CSRFToken is normally supplied through MYREPORTS_API_CSRF_TOKEN.
	CSRFToken string `mapstructure:"csrf_token"`
}

type SearchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
	MinChars int           `mapstructure:"min_chars"`
}

type DataConfig struct {
	Dir     string `mapstructure:"dir"`
	Fixture string `mapstructure:"fixture"`
}

type PrefetchConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	Concurrency int  `mapstructure:"concurrency"`
}

type UIConfig struct {
	Mouse         bool   `mapstructure:"mouse"`
	AltScreen     bool   `mapstructure:"alt_screen"`
	DefaultReport string `mapstructure:"default_report"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Dir    string `mapstructure:"dir"`
	Events bool   `mapstructure:"events"`
}

// DefaultDir is ~/.myreports, falling back to ./.myreports.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".myreports"
	}
	return filepath.Join(home, ".myreports")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.backend", BackendLocal)
	v.SetDefault("api.base_url", "")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.rate_limit", 250*time.Millisecond)
	v.SetDefault("api.max_retries", 3)
	v.SetDefault("api.csrf_token", "")
	v.SetDefault("search.debounce", 300*time.Millisecond)
	v.SetDefault("search.min_chars", 1)
	v.SetDefault("data.dir", DefaultDir())
	v.SetDefault("data.fixture", "")
	v.SetDefault("prefetch.enabled", true)
	v.SetDefault("prefetch.concurrency", 4)
	v.SetDefault("ui.mouse", false)
	v.SetDefault("ui.alt_screen", true)
	v.SetDefault("ui.default_report", "3")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.dir", filepath.Join(DefaultDir(), "logs"))
	v.SetDefault("log.events", true)
}

// Load reads configuration. An explicit file must exist; otherwise
// config.yaml is looked up in the user config dir, ".", and "./config", and
// a missing file means defaults. Environment variables override files.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("MYREPORTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "myreports"))
		}
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that have no safe fallback.
func (c *Config) Validate() error {
	switch c.API.Backend {
	case BackendLocal:
	case BackendHTTP:
		if c.API.BaseURL == "" {
			return errors.New("config: api.base_url is required for the http backend")
		}
	default:
		return fmt.Errorf("config: unknown api.backend %q", c.API.Backend)
	}
	if c.Prefetch.Concurrency < 1 {
		return fmt.Errorf("config: prefetch.concurrency must be positive, got %d", c.Prefetch.Concurrency)
	}
	if c.Search.Debounce < 0 {
		return fmt.Errorf("config: search.debounce must not be negative")
	}
	return nil
}

// DBPath is the offline backend database file.
func (c *Config) DBPath() string {
	return filepath.Join(c.Data.Dir, "myreports.db")
}

// EventLogPath is the JSONL event log file.
func (c *Config) EventLogPath() string {
	return filepath.Join(c.Log.Dir, "events.jsonl")
}
