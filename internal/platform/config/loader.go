package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultPath = "config.yaml"

// Loader reads configuration from an optional YAML file layered over defaults,
// with a .env overlay for environment variables.
type Loader struct {
	path      string
	useDotEnv bool
}

// NewLoader creates a loader reading from the default config path.
func NewLoader() *Loader {
	return &Loader{
		path:      defaultPath,
		useDotEnv: true,
	}
}

// WithPath overrides the configuration file location.
func (l *Loader) WithPath(path string) *Loader {
	if path != "" {
		l.path = path
	}
	return l
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// Result captures the loaded configuration and its origin path.
type Result struct {
	Config *Config
	Path   string
}

// fileConfig is the YAML shape. Durations are kept as strings so the file can
// say "10s" instead of nanoseconds.
type fileConfig struct {
	API struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"api"`
	Channel struct {
		URL              string `yaml:"url"`
		ReconnectInitial string `yaml:"reconnect_initial"`
		ReconnectMax     string `yaml:"reconnect_max"`
	} `yaml:"channel"`
	Session struct {
		CookieName  string `yaml:"cookie_name"`
		CookieTTL   string `yaml:"cookie_ttl"`
		LogoutGrace string `yaml:"logout_grace"`
	} `yaml:"session"`
	Log struct {
		Level string `yaml:"log_level"`
	} `yaml:"log"`
}

func (f *fileConfig) apply(cfg *Config) error {
	setString := func(dst *string, raw string) {
		if raw != "" {
			*dst = raw
		}
	}
	setDuration := func(dst *time.Duration, raw, field string) error {
		if raw == "" {
			return nil
		}
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("parse %s: %w", field, err)
		}
		*dst = parsed
		return nil
	}

	setString(&cfg.API.BaseURL, f.API.BaseURL)
	setString(&cfg.Channel.URL, f.Channel.URL)
	setString(&cfg.Session.CookieName, f.Session.CookieName)
	setString(&cfg.Log.Level, f.Log.Level)

	if err := setDuration(&cfg.API.Timeout, f.API.Timeout, "api timeout"); err != nil {
		return err
	}
	if err := setDuration(&cfg.Channel.ReconnectInitial, f.Channel.ReconnectInitial, "channel reconnect_initial"); err != nil {
		return err
	}
	if err := setDuration(&cfg.Channel.ReconnectMax, f.Channel.ReconnectMax, "channel reconnect_max"); err != nil {
		return err
	}
	if err := setDuration(&cfg.Session.CookieTTL, f.Session.CookieTTL, "session cookie_ttl"); err != nil {
		return err
	}
	return setDuration(&cfg.Session.LogoutGrace, f.Session.LogoutGrace, "session logout_grace")
}

// Load builds the effective configuration. A missing file is not an error:
// defaults plus environment overrides apply.
func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		_ = godotenv.Load()
	}

	cfg := Defaults()
	path := ""

	data, err := os.ReadFile(l.path)
	switch {
	case err == nil:
		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", l.path, err)
		}
		if err := file.apply(cfg); err != nil {
			return nil, fmt.Errorf("config %s: %w", l.path, err)
		}
		path = l.path
	case os.IsNotExist(err):
		// defaults only
	default:
		return nil, fmt.Errorf("read config %s: %w", l.path, err)
	}

	applyEnv(cfg)

	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("api base_url must not be empty")
	}
	if cfg.Session.CookieName == "" {
		return nil, fmt.Errorf("session cookie_name must not be empty")
	}

	return &Result{Config: cfg, Path: path}, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("FINBOARD_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("FINBOARD_WS_URL"); v != "" {
		cfg.Channel.URL = v
	}
	if v := os.Getenv("FINBOARD_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}
