package config

import (
	"time"
)

type Config struct {
	API     APIConfig     `yaml:"api"`
	Channel ChannelConfig `yaml:"channel"`
	Session SessionConfig `yaml:"session"`
	Log     LogConfig     `yaml:"log"`
}

// APIConfig describes the REST boundary of the backing service.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// ChannelConfig describes the realtime notification transport.
type ChannelConfig struct {
	URL              string        `yaml:"url"`
	ReconnectInitial time.Duration `yaml:"reconnect_initial"`
	ReconnectMax     time.Duration `yaml:"reconnect_max"`
}

// SessionConfig controls the credential cookie and the proactive logout timing.
type SessionConfig struct {
	CookieName  string        `yaml:"cookie_name"`
	CookieTTL   time.Duration `yaml:"cookie_ttl"`
	LogoutGrace time.Duration `yaml:"logout_grace"`
}

type LogConfig struct {
	Level string `yaml:"log_level"`
}
