package config

import "time"

// Defaults returns the configuration used when no file or overrides are present.
// The values mirror the service the dashboard was built against: a local
// backend on port 3000, a two hour credential cookie and a ten second logout
// lead time.
func Defaults() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:3000",
			Timeout: 30 * time.Second,
		},
		Channel: ChannelConfig{
			URL:              "ws://localhost:3000/ws",
			ReconnectInitial: time.Second,
			ReconnectMax:     30 * time.Second,
		},
		Session: SessionConfig{
			CookieName:  "token",
			CookieTTL:   2 * time.Hour,
			LogoutGrace: 10 * time.Second,
		},
		Log: LogConfig{
			Level: "INFO",
		},
	}
}
