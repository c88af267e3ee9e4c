package config

import (
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Settings holds the process settings read from the environment.
// Destination inputs (NTFY_*) are carried raw and interpreted by Resolve.
type Settings struct {
	// ListenAddr is the HTTP listen address for the webhook server.
	ListenAddr string `envconfig:"RELAY_LISTEN_ADDR" default:":5000" validate:"required"`

	// LogLevel is one of: debug | info | warn | error.
	LogLevel string `envconfig:"RELAY_LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	// Concurrency bounds parallel sends per notification. 1 sends sequentially.
	Concurrency int `envconfig:"RELAY_DISPATCH_CONCURRENCY" default:"1" validate:"min=1,max=64"`

	// WatchConfig reloads the server document when it changes on disk.
	WatchConfig bool `envconfig:"RELAY_WATCH_CONFIG" default:"true"`

	ConfigPath string `envconfig:"NTFY_CONFIG" default:"/etc/alertrelay/servers.yaml"`
	Servers    string `envconfig:"NTFY_SERVERS"`
	LegacyURL  string `envconfig:"NTFY_URL"`
	Topic      string `envconfig:"NTFY_TOPIC"`
}

// LoadSettings reads Settings from the environment. A .env file in the
// working directory is loaded first when present; it never overrides
// variables that are already set.
func LoadSettings() (*Settings, error) {
	_ = godotenv.Load()

	s := &Settings{}
	if err := envconfig.Process("", s); err != nil {
		return nil, fmt.Errorf("config: settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks field constraints. It is called by LoadSettings and again
// after command-line overrides are applied.
func (s *Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("config: settings: %w", err)
	}
	return nil
}

// Inputs returns the destination inputs for Resolve.
func (s *Settings) Inputs() Inputs {
	return Inputs{
		Path:      s.ConfigPath,
		Servers:   s.Servers,
		LegacyURL: s.LegacyURL,
		Topic:     s.Topic,
	}
}

// SlogLevel maps LogLevel onto a slog.Level.
func (s *Settings) SlogLevel() slog.Level {
	switch s.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
