// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"

	"tradewatch/internal/connection"
	"tradewatch/internal/feed"
)

// Dashboard configures cmd/dashboard.
type Dashboard struct {
	MaxTrades       int    `env:"TRADEWATCH_MAX_TRADES" envDefault:"10"`
	DefaultExchange string `env:"TRADEWATCH_DEFAULT_EXCHANGE" envDefault:"unknown"`
	FeedURL         string `env:"TRADEWATCH_FEED_URL"`
	Protocol        string `env:"TRADEWATCH_PROTOCOL" envDefault:"canonical"`
	HTTPAddr        string `env:"TRADEWATCH_HTTP_ADDR" envDefault:":8090"`
	LogLevel        string `env:"TRADEWATCH_LOG_LEVEL" envDefault:"info"`
	LogDevelopment  bool   `env:"TRADEWATCH_LOG_DEVELOPMENT"`

	RenderInterval time.Duration `env:"TRADEWATCH_RENDER_INTERVAL" envDefault:"1s"`

	HandshakeTimeout time.Duration `env:"TRADEWATCH_WS_HANDSHAKE_TIMEOUT" envDefault:"10s"`
	PingInterval     time.Duration `env:"TRADEWATCH_WS_PING_INTERVAL" envDefault:"30s"`
	ReadTimeout      time.Duration `env:"TRADEWATCH_WS_READ_TIMEOUT" envDefault:"60s"`
	WriteTimeout     time.Duration `env:"TRADEWATCH_WS_WRITE_TIMEOUT" envDefault:"10s"`
}

// Feedgen configures cmd/feedgen.
type Feedgen struct {
	Addr           string        `env:"FEEDGEN_ADDR" envDefault:":8080"`
	Interval       time.Duration `env:"FEEDGEN_INTERVAL" envDefault:"1s"`
	LogLevel       string        `env:"FEEDGEN_LOG_LEVEL" envDefault:"info"`
	LogDevelopment bool          `env:"FEEDGEN_LOG_DEVELOPMENT"`
}

var errInvalid = errors.New("invalid config")

// LoadDashboard reads the dashboard configuration from the environment.
func LoadDashboard() (Dashboard, error) {
	var cfg Dashboard
	if err := env.Parse(&cfg); err != nil {
		return Dashboard{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// LoadFeedgen reads the generator configuration from the environment.
func LoadFeedgen() (Feedgen, error) {
	var cfg Feedgen
	if err := env.Parse(&cfg); err != nil {
		return Feedgen{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks the dashboard configuration.
func (c Dashboard) Validate() error {
	if c.MaxTrades <= 0 {
		return fmt.Errorf("%w: max trades must be positive, got %d", errInvalid, c.MaxTrades)
	}
	if strings.TrimSpace(c.DefaultExchange) == "" {
		return fmt.Errorf("%w: default exchange is empty", errInvalid)
	}
	switch c.Protocol {
	case feed.ProtocolCanonical, feed.ProtocolBinance:
	default:
		return fmt.Errorf("%w: unknown protocol %q", errInvalid, c.Protocol)
	}
	if c.RenderInterval < 0 {
		return fmt.Errorf("%w: negative render interval", errInvalid)
	}
	return nil
}

// Transport returns the WebSocket settings for the connection manager.
func (c Dashboard) Transport() connection.Config {
	return connection.Config{
		HandshakeTimeout: c.HandshakeTimeout,
		PingInterval:     c.PingInterval,
		ReadTimeout:      c.ReadTimeout,
		WriteTimeout:     c.WriteTimeout,
	}
}

// Validate checks the generator configuration.
func (c Feedgen) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive, got %s", errInvalid, c.Interval)
	}
	if c.Addr == "" {
		return fmt.Errorf("%w: listen address is empty", errInvalid)
	}
	return nil
}

// IsInvalid reports whether err came from Validate.
func IsInvalid(err error) bool {
	return errors.Is(err, errInvalid)
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// Variables that are already set are left untouched. A missing file is not an error.
func LoadEnvFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)

		// Don't override existing env vars
		if _, ok := os.LookupEnv(key); !ok {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("set %s: %w", key, err)
			}
		}
	}
	return nil
}
