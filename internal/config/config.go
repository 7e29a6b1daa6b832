package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime configuration for the Sangyan API, parsed from
// environment variables.
type Config struct {
	Server    ServerConfig    `envPrefix:"SERVER_"`
	Mongo     MongoConfig     `envPrefix:"MONGO_"`
	Token     TokenConfig     `envPrefix:"TOKEN_"`
	Google    GoogleConfig    `envPrefix:"GOOGLE_"`
	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_"`
}

type ServerConfig struct {
	Host            string        `env:"HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type MongoConfig struct {
	// URI is optional; when empty the server runs on the in-memory store.
	URI      string `env:"URI"`
	Database string `env:"DATABASE" envDefault:"sangyan"`
}

type TokenConfig struct {
	Issuer        string        `env:"ISSUER" envDefault:"sangyan-api"`
	AccessSecret  string        `env:"ACCESS_SECRET"`
	RefreshSecret string        `env:"REFRESH_SECRET"`
	AccessTTL     time.Duration `env:"ACCESS_TTL" envDefault:"15m"`
	RefreshTTL    time.Duration `env:"REFRESH_TTL" envDefault:"168h"`
}

type GoogleConfig struct {
	// ClientID is optional; when empty google sign-in is disabled.
	ClientID string `env:"CLIENT_ID"`
}

type RateLimitConfig struct {
	PerMinute int `env:"PER_MINUTE" envDefault:"60"`
	Burst     int `env:"BURST" envDefault:"10"`
}

// Load parses the configuration from environment variables.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Token.AccessSecret == "" {
		return fmt.Errorf("missing TOKEN_ACCESS_SECRET environment variable")
	}
	if c.Token.RefreshSecret == "" {
		return fmt.Errorf("missing TOKEN_REFRESH_SECRET environment variable")
	}

	return nil
}

// Addr returns the host:port address the server listens on.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
