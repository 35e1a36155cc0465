// Package config loads server settings from the environment.
//
// A .env file in the working directory is loaded first (development only;
// a missing file is fine), then variables are parsed into Config.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every tunable the server reads at startup.
type Config struct {
	Port          string        `env:"PORT" envDefault:"5175"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	ClientOrigin  string        `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	TreasuresFile string        `env:"TREASURES_FILE"`
	DatabasePath  string        `env:"DATABASE_PATH"` // empty disables the run log
	TokenSecret   string        `env:"TOKEN_SECRET" envDefault:"dev_secret_change_me"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"5m"` // idle session eviction period
	CookieName    string        `env:"COOKIE_NAME" envDefault:"tidal_session"`
	Production    bool          `env:"PRODUCTION"`
}

// Load reads .env (if present) and parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the process environment only.
func Parse() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	if c.TokenTTL <= 0 {
		return errors.New("config: TOKEN_TTL must be positive")
	}
	if c.SweepInterval <= 0 {
		return errors.New("config: SWEEP_INTERVAL must be positive")
	}
	if c.Production && c.TokenSecret == "dev_secret_change_me" {
		return errors.New("config: TOKEN_SECRET must be set in production")
	}
	return nil
}

// Addr is the listen address derived from Port.
func (c Config) Addr() string { return ":" + c.Port }
