// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything the serve command needs.
type Config struct {
	Port         string
	DatabasePath string
	CookieSecure bool
	BcryptCost   int
	SessionTTL   time.Duration
	RememberTTL  time.Duration
	ReapInterval time.Duration
	CORSOrigin   string
	LogLevel     slog.Level
	LoginRate    float64
	LoginBurst   float64
}

// Addr returns the listen address for the configured port.
func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads the configuration through getenv, applying defaults for
// unset variables, and validates the result.
func LoadFrom(getenv func(string) string) (Config, error) {
	env := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Port:         env("PORT", "8080"),
		DatabasePath: env("DATABASE_PATH", "gameforge.db"),
		// Default to secure cookies; disable only for local development.
		CookieSecure: getenv("COOKIE_SECURE") != "false",
		CORSOrigin:   env("CORS_ORIGIN", "http://localhost:3000"),
	}

	var errs []error
	var err error

	if cfg.BcryptCost, err = strconv.Atoi(env("BCRYPT_COST", "10")); err != nil {
		errs = append(errs, fmt.Errorf("invalid BCRYPT_COST: %w", err))
	} else if cfg.BcryptCost < 4 || cfg.BcryptCost > 14 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", cfg.BcryptCost))
	}

	if cfg.SessionTTL, err = time.ParseDuration(env("SESSION_TTL", "24h")); err != nil {
		errs = append(errs, fmt.Errorf("invalid SESSION_TTL: %w", err))
	}
	if cfg.RememberTTL, err = time.ParseDuration(env("REMEMBER_TTL", "720h")); err != nil {
		errs = append(errs, fmt.Errorf("invalid REMEMBER_TTL: %w", err))
	}
	if cfg.ReapInterval, err = time.ParseDuration(env("REAP_INTERVAL", "24h")); err != nil {
		errs = append(errs, fmt.Errorf("invalid REAP_INTERVAL: %w", err))
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(env("LOG_LEVEL", "info"))); err != nil {
		errs = append(errs, fmt.Errorf("invalid LOG_LEVEL: %w", err))
	}

	if cfg.LoginRate, err = strconv.ParseFloat(env("LOGIN_RATE", "0.2"), 64); err != nil {
		errs = append(errs, fmt.Errorf("invalid LOGIN_RATE: %w", err))
	}
	if cfg.LoginBurst, err = strconv.ParseFloat(env("LOGIN_BURST", "10"), 64); err != nil {
		errs = append(errs, fmt.Errorf("invalid LOGIN_BURST: %w", err))
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks relationships between settings.
func (c Config) Validate() error {
	switch {
	case c.SessionTTL <= 0:
		return errors.New("SESSION_TTL must be positive")
	case c.RememberTTL <= c.SessionTTL:
		return fmt.Errorf("REMEMBER_TTL (%s) must be longer than SESSION_TTL (%s)", c.RememberTTL, c.SessionTTL)
	case c.ReapInterval <= 0:
		return errors.New("REAP_INTERVAL must be positive")
	case c.LoginRate < 0 || c.LoginBurst < 1:
		return errors.New("LOGIN_RATE must be >= 0 and LOGIN_BURST >= 1")
	case c.DatabasePath == "":
		return errors.New("DATABASE_PATH must not be empty")
	}
	return nil
}
