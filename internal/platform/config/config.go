// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (stores, services) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/taibuivan/gatehouse/internal/platform/constants"
)

// Runtime environments accepted by [Config.Environment].
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// User store backends accepted by [Config.UserStore].
const (
	UserStoreFile = "file"
	UserStoreEnv  = "env"
)

var (
	// ErrSecretTooShort is returned when JWT_SECRET is below [constants.MinSecretLength].
	ErrSecretTooShort = errors.New("config: JWT_SECRET must be at least 32 characters long")

	// ErrInvalidEnvironment is returned for an unknown ENVIRONMENT value.
	ErrInvalidEnvironment = errors.New("config: ENVIRONMENT must be one of development, production, test")

	// ErrInvalidUserStore is returned for an unknown USER_STORE value.
	ErrInvalidUserStore = errors.New("config: USER_STORE must be one of file, env")
)

// # Configuration Schema

// Config holds all runtime configuration for the Gatehouse server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Credential signing
	JWTSecret    string   `env:"JWT_SECRET,required"`
	JWTExpiresIn Lifetime `env:"JWT_EXPIRES_IN" envDefault:"7d"`

	// Single-account user store
	UserStore        string `env:"USER_STORE"         envDefault:"file"`
	UserFile         string `env:"USER_FILE"          envDefault:"./data/user.json"`
	AuthUsername     string `env:"AUTH_USERNAME"`
	AuthPasswordHash string `env:"AUTH_PASSWORD_HASH"`
	AuthUserID       string `env:"AUTH_USER_ID"       envDefault:"1"`

	// Key-Value Cache (Redis). Optional: in-memory stores are used when empty.
	RedisURL string `env:"REDIS_URL"`

	// Replay guard
	CSRFExpiry    time.Duration `env:"CSRF_EXPIRY"     envDefault:"1h"`
	CSRFSingleUse bool          `env:"CSRF_SINGLE_USE" envDefault:"false"`

	// Action rate limiter
	RateLimitWindow    time.Duration `env:"RATE_LIMIT_WINDOW"     envDefault:"1m"`
	RateLimitCacheSize int           `env:"RATE_LIMIT_CACHE_SIZE" envDefault:"500"`

	// Global per-IP throttle
	ThrottleRPS   float64 `env:"THROTTLE_RPS"   envDefault:"100"`
	ThrottleBurst int     `env:"THROTTLE_BURST" envDefault:"150"`

	// Request gate
	GatePolicyFile  string `env:"GATE_POLICY_FILE"`
	GateDefaultDeny bool   `env:"GATE_DEFAULT_DENY" envDefault:"false"`
	LoginPath       string `env:"LOGIN_PATH"        envDefault:"/login"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(environment map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environment})
}

func parse(options env.Options) (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.ParseWithOptions(cfg, options); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate enforces the constraints env tags cannot express.
func (c *Config) Validate() error {
	if len(c.JWTSecret) < constants.MinSecretLength {
		return ErrSecretTooShort
	}

	if !slices.Contains([]string{EnvDevelopment, EnvProduction, EnvTest}, c.Environment) {
		return ErrInvalidEnvironment
	}

	if !slices.Contains([]string{UserStoreFile, UserStoreEnv}, c.UserStore) {
		return ErrInvalidUserStore
	}

	if c.JWTExpiresIn.Duration() <= 0 {
		return fmt.Errorf("config: JWT_EXPIRES_IN must be positive")
	}

	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// IsProduction reports whether the server is running in production mode.
// It toggles the credential cookie's Secure flag.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// AllowedOrigins splits EXTRA_ORIGINS into a trimmed list.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.ExtraOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// # Lifetime

// Lifetime is a duration that additionally accepts a whole number of days
// ("7d"), the notation used for credential lifetimes.
type Lifetime time.Duration

// UnmarshalText implements [encoding.TextUnmarshaler] for env parsing.
func (l *Lifetime) UnmarshalText(text []byte) error {
	parsed, err := ParseLifetime(string(text))
	if err != nil {
		return err
	}
	*l = Lifetime(parsed)
	return nil
}

// Duration returns l as a [time.Duration].
func (l Lifetime) Duration() time.Duration {
	return time.Duration(l)
}

// MaxLifetimeDays bounds the day notation so the product cannot overflow.
const MaxLifetimeDays = 3650

// ParseLifetime parses "Nd" or any [time.ParseDuration] string.
//
// Credentials carry expiry in whole seconds, so sub-second parts are rejected.
func ParseLifetime(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)

	if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("config: invalid lifetime %q: %w", value, err)
		}
		if n < 0 || n > MaxLifetimeDays {
			return 0, fmt.Errorf("config: lifetime %q must be between 0d and %dd", value, MaxLifetimeDays)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("config: invalid lifetime %q: %w", value, err)
	}
	if duration%time.Second != 0 {
		return 0, fmt.Errorf("config: lifetime %q must be a whole number of seconds", value)
	}
	return duration, nil
}
