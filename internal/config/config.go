// Package config loads app config from env and an optional .env file using Viper.
package config

import (
	"encoding/base64"
	"errors"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// Addr is the address the HTTP server listens on (e.g. :8080).
	Addr string `mapstructure:"SHIFTPULSE_ADDR"`
	// SQLitePath is the sqlite database file path.
	SQLitePath string `mapstructure:"SHIFTPULSE_SQLITE_PATH"`
	// MigrationsDir optionally overrides the embedded migrations.
	MigrationsDir string `mapstructure:"SHIFTPULSE_MIGRATIONS_DIR"`
	// JWTSecret signs admin bearer tokens.
	JWTSecret string `mapstructure:"SHIFTPULSE_JWT_SECRET"`
	// EscrowKey is the base64-encoded 32-byte identity escrow key. When
	// empty, responses are accepted without identity material.
	EscrowKey string `mapstructure:"SHIFTPULSE_ESCROW_KEY"`
	// Env is the application environment ("development", "production").
	Env string `mapstructure:"SHIFTPULSE_ENV"`
}

// Load reads .env (if present), then builds Config from the environment.
// Missing .env is ignored; env vars override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("SHIFTPULSE_ADDR", ":8080")
	v.SetDefault("SHIFTPULSE_SQLITE_PATH", "shiftpulse.db")
	v.SetDefault("SHIFTPULSE_MIGRATIONS_DIR", "")
	v.SetDefault("SHIFTPULSE_JWT_SECRET", "")
	v.SetDefault("SHIFTPULSE_ESCROW_KEY", "")
	v.SetDefault("SHIFTPULSE_ENV", "development")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Addr == "" {
		return nil, errors.New("config: SHIFTPULSE_ADDR must be set")
	}
	if cfg.JWTSecret == "" {
		if cfg.Env == "production" {
			return nil, errors.New("config: SHIFTPULSE_JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = "shiftpulse-dev-secret"
	}
	if _, err := cfg.EscrowKeyBytes(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// EscrowKeyBytes decodes the escrow key. A nil result with nil error means
// escrow is disabled.
func (c *Config) EscrowKeyBytes() ([]byte, error) {
	if c.EscrowKey == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(c.EscrowKey)
	if err != nil {
		return nil, errors.New("config: SHIFTPULSE_ESCROW_KEY must be base64")
	}
	if len(key) != 32 {
		return nil, errors.New("config: SHIFTPULSE_ESCROW_KEY must decode to 32 bytes")
	}
	return key, nil
}
