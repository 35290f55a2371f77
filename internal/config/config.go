package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration values.
type Config struct {
	App AppConfig
	DB  DBConfig
	JWT JWTConfig
}

type AppConfig struct {
	Port      string `envconfig:"PHARMACHAIN_APP_PORT" default:"8080"`
	LogLevel  string `envconfig:"PHARMACHAIN_LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"PHARMACHAIN_LOG_FORMAT" default:"json"`
	Seed      bool   `envconfig:"PHARMACHAIN_SEED" default:"true"`
}

type DBConfig struct {
	DSN string `envconfig:"PHARMACHAIN_DB_DSN" default:"file:pharmachain.db"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PHARMACHAIN_JWT_SECRET" default:"dev_secret"`
	ExpirationMinutes int    `envconfig:"PHARMACHAIN_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// TokenTTL returns the configured token lifetime.
func (j JWTConfig) TokenTTL() time.Duration {
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// Load reads configuration from environment variables with reasonable defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}
