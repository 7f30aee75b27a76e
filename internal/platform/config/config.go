// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A local '.env' file
is honoured when present so that developers can run the API without exporting
variables by hand.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/taibuivan/shopii/pkg/slice"
)

// # Configuration Schema

// Config holds all runtime configuration for the Shopii API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"`
	NodeEnv     string `env:"NODE_ENV"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`
	LogFormat   string `env:"LOG_FORMAT"   envDefault:"json"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Store (Redis)
	RedisURL string `env:"REDIS_URL,required,notEmpty"`

	// HS256 signing secret for session and step-up tokens
	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`

	// Admin step-up policy
	AdminIPAllowlist          string `env:"ADMIN_IP_ALLOWLIST"`
	AdminTrustedDeviceTTLDays int    `env:"ADMIN_TRUSTED_DEVICE_TTL_DAYS" envDefault:"30"`
	TOTPIssuer                string `env:"TOTP_ISSUER"                   envDefault:"Shopii Admin"`

	// Cross-Origin Resource Sharing (comma-separated origins)
	ClientURL string `env:"CLIENT_URL" envDefault:"http://localhost:3000"`

	// Storefront page that redeems password reset tokens
	PasswordResetURL string `env:"PASSWORD_RESET_URL" envDefault:"http://localhost:3000/reset-password"`

	// Notification bus (Kafka). An empty broker list logs notifications instead.
	KafkaBrokers           []string `env:"KAFKA_BROKERS"            envSeparator:","`
	KafkaNotificationTopic string   `env:"KAFKA_NOTIFICATION_TOPIC" envDefault:"shopii.notifications"`

	// Tracing (OpenTelemetry OTLP/gRPC)
	OtelEnabled       bool   `env:"OTEL_ENABLED"        envDefault:"false"`
	OtelCollectorAddr string `env:"OTEL_COLLECTOR_ADDR" envDefault:"localhost:4317"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// A missing .env file is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env file: %w", err)
	}

	// Initialize an empty config struct
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	// ENVIRONMENT wins; NODE_ENV is accepted for parity with the storefront tooling.
	if cfg.Environment == "" {
		cfg.Environment = cfg.NodeEnv
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.AdminTrustedDeviceTTLDays <= 0 {
		return fmt.Errorf("config: ADMIN_TRUSTED_DEVICE_TTL_DAYS must be positive, got %d", c.AdminTrustedDeviceTTLDays)
	}
	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// TrustedDeviceTTL returns the trusted-device lifetime as a duration.
func (c *Config) TrustedDeviceTTL() time.Duration {
	return time.Duration(c.AdminTrustedDeviceTTLDays) * 24 * time.Hour
}

// AllowedOrigins splits CLIENT_URL into the list handed to the CORS middleware.
func (c *Config) AllowedOrigins() []string {
	return slice.SplitList(c.ClientURL)
}
