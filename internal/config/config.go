package config

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN         string `env:"DB_DSN"`
	ServerPort    string `env:"SERVER_PORT" envDefault:"8080"`
	SessionSecret string `env:"SESSION_SECRET"`

	LogsFolder string `env:"LOGS_FOLDER" envDefault:"logs"`
	LogVerbose bool   `env:"LOG_VERBOSE" envDefault:"false"`

	// 0 disables the periodic sweep; stage transitions still recompute.
	SLASweepInterval time.Duration `env:"SLA_SWEEP_INTERVAL" envDefault:"15m"`

	OTelEndpoint string `env:"OTEL_ENDPOINT"`

	// Confirmation dates are stored as the calendar day in this zone.
	BusinessTimezone string `env:"BUSINESS_TIMEZONE" envDefault:"Asia/Kolkata"`

	AdminUsername string `env:"ADMIN_USERNAME" envDefault:"admin@rayenna.local"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"Admin123!"`
	SeedDemoUsers bool   `env:"SEED_DEMO_USERS" envDefault:"true"`
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DBDSN == "" {
		return errors.New("DB_DSN is not set")
	}
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET is not set")
	}
	if c.SLASweepInterval < 0 {
		return errors.New("SLA_SWEEP_INTERVAL must not be negative")
	}
	if _, err := time.LoadLocation(c.BusinessTimezone); err != nil {
		return fmt.Errorf("BUSINESS_TIMEZONE: %w", err)
	}
	return nil
}

// BusinessLocation is the zone confirmation dates are read in. An empty or
// unknown zone falls back to UTC.
func (c *Config) BusinessLocation() *time.Location {
	if c.BusinessTimezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.BusinessTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
