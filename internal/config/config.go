package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Store drivers selectable through STORE_DRIVER.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Config contains server configuration parameters.
type Config struct {
	Addr     string `env:"ADDR" envDefault:":8000"`
	LogLevel int    `env:"LOG_LEVEL" envDefault:"0"`
	Store    Store  `envPrefix:"STORE_"`
	JWT      JWT    `envPrefix:"JWT_"`
	Bcrypt   Bcrypt `envPrefix:"BCRYPT_"`
}

// Store contains user store parameters.
type Store struct {
	Driver string `env:"DRIVER" envDefault:"file"`
	Path   string `env:"PATH" envDefault:"users.json"`
	DSN    string `env:"DSN" envDefault:"file:users.db?cache=shared&_pragma=busy_timeout(5000)"`
}

// JWT contains session token parameters.
type JWT struct {
	Secret   string `env:"SECRET" envDefault:"devsecret"`
	Issuer   string `env:"ISSUER" envDefault:"facelike"`
	TTLHours int    `env:"TTL_HOURS" envDefault:"24"`
}

// Bcrypt contains password hashing parameters.
type Bcrypt struct {
	Cost int `env:"COST" envDefault:"12"`
}

// New loads configuration from environment variables.
func New() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Store.Driver != DriverFile && cfg.Store.Driver != DriverSQLite {
		return nil, fmt.Errorf("unknown store driver: %q", cfg.Store.Driver)
	}

	return &cfg, nil
}
