package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is loaded from PARLEY_* environment variables, with an optional
// .env file for development.
type Config struct {
	Addr          string        `envconfig:"ADDR" default:":8080"`
	JWTSecret     string        `envconfig:"JWT_SECRET" default:"change-me-in-production"`
	TokenTTL      time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	StoreDriver   string        `envconfig:"STORE_DRIVER" default:"memory"`
	StoreDSN      string        `envconfig:"STORE_DSN" default:"parley.db"`
	StoreOffline  bool          `envconfig:"STORE_OFFLINE" default:"false"`
	MaxMessageLen int           `envconfig:"MAX_MESSAGE_LEN" default:"4096"`
	LogLevel      string        `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("parley", &cfg); err != nil {
		return nil, err
	}

	switch cfg.StoreDriver {
	case "memory", "sqlite3":
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
	return &cfg, nil
}
