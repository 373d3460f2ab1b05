package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the process-wide configuration, loaded once at startup and
// treated as immutable afterwards. The signing secret and token TTL are
// passed into the token codec at construction; nothing reads the
// environment after Load returns.
type Config struct {
	Addr          string        `env:"SUBMITHUB_ADDR" envDefault:":8080"`
	SQLitePath    string        `env:"SUBMITHUB_DB_PATH" envDefault:"data/submithub.db"`
	MigrationsDir string        `env:"SUBMITHUB_MIGRATIONS_DIR"`
	JWTSecret     string        `env:"SUBMITHUB_JWT_SECRET" envDefault:"submithub-dev-secret"`
	TokenTTL      time.Duration `env:"SUBMITHUB_TOKEN_TTL" envDefault:"168h"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}
