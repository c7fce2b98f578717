// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

// Config is the API service configuration.
type Config struct {
	Port        string     `env:"PORT" envDefault:"8080"`
	Environment string     `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	RedisURL          string `env:"REDIS_URL" envDefault:"localhost:6379"`
	SessionTTLMinutes int    `env:"SESSION_TTL_MINUTES" envDefault:"60"`
	LeaderboardCap    int    `env:"LEADERBOARD_CAP" envDefault:"100"`

	// RandomSeed, when non-zero, makes every probability draw
	// reproducible. Zero seeds from the clock.
	RandomSeed int64 `env:"RANDOM_SEED" envDefault:"0"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
