// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Addr        string        `env:"QOF_ADDR" env-default:":8080"`
	DBPath      string        `env:"QOF_DB_PATH" env-default:"data/queueoverflow.db"`
	TokenSecret string        `env:"QOF_TOKEN_SECRET" env-default:"dev-secret-change-me-in-prod"`
	TokenTTL    time.Duration `env:"QOF_TOKEN_TTL" env-default:"720h"`
	LogLevel    string        `env:"QOF_LOG_LEVEL" env-default:"info"`
}

func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: reading environment: %w", err)
	}
	return cfg, nil
}

// SlogLevel maps the configured level name to a slog level, defaulting to
// Info on anything unrecognized.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
