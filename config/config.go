// Package config loads server configuration from a YAML file and
// environment variables. Priority: ENV > YAML > defaults.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Addr   string    `yaml:"addr" env:"POCKETBOOK_ADDR" env-default:":8080"`
	DBPath string    `yaml:"db_path" env:"POCKETBOOK_DB" env-default:"pocketbook.db"`
	Log    LogConfig `yaml:"log"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"POCKETBOOK_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"POCKETBOOK_LOG_FORMAT" env-default:"text"`
}

// Load reads configuration; the YAML path comes from CONFIG_PATH
// (fallback "./config.yaml"). A missing default file is fine: ENV +
// defaults apply. A missing explicit file is an error.
func Load() (*Config, error) {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	explicit := path != ""
	if !explicit {
		path = "./config.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	return &cfg, nil
}

// NewLogger builds a *slog.Logger from the log config and installs it as
// the default. Format "json" for production, anything else is text.
func NewLogger(cfg LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
