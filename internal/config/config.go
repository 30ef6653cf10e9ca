// Package config loads airpass configuration from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/airpass/airpass/internal/domain"
	"github.com/ilyakaznacheev/cleanenv"
)

// EnvPath names the variable consulted when no -config flag is given.
const EnvPath = "AIRPASS_CONFIG"

// ResolvePath returns flagValue, falling back to $AIRPASS_CONFIG.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(EnvPath)
}

// Load reads the config file at path and applies environment overrides and defaults.
// An empty or missing path yields environment and defaults only.
func Load(path string) (*domain.Config, error) {
	var cfg domain.Config

	if path != "" {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return nil, fmt.Errorf("cannot read config %s: %w", path, err)
			}
			return &cfg, validate(&cfg)
		case errors.Is(err, fs.ErrNotExist):
			slog.Warn("config file not found, using environment", "path", path)
		default:
			return nil, fmt.Errorf("cannot stat config %s: %w", path, err)
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("cannot read config from environment: %w", err)
	}
	return &cfg, validate(&cfg)
}

func validate(cfg *domain.Config) error {
	var errs []error

	switch cfg.Repository.Driver {
	case "sqlite", "postgres", "pgx":
	default:
		errs = append(errs, fmt.Errorf("repository.driver %q: want sqlite, postgres or pgx", cfg.Repository.Driver))
	}

	switch cfg.Cache.Type {
	case "memory", "redis":
	default:
		errs = append(errs, fmt.Errorf("cache.type %q: want memory or redis", cfg.Cache.Type))
	}

	switch cfg.EventBus.Type {
	case "channel", "nats":
	default:
		errs = append(errs, fmt.Errorf("eventBus.type %q: want channel or nats", cfg.EventBus.Type))
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", cfg.Server.Port))
	}

	if _, ok := parseLevel(cfg.Logging.Level); !ok {
		errs = append(errs, fmt.Errorf("logging.level %q: want debug, info, warn or error", cfg.Logging.Level))
	}

	return errors.Join(errs...)
}

// LogLevel maps the configured level name to a slog level. Unknown names mean info.
func LogLevel(cfg *domain.Config) slog.Level {
	level, _ := parseLevel(cfg.Logging.Level)
	return level
}

func parseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}
