package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the server and both front-ends.
type Config struct {
	HTTPAddr        string        `toml:"http_addr"`
	DatabaseURL     string        `toml:"database_url"`
	DBDebug         bool          `toml:"db_debug"`
	APIURL          string        `toml:"api_url"`
	TelegramToken   string        `toml:"telegram_token"`
	DigestTime      string        `toml:"digest_time"`
	ShutdownTimeout time.Duration `toml:"-"`
}

const (
	defaultHTTPAddr        = ":8080"
	defaultDatabaseURL     = "todos.db"
	defaultAPIURL          = "http://localhost:8080"
	defaultDigestTime      = "08:00"
	defaultShutdownTimeout = 30 * time.Second
)

// Load reads configuration from .env, an optional TOML file named by
// TODO_CONFIG and the environment, in that order of precedence (lowest first).
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		HTTPAddr:        defaultHTTPAddr,
		DatabaseURL:     defaultDatabaseURL,
		APIURL:          defaultAPIURL,
		DigestTime:      defaultDigestTime,
		ShutdownTimeout: defaultShutdownTimeout,
	}

	if path := strings.TrimSpace(os.Getenv("TODO_CONFIG")); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if _, _, err := ParseClock(cfg.DigestTime); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if port := env("PORT"); port != "" {
		cfg.HTTPAddr = ":" + port
	}
	if v := env("HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := env("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := env("DB_DEBUG"); v != "" {
		cfg.DBDebug = v == "true" || v == "1"
	}
	if v := env("API_URL"); v != "" {
		cfg.APIURL = strings.TrimRight(v, "/")
	}
	if v := env("TELEGRAM_TOKEN"); v != "" {
		cfg.TelegramToken = v
	}
	if v := env("DIGEST_TIME"); v != "" {
		cfg.DigestTime = v
	}
	if v := env("SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ShutdownTimeout = d
		}
	}
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// ParseClock validates an HH:MM time of day.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	return t.Hour(), t.Minute(), nil
}
