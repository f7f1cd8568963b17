package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	StoreFile string
	Addr      string
	LogLevel  slog.Level
	SQLDebug  bool
}

// Load reads .env (if present) and the CRISK_* environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		StoreFile: os.Getenv("CRISK_FILE"),
		Addr:      os.Getenv("CRISK_ADDR"),
	}

	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8080"
	}

	level, err := parseLevel(os.Getenv("CRISK_LOG_LEVEL"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	if v := os.Getenv("CRISK_SQL_DEBUG"); v != "" {
		cfg.SQLDebug, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("CRISK_SQL_DEBUG: %w", err)
		}
	}

	return cfg, nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("CRISK_LOG_LEVEL: unknown level %q", s)
}
