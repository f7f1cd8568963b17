package config

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
)

// InitLogger installs a tint handler as the process wide slog default.
func InitLogger(w io.Writer, level slog.Level) {
	slog.SetDefault(slog.New(
		tint.NewHandler(w, &tint.Options{
			Level:      level,
			AddSource:  level == slog.LevelDebug,
			TimeFormat: time.Kitchen,
		}),
	))
}
