package main

import (
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/sagarc03/snapvault/config"
)

// setupLogging installs the process-wide slog logger and routes the standard
// log package through it.
func setupLogging(cfg *config.Config) {
	slog.SetDefault(slog.New(newLogHandler(os.Stdout, cfg)))

	log.SetFlags(0)
	log.SetOutput(slog.NewLogLogger(slog.Default().Handler(), slog.LevelInfo).Writer())
}

// newLogHandler returns a JSON handler with a UTC "ts" field in production and
// a colored tint handler otherwise. An unset level means info in production
// and debug elsewhere.
func newLogHandler(w io.Writer, cfg *config.Config) slog.Handler {
	level := slog.LevelDebug
	if cfg.IsProd() {
		level = slog.LevelInfo
	}
	if cfg.Log.Level != "" {
		level = parseLevel(cfg.Log.Level)
	}

	if !cfg.IsProd() {
		return tint.NewHandler(w, &tint.Options{
			Level:      level,
			AddSource:  true,
			TimeFormat: "15:04:05.000",
		})
	}

	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.String("ts", a.Value.Time().UTC().Format(time.RFC3339Nano))
			}
			return a
		},
	}).WithAttrs([]slog.Attr{slog.String("service", "snapvault")})
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if s == "warning" {
		s = "warn"
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
