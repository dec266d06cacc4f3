package commands

import (
	"io"
	"log/slog"
	"strings"

	"eventapi/config"
)

func setupLogger(w io.Writer, env, level string) *slog.Logger {
	var (
		lvl     slog.Level
		useJSON bool
	)
	switch env {
	case config.EnvLocal:
		lvl = slog.LevelDebug
	case config.EnvDev:
		lvl, useJSON = slog.LevelDebug, true
	default:
		lvl, useJSON = slog.LevelInfo, true
	}
	if level != "" {
		var parsed slog.Level
		if err := parsed.UnmarshalText([]byte(strings.ToUpper(level))); err == nil {
			lvl = parsed
		}
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if useJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
