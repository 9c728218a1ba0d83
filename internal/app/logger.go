package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the application logger from the config surface:
// JSON handlers when LOG_FORMAT=json (for log shippers), readable text
// otherwise. Production runs at Info; development keeps Debug and
// source locations.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelDebug, AddSource: true}
	if cfg.IsProduction() {
		opts.Level = slog.LevelInfo
		opts.AddSource = false
	}
	if cfg != nil && cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
