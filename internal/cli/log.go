package cli

import (
	"io"
	"log/slog"

	"github.com/MatusOllah/slogcolor"
	"github.com/zarlcorp/sensorgen/internal/config"
)

// SetupLogging installs a colored slog handler on w at the configured level.
func SetupLogging(w io.Writer, cfg *config.Config) error {
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	slog.SetDefault(NewLogger(w, level))
	return nil
}

// NewLogger returns a colored logger writing to w.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	opts := *slogcolor.DefaultOptions
	opts.Level = level
	return slog.New(slogcolor.NewHandler(w, &opts))
}
