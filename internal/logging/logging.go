// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// Setup installs a tint handler on stderr as the default logger.
func Setup(debug bool) *slog.Logger {
	return SetupWriter(os.Stderr, debug)
}

// SetupWriter is Setup for an arbitrary writer; color is only used on stderr.
func SetupWriter(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  debug,
		NoColor:    w != os.Stderr,
	}))
	slog.SetDefault(logger)
	return logger
}
