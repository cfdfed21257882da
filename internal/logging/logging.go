// Package logging configures the process-wide slog logger backed by the
// rotating app.log in the user's log directory.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// app.log rotation limits. One rotated backup (app.log.1) is kept.
const (
	maxLogSizeMB  = 2
	maxLogBackups = 1
)

var (
	once   sync.Once
	logger *slog.Logger
)

// Options configure the global logger.
type Options struct {
	Level string // debug | info | warn | error (default info)
	File  string // rotating log file path; empty disables file output
	Echo  bool   // also write to stderr (foreground mode)
}

// Setup initializes the global logger. Subsequent calls are no-ops.
func Setup(opts Options) {
	once.Do(func() {
		var writers []io.Writer
		if opts.File != "" {
			writers = append(writers, &lumberjack.Logger{
				Filename:   opts.File,
				MaxSize:    maxLogSizeMB,
				MaxBackups: maxLogBackups,
			})
		}
		if opts.Echo || len(writers) == 0 {
			writers = append(writers, os.Stderr)
		}

		handler := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
			Level: parseLevel(opts.Level),
		})
		logger = slog.New(handler)
		slog.SetDefault(logger)
	})
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// Get returns the configured logger, or a stderr logger if Setup hasn't run.
func Get() *slog.Logger {
	if logger == nil {
		Setup(Options{})
	}
	return logger
}

// WithComponent returns a logger with the component field set.
func WithComponent(name string) *slog.Logger {
	return Get().With(slog.String("component", name))
}
