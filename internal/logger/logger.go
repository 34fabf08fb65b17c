// Package logger configures structured logging for the smartmeet binaries.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

type ctxKey string

const loggerKey ctxKey = "logger"

type Config struct {
	Level      slog.Level
	Output     io.Writer
	AddSource  bool
	JSONFormat bool
}

func New(cfg Config) *slog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if cfg.JSONFormat {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	} else {
		handler = slog.NewTextHandler(cfg.Output, opts)
	}

	return slog.New(handler)
}

// Default returns a text logger suitable for interactive use.
func Default() *slog.Logger {
	return New(Config{
		Level:  slog.LevelInfo,
		Output: os.Stdout,
	})
}

// JSON returns a JSON logger suitable for the API server.
func JSON() *slog.Logger {
	return New(Config{
		Level:      slog.LevelInfo,
		Output:     os.Stdout,
		JSONFormat: true,
	})
}

// WithContext stores a request-scoped logger on the context.
func WithContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger stored on the context, or the process
// default when none was attached.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.Default()
	}
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
