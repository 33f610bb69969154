package voxelpipe

import (
	"context"
	"log/slog"
	"os"

	"github.com/hupe1980/voxelpipe/model"
)

// Logger wraps slog.Logger with voxelpipe-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithStage adds a pipeline stage name to the logger.
func (l *Logger) WithStage(stage string) *Logger {
	return &Logger{
		Logger: l.Logger.With("stage", stage),
	}
}

// WithEntity adds an entity field to the logger.
func (l *Logger) WithEntity(entity model.EntityID) *Logger {
	return &Logger{
		Logger: l.Logger.With("entity", string(entity)),
	}
}

// LogServe logs one completed serve operation.
func (l *Logger) LogServe(ctx context.Context, req model.Request, err error) {
	if err != nil {
		l.ErrorContext(ctx, "serve failed",
			"request", req.String(),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "serve completed",
			"request", req.String(),
		)
	}
}

// LogSchedule logs a freshly built tiling schedule.
func (l *Logger) LogSchedule(ctx context.Context, subRequests int) {
	l.DebugContext(ctx, "tiling schedule built",
		"sub_requests", subRequests,
	)
}
