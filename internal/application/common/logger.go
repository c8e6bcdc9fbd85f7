package common

import (
	"context"
	"fmt"
	"strings"
)

// ContainerLogger provides structured logging for components and handlers
type ContainerLogger interface {
	Log(level, message string, metadata map[string]interface{})
}

// Log levels, lowest first
const (
	LevelDebug   = "DEBUG"
	LevelInfo    = "INFO"
	LevelWarning = "WARNING"
	LevelError   = "ERROR"
)

// LevelRank orders levels for filtering. Unknown levels rank as INFO.
func LevelRank(level string) int {
	switch strings.ToUpper(level) {
	case LevelDebug:
		return 0
	case LevelWarning, "WARN":
		return 2
	case LevelError:
		return 3
	default:
		return 1
	}
}

// Context keys for passing logger through context
type contextKey int

const (
	loggerKey contextKey = iota
)

// WithLogger adds a logger to the context
func WithLogger(ctx context.Context, logger ContainerLogger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext extracts the logger from context, or returns a no-op logger if not found
func LoggerFromContext(ctx context.Context) ContainerLogger {
	if logger, ok := ctx.Value(loggerKey).(ContainerLogger); ok {
		return logger
	}
	return &noOpLogger{}
}

type noOpLogger struct{}

func (l *noOpLogger) Log(level, message string, metadata map[string]interface{}) {}

// LoggingMiddleware logs failed commands at WARNING with the request type
func LoggingMiddleware() Middleware {
	return func(ctx context.Context, request Request, next HandlerFunc) (Response, error) {
		resp, err := next(ctx, request)
		if err != nil {
			LoggerFromContext(ctx).Log(LevelWarning, err.Error(), map[string]interface{}{
				"action":  "command_failed",
				"request": requestName(request),
			})
		}
		return resp, err
	}
}

func requestName(request Request) string {
	name := strings.TrimPrefix(fmt.Sprintf("%T", request), "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}
