package log

import (
	"context"
	"log/slog"
)

type ContextKey string

// LoggerContextKey holds the request scoped *Logger.
const LoggerContextKey ContextKey = "logger"

// NewContext returns a copy of ctx carrying logger.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext returns the logger stored by NewContext, or the process
// default tagged "unknown".
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// StructuredLogger writes the audit lines emitted after every stored change.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// LogRecordChanged logs a successful write on a stored record.
func (sl *StructuredLogger) LogRecordChanged(ctx context.Context, msg, component, operation, entity string, id int64, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	all := fields.
		WithRecord(entity, id).
		WithOperation(operation).
		WithComponent(component)

	sl.logger.InfoContext(ctx, msg, all.ToSlice()...)
}
