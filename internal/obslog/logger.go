// Package obslog provides structured logging with trace/actor context, for
// use across every substrate-core package. It is adapted from the
// organization's standard infrastructure/logging package.
package obslog

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ContextKey namespaces values stored on a context.Context.
type ContextKey string

const (
	// TraceIDKey carries a per-request/per-operation trace identifier.
	TraceIDKey ContextKey = "trace_id"
	// ActorIDKey carries the identity of the caller driving an operation.
	ActorIDKey ContextKey = "actor_id"
	// ComponentKey carries the subsystem name (gateway, srl, seed, ...).
	ComponentKey ContextKey = "component"
)

// Logger wraps *logrus.Logger with substrate-core specific context helpers.
type Logger struct {
	*logrus.Logger
	component string
}

// New builds a Logger for the given component with explicit level/format.
func New(component, level, format string) *Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.RFC3339,
			FullTimestamp:   true,
		})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	}

	logger.SetOutput(os.Stdout)

	return &Logger{Logger: logger, component: component}
}

// NewFromEnv reads LOG_LEVEL/LOG_FORMAT, defaulting to info/json.
func NewFromEnv(component string) *Logger {
	level := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if level == "" {
		level = "info"
	}
	format := strings.TrimSpace(os.Getenv("LOG_FORMAT"))
	if format == "" {
		format = "json"
	}
	return New(component, level, format)
}

// WithContext builds a log entry carrying the component name plus whatever
// trace/actor values are present on ctx.
func (l *Logger) WithContext(ctx context.Context) *logrus.Entry {
	entry := l.Logger.WithField("component", l.component)
	if traceID := ctx.Value(TraceIDKey); traceID != nil {
		entry = entry.WithField("trace_id", traceID)
	}
	if actorID := ctx.Value(ActorIDKey); actorID != nil {
		entry = entry.WithField("actor_id", actorID)
	}
	return entry
}

// WithOperation tags a log entry with the operation name (e.g. "divide",
// "fetch") in addition to the context fields.
func (l *Logger) WithOperation(ctx context.Context, operation string) *logrus.Entry {
	return l.WithContext(ctx).WithField("operation", operation)
}
