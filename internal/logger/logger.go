// Package logger provides contextual structured logging on top of logrus.
package logger

import (
	"context"

	"github.com/sirupsen/logrus"
)

type ctxKey string

const requestIDKey ctxKey = "request_id"

var base = logrus.New()

func init() {
	base.SetFormatter(&logrus.JSONFormatter{})
}

// WithRequestID returns a context carrying a request id that subsequent
// log calls will attach as a field automatically.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// CloneContext detaches a context's deadline/cancellation while preserving
// its logging fields, for use in goroutines that must outlive the request.
func CloneContext(ctx context.Context) context.Context {
	requestID, _ := ctx.Value(requestIDKey).(string)
	return WithRequestID(context.Background(), requestID)
}

func entry(ctx context.Context) *logrus.Entry {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok && requestID != "" {
		return base.WithField("request_id", requestID)
	}
	return logrus.NewEntry(base)
}

func Infof(ctx context.Context, format string, args ...interface{}) {
	entry(ctx).Infof(format, args...)
}

func Info(ctx context.Context, msg string) {
	entry(ctx).Info(msg)
}

func Warnf(ctx context.Context, format string, args ...interface{}) {
	entry(ctx).Warnf(format, args...)
}

func Errorf(ctx context.Context, format string, args ...interface{}) {
	entry(ctx).Errorf(format, args...)
}

func Debugf(ctx context.Context, format string, args ...interface{}) {
	entry(ctx).Debugf(format, args...)
}

// WithFields logs a single structured entry at the given level, matching the
// pipeline stage/action/fields convention used across the orchestrator.
func WithFields(ctx context.Context, level logrus.Level, fields map[string]interface{}, msg string) {
	e := entry(ctx).WithFields(fields)
	e.Log(level, msg)
}
