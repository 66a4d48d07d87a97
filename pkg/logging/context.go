package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type contextKey int

const (
	loggerKey contextKey = iota
	requestIDKey
)

// WithLogger stores logger on ctx; nil stores the default logger.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored on ctx, or the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}

// FromContextOr returns the logger carried by ctx, or fallback when there is none.
func FromContextOr(ctx context.Context, fallback *zerolog.Logger) *zerolog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
			return logger
		}
	}
	if fallback == nil {
		return Default()
	}
	return fallback
}

// Ctx is shorthand for FromContext.
func Ctx(ctx context.Context) *zerolog.Logger {
	return FromContext(ctx)
}

// WithRequestID records id on ctx and tags the context logger with it.
func WithRequestID(ctx context.Context, id string) context.Context {
	ctx = context.WithValue(ctx, requestIDKey, id)
	return WithField(ctx, "request_id", id)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithField tags the context logger with one field.
func WithField(ctx context.Context, key string, value any) context.Context {
	logger := addField(FromContext(ctx).With(), key, value).Logger()
	return WithLogger(ctx, &logger)
}

// WithFields tags the context logger with every entry in fields.
func WithFields(ctx context.Context, fields map[string]any) context.Context {
	zc := FromContext(ctx).With()
	for k, v := range fields {
		zc = addField(zc, k, v)
	}
	logger := zc.Logger()
	return WithLogger(ctx, &logger)
}

// WithFile tags the context logger with the file name being handled.
func WithFile(ctx context.Context, name string) context.Context {
	return WithField(ctx, "file", name)
}

// WithCategory tags the context logger with a catalog category.
func WithCategory(ctx context.Context, category string) context.Context {
	return WithField(ctx, "category", category)
}

// WithOperation tags the context logger with the catalog operation name.
func WithOperation(ctx context.Context, operation string) context.Context {
	return WithField(ctx, "operation", operation)
}

// WithRemote tags the context logger with the mirror remote in use.
func WithRemote(ctx context.Context, remote string) context.Context {
	return WithField(ctx, "remote", remote)
}

// WithError attaches err to the context logger; nil leaves ctx unchanged.
func WithError(ctx context.Context, err error) context.Context {
	if err == nil {
		return ctx
	}
	return WithField(ctx, "error", err)
}
