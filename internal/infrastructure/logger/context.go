package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey     contextKey = "logger"
	requestIDKey  contextKey = "request_id"
	operatorIDKey contextKey = "operator_id"
	jobKey        contextKey = "job"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from context, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID adds the request ID to context and returns the enriched logger
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	enriched := logger.With(zap.String("request_id", requestID))
	return WithContext(ctx, enriched), enriched
}

// WithOperatorID adds the operator performing a ledger operation
func WithOperatorID(ctx context.Context, logger *zap.Logger, operatorID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, operatorIDKey, operatorID)
	enriched := logger.With(zap.String("operator_id", operatorID))
	return WithContext(ctx, enriched), enriched
}

// WithJob marks the context as running inside a scheduled job
func WithJob(ctx context.Context, logger *zap.Logger, job string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, jobKey, job)
	enriched := logger.With(zap.String("job", job))
	return WithContext(ctx, enriched), enriched
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// GetOperatorID retrieves operator ID from context
func GetOperatorID(ctx context.Context) string {
	id, _ := ctx.Value(operatorIDKey).(string)
	return id
}

// GetJob retrieves the scheduled job name from context
func GetJob(ctx context.Context) string {
	job, _ := ctx.Value(jobKey).(string)
	return job
}

// GetTraceID extracts the trace ID from the context's span.
// Returns an empty string if no valid span exists.
func GetTraceID(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}

// L returns the context logger with trace_id and span_id added.
// Usage: logger.L(ctx).Info("message", zap.String("key", "value"))
func L(ctx context.Context) *zap.Logger {
	return withTrace(ctx, FromContext(ctx))
}

func withTrace(ctx context.Context, l *zap.Logger) *zap.Logger {
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		return l.With(
			zap.String("trace_id", spanCtx.TraceID().String()),
			zap.String("span_id", spanCtx.SpanID().String()),
		)
	}
	return l
}

// Enrich adds the context's correlation fields to a logger that did not come
// from the context, such as a service's own logger
func Enrich(ctx context.Context, l *zap.Logger) *zap.Logger {
	if l == nil {
		l = zap.NewNop()
	}
	l = withTrace(ctx, l)
	if id := GetRequestID(ctx); id != "" {
		l = l.With(zap.String("request_id", id))
	}
	if id := GetOperatorID(ctx); id != "" {
		l = l.With(zap.String("operator_id", id))
	}
	if job := GetJob(ctx); job != "" {
		l = l.With(zap.String("job", job))
	}
	return l
}
