package logger

import (
	"context"

	"github.com/rs/zerolog"
)

type contextKey string

const (
	requestIDKey     contextKey = "request_id"
	userIDKey        contextKey = "user_id"
	correlationIDKey contextKey = "correlation_id"
)

// ============================================
// Context operations
// ============================================

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey, correlationID)
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

func GetCorrelationID(ctx context.Context) string {
	if correlationID, ok := ctx.Value(correlationIDKey).(string); ok {
		return correlationID
	}
	return ""
}

func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(userIDKey).(string); ok {
		return userID
	}
	return ""
}

// ============================================
// Context-aware logging
// ============================================

// FromContext returns a logger carrying request_id, user_id and
// correlation_id when they are present in ctx.
func FromContext(ctx context.Context) *zerolog.Logger {
	base := GetLogger()
	if ctx == nil {
		return base
	}

	lc := base.With()
	added := false

	if requestID := GetRequestID(ctx); requestID != "" {
		lc = lc.Str("request_id", requestID)
		added = true
	}
	if userID := GetUserID(ctx); userID != "" {
		lc = lc.Str("user_id", userID)
		added = true
	}
	if correlationID := GetCorrelationID(ctx); correlationID != "" {
		lc = lc.Str("correlation_id", correlationID)
		added = true
	}

	if !added {
		return base
	}
	l := lc.Logger()
	return &l
}

func CtxDebug(ctx context.Context, msg string, args ...any) {
	emit(FromContext(ctx).Debug(), msg, args)
}

func CtxInfo(ctx context.Context, msg string, args ...any) {
	emit(FromContext(ctx).Info(), msg, args)
}

func CtxWarn(ctx context.Context, msg string, args ...any) {
	emit(FromContext(ctx).Warn(), msg, args)
}

func CtxError(ctx context.Context, msg string, args ...any) {
	emit(FromContext(ctx).Error(), msg, args)
}

// CtxWithError logs msg at error level with err attached.
func CtxWithError(ctx context.Context, msg string, err error, args ...any) {
	emit(FromContext(ctx).Error().Err(err), msg, args)
}
