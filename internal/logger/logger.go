package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

var log *zerolog.Logger

// Init configures the global logger.
// env: "development" gives a human readable console, anything else JSON.
func Init(env string) {
	InitWithLevel(env, "")
}

// InitWithLevel is Init with an explicit level ("debug", "info", ...).
// An empty level means debug in development and info elsewhere.
func InitWithLevel(env, level string) {
	var out io.Writer = os.Stdout
	if env == "development" || env == "test" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	setup(out, env, level)
}

// InitWithWriter sends output to w as JSON. Used by tests to capture logs.
func InitWithWriter(w io.Writer, level string) {
	setup(w, "production", level)
}

func setup(out io.Writer, env, level string) {
	lvl := zerolog.InfoLevel
	if env == "development" {
		lvl = zerolog.DebugLevel
	}
	if level != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil {
			lvl = parsed
		}
	}

	l := zerolog.New(out).Level(lvl).With().Timestamp().Caller().Logger()
	log = &l
	zlog.Logger = l
	zerolog.DefaultContextLogger = log
}

// GetLogger returns the global logger, initialising a development one if needed.
func GetLogger() *zerolog.Logger {
	if log == nil {
		Init("development")
	}
	return log
}

// ============================================
// Convenience functions
// ============================================

// Fields are passed as alternating key/value pairs: logger.Info("msg", "user_id", id).

func Debug(msg string, args ...any) {
	emit(GetLogger().Debug(), msg, args)
}

func Info(msg string, args ...any) {
	emit(GetLogger().Info(), msg, args)
}

func Warn(msg string, args ...any) {
	emit(GetLogger().Warn(), msg, args)
}

func Error(msg string, args ...any) {
	emit(GetLogger().Error(), msg, args)
}

// Fatal logs and exits with status 1.
func Fatal(msg string, args ...any) {
	emit(GetLogger().Fatal(), msg, args)
}

func emit(e *zerolog.Event, msg string, args []any) {
	if e == nil {
		return
	}
	if len(args) > 0 {
		e = e.Fields(normalize(args))
	}
	e.CallerSkipFrame(2).Msg(msg)
}

// normalize turns error values into strings so they render readably.
func normalize(args []any) []any {
	if len(args)%2 != 0 {
		args = append(args, "<missing>")
	}
	out := make([]any, len(args))
	for i, a := range args {
		if err, ok := a.(error); ok && i%2 == 1 {
			out[i] = err.Error()
			continue
		}
		out[i] = a
	}
	return out
}

// ============================================
// Loggers with extra fields
// ============================================

// With returns a child logger: logger.With("user_id", id).Info().Msg("login").
func With(args ...any) *zerolog.Logger {
	l := GetLogger().With().Fields(normalize(args)).Logger()
	return &l
}

func WithError(err error) *zerolog.Logger {
	l := GetLogger().With().Err(err).Logger()
	return &l
}

// ============================================
// Specialised loggers
// ============================================

// HTTPEntry is one served request.
type HTTPEntry struct {
	Method    string
	Path      string
	Status    int
	Duration  time.Duration
	Size      int
	ClientIP  string
	UserAgent string
}

// HTTPLog writes an access line carrying the ids in ctx. 5xx log at error
// level and 4xx at warn.
func HTTPLog(ctx context.Context, entry HTTPEntry) {
	l := FromContext(ctx)
	e, msg := l.Info(), "HTTP Request"
	switch {
	case entry.Status >= 500:
		e, msg = l.Error(), "HTTP Server Error"
	case entry.Status >= 400:
		e, msg = l.Warn(), "HTTP Client Error"
	}
	e.Str("method", entry.Method).
		Str("path", entry.Path).
		Int("status", entry.Status).
		Int64("duration_ms", entry.Duration.Milliseconds()).
		Int("size_bytes", entry.Size).
		Str("client_ip", entry.ClientIP).
		Str("user_agent", entry.UserAgent).
		Msg(msg)
}

func DBLog(operation, query string, duration time.Duration, err error) {
	if err != nil {
		GetLogger().Error().
			Str("operation", operation).
			Str("query", query).
			Int64("duration_ms", duration.Milliseconds()).
			Err(err).
			Msg("database operation failed")
		return
	}
	GetLogger().Debug().
		Str("operation", operation).
		Str("query", query).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("database operation")
}

func WorkerLog(worker, operation string, err error) {
	if err != nil {
		GetLogger().Error().Str("worker", worker).Str("operation", operation).Err(err).Msg("worker operation failed")
		return
	}
	GetLogger().Info().Str("worker", worker).Str("operation", operation).Msg("worker operation completed")
}
