package checker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// =============================================================================
// LOGGER
// =============================================================================

// Logger is the operational logger used by the pipeline. It is separate from
// the report lines, which are the accountant-facing output.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// slogLogger formats printf-style messages onto a slog.Logger.
type slogLogger struct {
	logger *slog.Logger
}

// NewLogger returns a Logger writing slog text records at or above level.
func NewLogger(w io.Writer, level slog.Level) Logger {
	return FromSlog(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// FromSlog wraps an existing slog.Logger.
func FromSlog(l *slog.Logger) Logger {
	return &slogLogger{logger: l}
}

// ParseLevel maps a config level name to a slog level. Unknown names
// select info.
func ParseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (l *slogLogger) log(level slog.Level, msg string, args ...interface{}) {
	if !l.logger.Enabled(context.Background(), level) {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	l.logger.Log(context.Background(), level, msg)
}

func (l *slogLogger) Debug(msg string, args ...interface{}) { l.log(slog.LevelDebug, msg, args...) }
func (l *slogLogger) Info(msg string, args ...interface{})  { l.log(slog.LevelInfo, msg, args...) }
func (l *slogLogger) Warn(msg string, args ...interface{})  { l.log(slog.LevelWarn, msg, args...) }
func (l *slogLogger) Error(msg string, args ...interface{}) { l.log(slog.LevelError, msg, args...) }

// nopLogger discards everything.
type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
