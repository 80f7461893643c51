// Package logging configures slog for the desktop shell and adapts it to
// the Wails logger interface.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/wailsapp/wails/v2/pkg/logger"
)

// ParseLevel maps a config level name to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a logger writing to w in the given format ("text" or "json").
func New(w io.Writer, level, format string) *slog.Logger {
	lvl := ParseLevel(level)

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	} else {
		handler = tint.NewHandler(w, &tint.Options{Level: lvl})
	}
	return slog.New(handler)
}

// Setup configures the global slog logger on stderr and returns it.
func Setup(level, format string) *slog.Logger {
	l := New(os.Stderr, level, format)
	slog.SetDefault(l)
	return l
}

// WailsLevel maps a config level name to the Wails runtime log level.
func WailsLevel(level string) logger.LogLevel {
	switch ParseLevel(level) {
	case slog.LevelDebug:
		return logger.DEBUG
	case slog.LevelWarn:
		return logger.WARNING
	case slog.LevelError:
		return logger.ERROR
	default:
		return logger.INFO
	}
}

// WailsLogger routes Wails runtime logs into slog.
type WailsLogger struct {
	log *slog.Logger
}

var _ logger.Logger = (*WailsLogger)(nil)

// NewWailsLogger wraps l for use as options.App.Logger.
func NewWailsLogger(l *slog.Logger) *WailsLogger {
	return &WailsLogger{log: l.With("component", "wails")}
}

func (w *WailsLogger) emit(level slog.Level, message string) {
	w.log.Log(context.Background(), level, strings.TrimRight(message, "\n"))
}

// Print logs at info level.
func (w *WailsLogger) Print(message string) { w.emit(slog.LevelInfo, message) }

// Trace logs at debug level; slog has no trace level.
func (w *WailsLogger) Trace(message string) { w.emit(slog.LevelDebug, message) }

func (w *WailsLogger) Debug(message string)   { w.emit(slog.LevelDebug, message) }
func (w *WailsLogger) Info(message string)    { w.emit(slog.LevelInfo, message) }
func (w *WailsLogger) Warning(message string) { w.emit(slog.LevelWarn, message) }
func (w *WailsLogger) Error(message string)   { w.emit(slog.LevelError, message) }

// Fatal logs at error level and exits, matching the Wails default logger.
func (w *WailsLogger) Fatal(message string) {
	w.emit(slog.LevelError, message)
	os.Exit(1)
}
