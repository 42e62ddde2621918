// Package logger is a thin facade over log/slog so call sites stay terse
// and the output destination can be swapped once at process setup.
package logger

import (
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

var base atomic.Pointer[slog.Logger]

func init() {
	base.Store(slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

// Setup replaces the process-wide logger. Call once before serving.
func Setup(w io.Writer, level slog.Level) {
	base.Store(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func Debug(msg string, args ...any) { base.Load().Debug(msg, args...) }
func Info(msg string, args ...any)  { base.Load().Info(msg, args...) }
func Warn(msg string, args ...any)  { base.Load().Warn(msg, args...) }
func Error(msg string, args ...any) { base.Load().Error(msg, args...) }
