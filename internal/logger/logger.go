package logger

import (
	"io"
	"log/slog"
	"os"
	"time"
)

var Logger = slog.Default()

// Init installs a text handler on stdout as the default slog logger. Debug
// records are emitted only when debug is set.
func Init(debug bool) {
	Logger = newLogger(os.Stdout, debug)
	slog.SetDefault(Logger)
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: utcTime,
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// utcTime prints record timestamps in UTC, matching digest dates.
func utcTime(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey && len(groups) == 0 {
		a.Value = slog.StringValue(a.Value.Time().UTC().Format(time.RFC3339))
	}
	return a
}

func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}
