// Package logger provides centralized logging for the application.
// File: logger/logger.go
package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// ------------------- global logger -------------------

// base is the shared zerolog logger. Until InitLogger runs it writes to stdout
// only, which keeps tests from creating log files.
var base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
	With().Timestamp().Caller().Logger()

// Info starts an info level event.
func Info() *zerolog.Event { return base.Info() }

// Warn starts a warn level event.
func Warn() *zerolog.Event { return base.Warn() }

// Error starts an error level event.
func Error() *zerolog.Event { return base.Error() }

// Debug starts a debug level event.
func Debug() *zerolog.Event { return base.Debug() }

// Logger exposes the underlying logger for middleware that builds its own events.
func Logger() *zerolog.Logger { return &base }

// ------------------- logger initialization -------------------

// InitLogger creates or reinitializes the logging system. It:
// - Ensures the log directory exists.
// - Creates a timestamped log file in it.
// - Writes logs to both the file (JSON) and stdout (console format).
func InitLogger(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	logFileName := filepath.Join(dir, time.Now().Format("2006-01-02_15-04-05")+".log")
	file, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) // #nosec
	if err != nil {
		return err
	}

	console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	base = zerolog.New(zerolog.MultiLevelWriter(console, file)).
		With().Timestamp().Caller().Logger()
	return nil
}

// SetLogLevel drops debug output in production and keeps it everywhere else.
func SetLogLevel(env string) {
	if env == "production" {
		base = base.Level(zerolog.InfoLevel)
		return
	}
	base = base.Level(zerolog.DebugLevel)
}

// SetOutput redirects all logging to w. Tests use it to capture or silence output.
func SetOutput(w io.Writer) {
	base = base.Output(w)
}
