// Package logging provides structured component loggers for pagelens.
// Log lines go to a size-rotated file under ~/.pagelens/logs; if the log
// directory cannot be created the logger falls back to stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logFileName   = "pagelens.log"
	maxLogSizeMB  = 20
	maxLogBackups = 3
)

var (
	// Session ID shared by every component logger in this process.
	sessionID     string
	sessionIDOnce sync.Once

	logWriter io.Writer
	initOnce  sync.Once
	initErr   error
)

func getSessionID() string {
	sessionIDOnce.Do(func() {
		sessionID = uuid.New().String()
	})
	return sessionID
}

// initLogWriter sets up the shared rotated log file.
func initLogWriter() error {
	initOnce.Do(func() {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			initErr = fmt.Errorf("failed to get home directory: %w", err)
			return
		}

		dir := filepath.Join(homeDir, ".pagelens", "logs")
		if err := os.MkdirAll(dir, 0750); err != nil {
			initErr = fmt.Errorf("failed to create log directory: %w", err)
			return
		}

		logWriter = &lumberjack.Logger{
			Filename:   filepath.Join(dir, logFileName),
			MaxSize:    maxLogSizeMB,
			MaxBackups: maxLogBackups,
			Compress:   true,
		}
	})
	return initErr
}

// Logger is a component-scoped logger. All methods are safe for concurrent
// use.
type Logger struct {
	component string
	zl        zerolog.Logger
}

// NewLogger creates a logger for a specific component. If file logging
// cannot be initialized the returned logger writes to stderr and the error
// is returned alongside it so callers can warn about the fallback.
func NewLogger(component string) (*Logger, error) {
	var w io.Writer = os.Stderr
	err := initLogWriter()
	if err == nil {
		w = logWriter
	}

	zl := zerolog.New(w).With().
		Timestamp().
		Str("component", component).
		Str("session", getSessionID()).
		Logger()

	return &Logger{component: component, zl: zl}, err
}

// Discard returns a logger that drops everything. Handy default for tests
// and optional collaborators.
func Discard() *Logger {
	return &Logger{component: "discard", zl: zerolog.Nop()}
}

// Printf logs at info level, mirroring the historical catch-all method.
func (l *Logger) Printf(format string, v ...interface{}) {
	l.zl.Info().Msgf(format, v...)
}

// Debugf logs a debug-level message.
func (l *Logger) Debugf(format string, v ...interface{}) {
	l.zl.Debug().Msgf(format, v...)
}

// Infof logs an info-level message.
func (l *Logger) Infof(format string, v ...interface{}) {
	l.zl.Info().Msgf(format, v...)
}

// Warnf logs a warning-level message.
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.zl.Warn().Msgf(format, v...)
}

// Errorf logs an error-level message.
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.zl.Error().Msgf(format, v...)
}

// SessionID returns the process-wide logging session ID.
func (l *Logger) SessionID() string {
	return getSessionID()
}

// GetSessionID returns the current global session ID.
func GetSessionID() string {
	return getSessionID()
}
