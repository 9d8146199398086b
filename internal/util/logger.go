package util

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps a zerolog logger with printf-style helpers.
type Logger struct {
	zl   zerolog.Logger
	file *lumberjack.Logger
}

var (
	mu            sync.RWMutex
	defaultLogger *Logger
)

// GetLogger returns the default logger instance.
func GetLogger() *Logger {
	mu.RLock()
	l := defaultLogger
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if defaultLogger == nil {
		defaultLogger = NewLogger(zerolog.InfoLevel, "", true)
	}
	return defaultLogger
}

// NewLogger creates a logger at level writing to the console (stderr) when
// console is set and to a rotated file when filePath is not empty.
func NewLogger(level zerolog.Level, filePath string, console bool) *Logger {
	l := &Logger{}

	var writers []io.Writer
	if console {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.DateTime,
		})
	}

	if filePath != "" {
		if err := EnsureDir(filepath.Dir(filePath)); err == nil {
			l.file = &lumberjack.Logger{
				Filename:   filePath,
				MaxSize:    5, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
			}
			writers = append(writers, l.file)
		}
	}

	var w io.Writer = io.Discard
	if len(writers) > 0 {
		w = zerolog.MultiLevelWriter(writers...)
	}

	l.zl = zerolog.New(w).Level(level).With().Timestamp().Logger()
	return l
}

// ParseLevel parses a string log level.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Close closes the log file if open.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.zl.Debug().Msg(fmt.Sprintf(format, args...))
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.zl.Info().Msg(fmt.Sprintf(format, args...))
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.zl.Warn().Msg(fmt.Sprintf(format, args...))
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.zl.Error().Msg(fmt.Sprintf(format, args...))
}

// Debug logs a debug message using the default logger.
func Debug(format string, args ...interface{}) {
	GetLogger().Debug(format, args...)
}

// Info logs an info message using the default logger.
func Info(format string, args ...interface{}) {
	GetLogger().Info(format, args...)
}

// Warn logs a warning message using the default logger.
func Warn(format string, args ...interface{}) {
	GetLogger().Warn(format, args...)
}

// Error logs an error message using the default logger.
func Error(format string, args ...interface{}) {
	GetLogger().Error(format, args...)
}

// InitLogger replaces the default logger. The terminal UI passes
// console=false so log lines do not tear the screen.
func InitLogger(level string, filePath string, console bool) {
	l := NewLogger(ParseLevel(level), filePath, console)

	mu.Lock()
	old := defaultLogger
	defaultLogger = l
	mu.Unlock()

	if old != nil {
		old.Close()
	}
}
