// Package log is the leveled logger used across the renderer. It keeps a
// small package-level API so call sites stay terse, and delegates formatting,
// level filtering and structured fields to logrus.
package log

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogLevel defines the severity of a log message.
type LogLevel uint32

// Constants for log levels.
const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a string (case-insensitive) to a LogLevel.
// Returns LevelInfo and false if the string is not recognized.
func ParseLevel(levelStr string) (LogLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "DEBUG":
		return LevelDebug, true
	case "INFO":
		return LevelInfo, true
	case "WARN", "WARNING":
		return LevelWarn, true
	case "ERROR":
		return LevelError, true
	case "FATAL":
		return LevelFatal, true
	default:
		return LevelInfo, false
	}
}

func (l LogLevel) logrus() logrus.Level {
	switch l {
	case LevelDebug:
		return logrus.DebugLevel
	case LevelWarn:
		return logrus.WarnLevel
	case LevelError:
		return logrus.ErrorLevel
	case LevelFatal:
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

// Fields are structured key/value pairs attached to a log line.
type Fields = logrus.Fields

var logger = logrus.New()

func init() {
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000000",
	})
	SetLevel(LevelInfo)
}

// SetLevel sets the global logging level.
func SetLevel(level LogLevel) {
	logger.SetLevel(level.logrus())
}

// GetLevel returns the current global logging level.
func GetLevel() LogLevel {
	switch logger.GetLevel() {
	case logrus.DebugLevel, logrus.TraceLevel:
		return LevelDebug
	case logrus.WarnLevel:
		return LevelWarn
	case logrus.ErrorLevel:
		return LevelError
	case logrus.FatalLevel, logrus.PanicLevel:
		return LevelFatal
	default:
		return LevelInfo
	}
}

// SetOutput redirects all log output.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// Enabled reports whether a message at level would be written.
func Enabled(level LogLevel) bool {
	return logger.IsLevelEnabled(level.logrus())
}

// WithFields returns an entry that prefixes every line with fields.
// Components keep one around, e.g. log.WithFields(log.Fields{"component": "framer"}).
func WithFields(fields Fields) *logrus.Entry {
	return logger.WithFields(fields)
}

// Debugf logs a formatted debug message.
func Debugf(format string, v ...any) { logger.Debugf(format, v...) }

// Infof logs a formatted info message.
func Infof(format string, v ...any) { logger.Infof(format, v...) }

// Warnf logs a formatted warning message.
func Warnf(format string, v ...any) { logger.Warnf(format, v...) }

// Errorf logs a formatted error message.
func Errorf(format string, v ...any) { logger.Errorf(format, v...) }

// Fatalf logs a formatted fatal message and exits the application.
func Fatalf(format string, v ...any) { logger.Fatalf(format, v...) }

// Debug logs a debug message.
func Debug(v ...any) { logger.Debug(v...) }

// Info logs an info message.
func Info(v ...any) { logger.Info(v...) }

// Warn logs a warning message.
func Warn(v ...any) { logger.Warn(v...) }

// Error logs an error message.
func Error(v ...any) { logger.Error(v...) }

// Fatal logs a fatal message and exits the application.
func Fatal(v ...any) { logger.Fatal(v...) }
