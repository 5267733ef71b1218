package logger

import (
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger is a component-scoped logger. Every package obtains its own via
// GetLogger().WithComponent(name) so log lines can be traced back to the
// part of the proxy that emitted them.
type Logger struct {
	entry *logrus.Entry
}

var (
	base *logrus.Logger
	once sync.Once
)

// Init configures the process-wide logger. The level string accepts the
// usual logrus names (debug, info, warn, error); anything else falls back
// to info. Safe to call more than once; only the first call wins.
func Init(level string) {
	once.Do(func() {
		base = logrus.New()
		base.SetOutput(os.Stdout)
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		})

		parsed, err := logrus.ParseLevel(strings.ToLower(level))
		if err != nil {
			parsed = logrus.InfoLevel
		}
		base.SetLevel(parsed)
	})
}

// GetLogger returns the default logger instance.
func GetLogger() *Logger {
	if base == nil {
		Init(os.Getenv("LOG_LEVEL"))
	}
	return &Logger{entry: logrus.NewEntry(base)}
}

// WithComponent creates a new logger scoped to the given component name.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{entry: l.entry.WithField("component", component)}
}

// WithError attaches an error to subsequent log lines.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{entry: l.entry.WithError(err)}
}

// Debug logs debug level messages.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

// Info logs info level messages.
func (l *Logger) Info(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

// Warn logs warning level messages.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

// Error logs error level messages.
func (l *Logger) Error(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

// Fatal logs fatal level messages and exits.
func (l *Logger) Fatal(format string, args ...interface{}) {
	l.entry.Fatalf(format, args...)
}
