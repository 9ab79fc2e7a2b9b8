// Package logger provides structured logging for the intake service.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LoggingConfig controls output of a Logger built with New.
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
	Output string // "stdout", "stderr" or a file path
}

// Logger is a thin wrapper over a logrus entry so services can carry a
// component name and chain fields.
type Logger struct {
	*logrus.Entry
}

// New builds a logger from configuration.
func New(cfg LoggingConfig) *Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	switch cfg.Output {
	case "", "stdout":
		l.SetOutput(os.Stdout)
	case "stderr":
		l.SetOutput(os.Stderr)
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			l.SetOutput(os.Stdout)
			l.WithError(err).Warn("falling back to stdout")
		} else {
			l.SetOutput(f)
		}
	}

	return &Logger{Entry: logrus.NewEntry(l)}
}

// NewDefault returns an info-level text logger tagged with a component name.
func NewDefault(component string) *Logger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &Logger{Entry: l.WithField("component", component)}
}

// WithField returns a logger with the field attached.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{Entry: l.Entry.WithField(key, value)}
}

// WithError returns a logger with the error attached.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{Entry: l.Entry.WithError(err)}
}

// SetOutput redirects log output, primarily for tests.
func (l *Logger) SetOutput(w io.Writer) {
	l.Entry.Logger.SetOutput(w)
}
