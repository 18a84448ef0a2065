package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

// New builds the service logger from LOG_LEVEL and LOG_FORMAT (json or text).
func New() *logrus.Logger {
	l := NewWithOutput(os.Stdout, os.Getenv("LOG_LEVEL"))
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "text") {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: timeFormat})
	}
	return l
}

// NewWithOutput builds the JSON logger used across the service. Unknown levels are info.
func NewWithOutput(w io.Writer, level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: timeFormat})

	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil || lvl < logrus.ErrorLevel {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

// Discard returns a logger that writes nowhere, for tests.
func Discard() *logrus.Logger {
	return NewWithOutput(io.Discard, "error")
}
