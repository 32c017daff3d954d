// Package xlog centralizes structured logging for the module on top of
// logrus, the way lx1036-code and xmysql-server standardize their services
// on a single package-level logrus instance instead of stdlib log.
package xlog

import (
	"os"

	"github.com/sirupsen/logrus"
)

// L is the module-wide logger. Callers that need a differently configured
// logger (e.g. tests wanting quiet output) can replace it with SetLevel or
// construct their own via New.
var L = New()

// New builds a logrus logger with the module's standard formatting: text
// output with full timestamps to stderr, level configurable via
// FSWAL_LOG_LEVEL.
func New() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	level := logrus.InfoLevel
	if s := os.Getenv("FSWAL_LOG_LEVEL"); s != "" {
		if parsed, err := logrus.ParseLevel(s); err == nil {
			level = parsed
		}
	}
	logger.SetLevel(level)
	return logger
}

// SetLevel adjusts the package logger's verbosity, mainly for tests that
// want to silence debug chatter or CLI flags that want -v/-vv.
func SetLevel(level logrus.Level) {
	L.SetLevel(level)
}

// WithFields is a shorthand for L.WithFields, kept here so call sites don't
// need to import logrus directly just to build field sets.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return L.WithFields(fields)
}
