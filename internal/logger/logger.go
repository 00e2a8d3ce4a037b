// Package logger wraps zap logger construction for the application.
package logger

import (
	"go.uber.org/zap"
)

// Logger wraps a zap.Logger so callers can initialize it after construction.
type Logger struct {
	// Log is the underlying structured logger.
	Log *zap.Logger
}

// New returns a Logger with a no-op zap logger until Init is called.
func New() *Logger {
	return &Logger{Log: zap.NewNop()}
}

// Init builds a production zap logger at the given level and replaces
// the wrapped logger. Returns an error if the level cannot be parsed
// or the logger cannot be built.
func (l *Logger) Init(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl

	log, err := cfg.Build()
	if err != nil {
		return err
	}

	l.Log = log
	return nil
}
