// ABOUTME: Structured logger construction.
// ABOUTME: Builds a zap production logger with a configurable level and encoding.

package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger at level ("debug", "info", "warn", "error") using
// format "json" or "console".
func New(level, format string) (*zap.Logger, error) {
	logger, _, err := NewWithLevel(level, format)
	return logger, err
}

// NewWithLevel is New that also returns the level handle, so the level can
// change while the logger is in use.
func NewWithLevel(level, format string) (*zap.Logger, zap.AtomicLevel, error) {
	atom := zap.NewAtomicLevel()
	if err := SetLevel(atom, level); err != nil {
		return nil, atom, err
	}

	config := zap.NewProductionConfig()
	config.Level = atom
	switch format {
	case "", "json":
		config.Encoding = "json"
	case "console":
		config.Encoding = "console"
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	default:
		return nil, atom, fmt.Errorf("unknown log format %q", format)
	}
	// Keep stdout free for command output.
	config.OutputPaths = []string{"stderr"}

	logger, err := config.Build()
	return logger, atom, err
}

func SetLevel(atom zap.AtomicLevel, level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	atom.SetLevel(lvl)
	return nil
}
