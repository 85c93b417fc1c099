// Package logging builds the zap loggers used by the platform glue.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultTag is the logcat tag used when Options.Tag is empty.
const DefaultTag = "PCSX2"

// Options controls logger construction.
type Options struct {
	Tag     string // logcat tag
	Verbose bool   // enable debug level
	Logcat  bool   // route output to the Android log instead of stderr
}

// New builds a logger. With Logcat set on Android, entries go to
// __android_log_write under Tag; everywhere else (or if liblog cannot be
// loaded) a zap development or production config writing to stderr is used.
func New(opts Options) (*zap.Logger, error) {
	if opts.Tag == "" {
		opts.Tag = DefaultTag
	}

	level := zapcore.InfoLevel
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	if opts.Logcat {
		w, err := openLogcat()
		if err == nil {
			return zap.New(NewLogcatCore(w, opts.Tag, level)), nil
		}
		// Fall through to stderr; the caller still gets a usable logger.
		fallback, buildErr := build(level, opts.Verbose)
		if buildErr != nil {
			return nil, buildErr
		}
		fallback.Warn("logcat unavailable, logging to stderr", zap.Error(err))
		return fallback, nil
	}

	return build(level, opts.Verbose)
}

func build(level zapcore.Level, verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if verbose {
		config = zap.NewDevelopmentConfig()
	}
	config.Level = zap.NewAtomicLevelAt(level)
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
