// Package logging provides the zap logger shared by the host programs.
package logging

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	sugar *zap.SugaredLogger
	once  sync.Once
)

// Init initializes the global sugared logger from LOG_LEVEL and redirects the
// standard library logger to zap. It's safe to call multiple times.
func Init() *zap.SugaredLogger {
	once.Do(func() {
		logger := New(os.Getenv("LOG_LEVEL"))
		_ = zap.RedirectStdLog(logger)
		sugar = logger.Sugar()
	})
	return sugar
}

// Sugar returns the global sugared logger, initializing it if needed.
func Sugar() *zap.SugaredLogger { return Init() }

// Named returns a child of the global logger for one component.
func Named(name string) *zap.SugaredLogger { return Init().Named(name) }

// New builds a logger for the given level name. "debug" selects the
// development encoder; anything else the production one at the parsed level
// (info when the name is empty or unknown).
func New(level string) *zap.Logger {
	level = strings.ToLower(strings.TrimSpace(level))

	var cfg zap.Config
	if level == "debug" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		if lvl, err := zapcore.ParseLevel(level); err == nil && level != "" {
			cfg.Level = zap.NewAtomicLevelAt(lvl)
		}
	}

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// Sync flushes buffered log entries.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
