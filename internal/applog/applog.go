// Package applog is a thin logging facade backed by zerolog.
//
// By default it wraps zerolog's global logger; callers that want a
// different sink (a file, a different level, structured test output) call
// Set. Every other package logs through here rather than importing
// zerolog directly, so the sink can be swapped in one place.
package applog

import (
	"os"

	"github.com/rs/zerolog"
	global "github.com/rs/zerolog/log"
)

var log = &global.Logger

// Set configures the logger used by the package-level functions. Unsafe
// to call concurrently with the other functions in this package.
func Set(l *zerolog.Logger) {
	log = l
}

// InitFromEnv applies the CLI's environment contract: RUST_LOG
// and RUST_BACKTRACE default to fixed values when unset, and RUST_LOG's
// level name sets zerolog's global level. Call once, at process startup.
func InitFromEnv() {
	if os.Getenv("RUST_BACKTRACE") == "" {
		os.Setenv("RUST_BACKTRACE", "1")
	}
	if os.Getenv("RUST_LOG") == "" {
		os.Setenv("RUST_LOG", "info")
	}

	level, err := zerolog.ParseLevel(os.Getenv("RUST_LOG"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

// Trace starts a new message at the trace level.
func Trace() *zerolog.Event { return log.Trace() }

// Debug starts a new message at the debug level.
func Debug() *zerolog.Event { return log.Debug() }

// Info starts a new message at the info level.
func Info() *zerolog.Event { return log.Info() }

// Warn starts a new message at the warn level.
func Warn() *zerolog.Event { return log.Warn() }

// Error starts a new message at the error level.
func Error() *zerolog.Event { return log.Error() }
