// Package logging wraps zerolog with the component-scoped child-logger
// convention used throughout this SDK: every package that touches
// subprocess I/O or protocol state tags its records with a "component"
// field rather than writing to a bare global logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the process-wide base logger. Init replaces it; components
// derive their own scoped logger from it via WithComponent.
var Logger zerolog.Logger

// Level is a logging verbosity, matching zerolog's own level names.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// zerologLevels maps this package's Level names to zerolog's, so adding
// a level is a one-line table entry rather than another switch case.
var zerologLevels = map[Level]zerolog.Level{
	DebugLevel: zerolog.DebugLevel,
	InfoLevel:  zerolog.InfoLevel,
	WarnLevel:  zerolog.WarnLevel,
	ErrorLevel: zerolog.ErrorLevel,
}

// Config configures the process-wide logger.
type Config struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer
}

// Init installs the process-wide logger. Safe to call more than once
// (e.g. from tests); the last call wins. An unrecognized Level falls
// back to InfoLevel rather than erroring, since Init commonly runs
// before any flag/config validation has had a chance to reject a bad
// value.
func Init(cfg Config) {
	level, ok := zerologLevels[cfg.Level]
	if !ok {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	Logger = newLogger(cfg.JSONOutput, output)
}

// newLogger builds the base logger for either JSON or human-readable
// console output, both timestamped.
func newLogger(jsonOutput bool, output io.Writer) zerolog.Logger {
	if jsonOutput {
		return zerolog.New(output).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        output,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
}

func init() {
	// A usable default so packages that never call Init (e.g. library
	// consumers who configure logging themselves) still get output
	// instead of a zero-value, no-op logger.
	Init(Config{Level: InfoLevel})
}

// WithComponent returns a child logger tagged with the given component
// name, e.g. WithComponent("client"), WithComponent("facade").
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}
