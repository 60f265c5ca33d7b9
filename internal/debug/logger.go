package debug

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	writer io.Writer = io.Discard
	logger           = zerolog.Nop()
)

// SetOutput sets the debug output destination
// The terminal owns stdout while the UI runs, so logs only go to w
func SetOutput(w io.Writer) {
	writer = w
	if w == nil || w == io.Discard {
		writer = io.Discard
		logger = zerolog.Nop()
		return
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	logger = zerolog.New(w).With().Timestamp().Str("app", "refillmap").Logger()
}

// SetLevel sets the minimum level written by Logger
func SetLevel(level string) {
	logger = logger.Level(ParseLevel(level))
}

// Logger returns the structured logger behind Log
func Logger() *zerolog.Logger {
	return &logger
}

// Log writes a debug message
func Log(format string, args ...interface{}) {
	logger.Debug().Msgf(format, args...)
}

// Enabled returns true if debug logging is enabled
func Enabled() bool {
	return writer != io.Discard && logger.GetLevel() <= zerolog.DebugLevel
}

// ParseLevel maps a config string to a zerolog level, defaulting to info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
