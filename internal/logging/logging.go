// Package logging builds the one process-wide zerolog.Logger each service
// constructs at startup and passes down explicitly to its collaborators.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a structured logger. format "pretty" gets a human-readable
// console writer (local development); anything else gets JSON, suitable
// for log aggregation in production.
func New(service, level, format string) zerolog.Logger {
	var output io.Writer = os.Stdout
	if format == "pretty" {
		output = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	zerolog.SetGlobalLevel(parseLevel(level))

	return zerolog.New(output).With().
		Timestamp().
		Str("service", service).
		Logger()
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
