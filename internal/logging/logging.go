// Package logging configures the global zerolog logger used by the binaries.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup sets the global level and output. Pretty selects a human readable
// console writer on stderr; otherwise JSON lines are written.
func Setup(debug, pretty bool) {
	setup(os.Stderr, debug, pretty)
}

func setup(out io.Writer, debug, pretty bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

// Quiet drops everything below warnings, for tests and batch output.
func Quiet() {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
}
