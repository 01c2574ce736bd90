package commands

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

var logger = newLogger()

// newLogger builds the command logger: human-readable console output on
// a terminal, plain JSON lines when redirected.
func newLogger() zerolog.Logger {
	out := io.Writer(os.Stderr)
	if term.IsTerminal(int(os.Stderr.Fd())) {
		out = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	return zerolog.New(out).With().Timestamp().Logger()
}
