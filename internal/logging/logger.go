package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New creates a structured logger appropriate for the environment.
// Production writes JSON, anything else writes human-readable console output.
func New(env, level string) (zerolog.Logger, error) {
	return NewWithWriter(os.Stdout, env, level)
}

// NewWithWriter is New with an explicit sink
func NewWithWriter(w io.Writer, env, level string) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("parsing log level %q: %w", level, err)
		}
		lvl = parsed
	}

	out := w
	if env != "production" {
		out = zerolog.ConsoleWriter{Out: w, NoColor: w != os.Stdout}
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}
