package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the component logger. Dev gets a human-readable console
// writer, everything else structured JSON.
func New(env, component string) zerolog.Logger {
	if env == "dev" {
		writer := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(writer).With().Timestamp().Str("component", component).Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Str("component", component).Logger()
}
