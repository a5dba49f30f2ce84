package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

func New(env string) zerolog.Logger {
	return NewWithWriter(env, os.Stdout)
}

// NewWithWriter writes human-readable output in dev and JSON everywhere else.
func NewWithWriter(env string, w io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	if env == "dev" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	l := zerolog.New(w).With().Timestamp().Logger()
	if env == "dev" {
		l = l.Level(zerolog.DebugLevel)
	} else {
		l = l.Level(zerolog.InfoLevel)
	}
	return l
}
