// Package logger builds the zerolog logger shared by every component.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"household-planner/internal/config"
)

// New returns a JSON logger for prod and dev and a console logger for local.
// Unknown envs fall back to prod settings.
func New(env string) zerolog.Logger {
	return NewWithWriter(env, os.Stdout)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(env string, out io.Writer) zerolog.Logger {
	zerolog.TimestampFieldName = "timestamp"

	level := zerolog.InfoLevel
	w := out
	switch env {
	case config.EnvDev:
		level = zerolog.DebugLevel
	case config.EnvLocal:
		level = zerolog.TraceLevel

		consoleWriter := zerolog.NewConsoleWriter()
		consoleWriter.TimeFormat = time.DateTime
		consoleWriter.Out = out
		w = consoleWriter
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Caller().
		Int("pid", os.Getpid()).
		Logger()
}
