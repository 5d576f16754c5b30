package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// New builds the process logger. It also sets zerolog's global
// TimeFieldFormat to Unix seconds, which every logger in the process shares.
func New() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Logger()

	logger = logger.Level(levelFromEnv())

	return logger
}

// levelFromEnv runs before config is loaded, so it is the one place that
// reads LOG_LEVEL directly.
func levelFromEnv() zerolog.Level {
	level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
