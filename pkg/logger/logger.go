package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

var (
	once sync.Once
	log  zerolog.Logger
)

func configure(out io.Writer) {
	zerolog.TimeFieldFormat = timeFormat

	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: timeFormat,
	}

	log = zerolog.New(output).With().Timestamp().Logger()
}

// GetLoggerConfigured returns the process logger, setting the global level on first use
func GetLoggerConfigured(level zerolog.Level) *zerolog.Logger {
	once.Do(func() {
		configure(os.Stderr)
		zerolog.SetGlobalLevel(level)
	})
	return &log
}

// GetLogger returns the process logger
func GetLogger() *zerolog.Logger {
	once.Do(func() {
		configure(os.Stderr)
	})
	return &log
}

// ParseLevel maps a flag value onto a zerolog level
func ParseLevel(s string) (zerolog.Level, error) {
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q: %w", s, err)
	}
	return level, nil
}

// Nop returns a logger that discards everything
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
