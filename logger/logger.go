package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// New constructs a zerolog logger for the given level and format (json or console).
func New(level, format string) (zerolog.Logger, error) {
	return NewWithWriter(os.Stdout, level, format)
}

// NewWithWriter is New writing to out. An empty level means info.
func NewWithWriter(out io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Logger{}, errors.Wrap(err, "log level")
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var base zerolog.Logger
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		base = zerolog.New(out)
	case "console", "":
		base = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	default:
		return zerolog.Logger{}, errors.Errorf("unsupported log format %q", format)
	}
	return base.With().Timestamp().Logger().Level(lvl), nil
}
