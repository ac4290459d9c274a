// Package logger builds the process logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config selects the log format and level.
type Config struct {
	// Dev switches to console output at debug level.
	Dev bool

	// Level overrides the default level ("info", or "debug" in dev).
	Level string

	// Out is where logs are written. Default: stderr
	Out io.Writer
}

// Setup returns the root logger for cfg.
func Setup(cfg Config) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if cfg.Dev {
		level = zerolog.DebugLevel
	}
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Caller().Logger()

	if cfg.Dev {
		logger = logger.Output(zerolog.ConsoleWriter{Out: out, FormatTimestamp: func(i any) string {
			return time.Now().Format(time.RFC3339)
		}}).Level(level).With().Stack().Logger()
	}

	return logger, nil
}
