// Package logging builds the zerolog loggers used by the commands and the
// search service.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config selects the log level and output format.
type Config struct {
	Level   string    // debug, info, warn, error (default info)
	Format  string    // "console" or "json" (default console)
	Output  io.Writer // Defaults to os.Stderr
	NoColor bool      // Disable ANSI colours in console output
}

// DefaultConfig returns human-readable info-level logging on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "console",
	}
}

// New creates a logger from cfg.
func New(cfg Config) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		var err error
		level, err = zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	switch cfg.Format {
	case "", "console":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly, NoColor: cfg.NoColor}
	case "json":
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q", cfg.Format)
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

// Setup builds a logger from cfg and installs it as the global logger.
func Setup(cfg Config) (zerolog.Logger, error) {
	logger, err := New(cfg)
	if err != nil {
		return logger, err
	}
	log.Logger = logger
	return logger, nil
}
