// Package logging is the zerolog setup shared by the catalog, its stores,
// the mirror sync and the command line.
//
// Components log through the package-level helpers or through a logger
// carried on a context:
//
//	ctx = logging.WithFile(ctx, "plan1.pdf")
//	logging.FromContext(ctx).Info().Str("category", "2D Plans").Msg("stored file")
package logging

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Nop discards everything.
var Nop = zerolog.Nop()

var defaultLogger = newDefaultLogger()

func newDefaultLogger() zerolog.Logger {
	level := levelFromEnv()
	zerolog.SetGlobalLevel(level)

	var w io.Writer = os.Stderr
	if stderrIsTerminal() && envOr(EnvFormat, "auto") != "json" {
		w = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
			NoColor:    os.Getenv("NO_COLOR") != "",
		}
	}

	logger := zerolog.New(w).Level(level).With().Timestamp().Logger()
	if level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}
	return logger
}

// Default returns the process-wide logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the process-wide logger, including zerolog's global one.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// New returns a timestamped logger writing to w at the global level.
func New(w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return zerolog.New(w).Level(zerolog.GlobalLevel()).With().Timestamp().Logger()
}

// With starts a child context of the default logger.
func With() zerolog.Context { return defaultLogger.With() }

// Debug starts a debug event on the default logger.
func Debug() *zerolog.Event { return defaultLogger.Debug() }

// Info starts an info event on the default logger.
func Info() *zerolog.Event { return defaultLogger.Info() }

// Warn starts a warn event on the default logger.
func Warn() *zerolog.Event { return defaultLogger.Warn() }

// Error starts an error event on the default logger.
func Error() *zerolog.Event { return defaultLogger.Error() }

// Fatal starts a fatal event; the process exits after it is written.
func Fatal() *zerolog.Event { return defaultLogger.Fatal() }

// Err starts an error event carrying err, or an info event when err is nil.
func Err(err error) *zerolog.Event { return defaultLogger.Err(err) }

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func levelFromEnv() zerolog.Level {
	raw := os.Getenv(EnvLevel)
	if raw == "" {
		if os.Getenv("DEBUG") != "" {
			return zerolog.DebugLevel
		}
		return zerolog.InfoLevel
	}
	return ParseLevel(raw)
}
