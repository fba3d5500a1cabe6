// pkg/logging/logging.go
package logging

import (
	"fmt"
	"io"
	stdLog "log"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// logWriter stores the current log writer globally
var logWriter io.Writer

func init() {
	zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	logWriter = zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
}

// ConfigureGlobalLogging configures the global zerolog logger from the
// log.* configuration values. format is "text" (console writer) or
// "json"; file, when non-empty, redirects output to that path.
func ConfigureGlobalLogging(levelStr, format, file string) error {
	level := parseLogLevel(levelStr)
	zerolog.SetGlobalLevel(level)

	w, err := buildWriter(format, file)
	if err != nil {
		return err
	}
	logWriter = w

	logContext := zerolog.New(w).With().Timestamp()
	if level <= zerolog.DebugLevel {
		logContext = logContext.Caller()
	}

	log.Logger = logContext.Logger().Level(level)
	zerolog.DefaultContextLogger = &log.Logger

	// Route stdlib log output (http.Server internals and other callers
	// of the default logger) through zerolog as well.
	stdLog.SetFlags(0)
	stdLog.SetOutput(&stdLogWriter{logger: log.Logger})

	return nil
}

// stdLogWriter reformats stdlib log output as zerolog events so nothing
// bypasses the configured writer. Messages carry no level information,
// so they are logged at debug.
type stdLogWriter struct {
	logger zerolog.Logger
}

func (w *stdLogWriter) Write(p []byte) (int, error) {
	w.logger.Debug().Str("source", "stdlog").Msg(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

// SetLogWriter overrides the global log writer, mostly for tests.
func SetLogWriter(w io.Writer) {
	logWriter = w
	log.Logger = log.Logger.Output(w)
}

func buildWriter(format, file string) (io.Writer, error) {
	out := io.Writer(os.Stderr)
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", file, err)
		}
		out = f
	}

	switch strings.ToLower(format) {
	case "json":
		return out, nil
	default:
		return zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}, nil
	}
}

// parseLogLevel converts a string log level to zerolog.Level
func parseLogLevel(levelString string) zerolog.Level {
	if levelString == "" {
		levelString = "info"
	}

	level, err := zerolog.ParseLevel(strings.ToLower(levelString))
	if err != nil {
		log.Error().Err(err).
			Str("logLevel", levelString).
			Msg("Invalid log level provided. Defaulting to info level.")
		return zerolog.InfoLevel
	}
	return level
}
