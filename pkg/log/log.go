package log

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the process-wide logger the CLI configures and hands out.
// Engine packages never read it: they receive child loggers at
// construction, usually built with WithComponent.
var Logger = zerolog.Nop()

// Level names a verbosity threshold.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// ParseLevel maps a configuration string onto a zerolog level. Unknown
// strings fall back to info rather than erroring, so a typo in a config
// file changes the log level instead of stopping the process.
func ParseLevel(s string) zerolog.Level {
	switch Level(strings.ToLower(s)) {
	case DebugLevel:
		return zerolog.DebugLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Config holds logging configuration.
type Config struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer // nil means stdout
}

// New builds a logger from cfg without touching the global. Tests and
// embedders that want their own logger use this directly.
func New(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	if !cfg.JSONOutput {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).
		Level(ParseLevel(string(cfg.Level))).
		With().Timestamp().Logger()
}

// Init installs the global logger. Called once by the CLI before any
// component loggers are derived.
func Init(cfg Config) {
	zerolog.SetGlobalLevel(ParseLevel(string(cfg.Level)))
	Logger = New(cfg)
}

// WithComponent derives a child of the global logger tagged with a
// component name (queue, pool, worker, router). The CLI builds the
// loggers it injects into the engine with this.
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// The helpers below tag an injected logger with engine context. They
// deliberately take the logger as an argument: engine packages hold
// injected loggers and must not reach for the global.

// WithWorker tags a logger with a worker identity.
func WithWorker(logger zerolog.Logger, worker string) zerolog.Logger {
	return logger.With().Str("worker", worker).Logger()
}

// WithJob tags a logger with a job identity.
func WithJob(logger zerolog.Logger, jobID string) zerolog.Logger {
	return logger.With().Str("job_id", jobID).Logger()
}

// WithTopic tags a logger with a routing key.
func WithTopic(logger zerolog.Logger, topic string) zerolog.Logger {
	return logger.With().Str("topic", topic).Logger()
}

// Convenience wrappers over the global logger for the CLI's own
// messages.

func Info(msg string) {
	Logger.Info().Msg(msg)
}

func Errorf(msg string, err error) {
	Logger.Error().Err(err).Msg(msg)
}
