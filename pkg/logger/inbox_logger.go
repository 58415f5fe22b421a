package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config for logger
type Config struct {
	Level   string
	Output  io.Writer
	Service string
	Pretty  bool
}

// Logger is a thin wrapper around zerolog carrying bound fields
type Logger struct {
	zl zerolog.Logger
}

var (
	defaultLogger *Logger
	once          sync.Once
)

func build(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.Service == "" {
		cfg.Service = "inbox"
	}

	out := cfg.Output
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: time.RFC3339}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	zl := zerolog.New(out).Level(level).With().
		Timestamp().
		Str("service", cfg.Service).
		Logger()
	return &Logger{zl: zl}
}

// Init initializes the default logger
func Init(cfg Config) {
	once.Do(func() {
		defaultLogger = build(cfg)
	})
}

// Default returns the default logger
func Default() *Logger {
	if defaultLogger == nil {
		Init(Config{})
	}
	return defaultLogger
}

// New creates a new logger instance
func New(cfg Config) *Logger {
	return build(cfg)
}

// WithField returns a new logger with an additional field
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{zl: l.zl.With().Interface(key, value).Logger()}
}

// WithFields returns a new logger with additional fields
func (l *Logger) WithFields(fields map[string]any) *Logger {
	ctx := l.zl.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &Logger{zl: ctx.Logger()}
}

// WithError adds error information
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return &Logger{zl: l.zl.With().Err(err).Logger()}
}

// WithDuration adds duration in milliseconds
func (l *Logger) WithDuration(d time.Duration) *Logger {
	return l.WithField("duration_ms", float64(d.Microseconds())/1000.0)
}

// Log methods
func (l *Logger) Debug(msg string, args ...any) { l.zl.Debug().Msgf(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.zl.Info().Msgf(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.zl.Warn().Msgf(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.zl.Error().Msgf(msg, args...) }
func (l *Logger) Fatal(msg string, args ...any) { l.zl.Fatal().Msgf(msg, args...) }

// Package-level functions using default logger
func Debug(msg string, args ...any) { Default().Debug(msg, args...) }
func Info(msg string, args ...any)  { Default().Info(msg, args...) }
func Warn(msg string, args ...any)  { Default().Warn(msg, args...) }
func Error(msg string, args ...any) { Default().Error(msg, args...) }
func Fatal(msg string, args ...any) { Default().Fatal(msg, args...) }
