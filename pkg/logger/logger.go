package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the process wide logger. It is usable before Init (writes JSON to stdout).
var Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

type ctxKey struct{}

// Config controls output format, level and optional file rotation.
type Config struct {
	Service     string
	Level       string
	Development bool
	// FilePath enables a rotated JSON log file next to the stdout output.
	FilePath string
}

// Init initializes the global logger
func Init(cfg Config) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var stdout io.Writer = os.Stdout
	if cfg.Development {
		stdout = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		}
	}

	output := stdout
	if cfg.FilePath != "" {
		output = zerolog.MultiLevelWriter(stdout, &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    100, // megabytes
			MaxBackups: 7,
			MaxAge:     30, // days
			Compress:   true,
		})
	}

	Logger = zerolog.New(output).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("service", cfg.Service).
		Logger()

	log.Logger = Logger
}

// ParseLevel maps a textual level to zerolog, falling back to info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// NewContext stores a request scoped logger in ctx.
func NewContext(ctx context.Context, l zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// WithContext returns the request scoped logger, or the global one.
func WithContext(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(zerolog.Logger); ok {
			return &l
		}
	}
	l := Logger
	return &l
}

func Info(ctx context.Context) *zerolog.Event  { return WithContext(ctx).Info() }
func Warn(ctx context.Context) *zerolog.Event  { return WithContext(ctx).Warn() }
func Error(ctx context.Context) *zerolog.Event { return WithContext(ctx).Error() }
func Debug(ctx context.Context) *zerolog.Event { return WithContext(ctx).Debug() }
