package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Logger struct {
	zl zerolog.Logger
}

type Config struct {
	Level      string    // debug, info, warn, error
	Format     string    // json or console
	Output     string    // stdout, stderr, or file path
	TimeFormat string
	Writer     io.Writer // overrides Output when set
}

func New(cfg *Config) (*Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	var output io.Writer
	switch {
	case cfg.Writer != nil:
		output = cfg.Writer
	case cfg.Output == "" || cfg.Output == "stdout":
		output = os.Stdout
	case cfg.Output == "stderr":
		output = os.Stderr
	default:
		file, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("could not open log file: %w", err)
		}
		output = file
	}

	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.RFC3339Nano
	}
	zerolog.TimeFieldFormat = cfg.TimeFormat

	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: cfg.TimeFormat}
	}

	zl := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &Logger{zl: zl}, nil
}

// NewNop returns a logger that discards everything. Used by tests.
func NewNop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// With returns a child logger carrying fields on every entry.
func (l *Logger) With(fields ...Field) *Logger {
	ctx := l.zl.With()
	for _, f := range fields {
		ctx = f.addToContext(ctx)
	}
	return &Logger{zl: ctx.Logger()}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.emit(l.zl.Debug(), msg, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.emit(l.zl.Info(), msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.emit(l.zl.Warn(), msg, fields) }
func (l *Logger) Error(msg string, fields ...Field) { l.emit(l.zl.Error(), msg, fields) }

func (l *Logger) emit(event *zerolog.Event, msg string, fields []Field) {
	for _, f := range fields {
		f.AddTo(event)
	}
	event.Msg(msg)
}

// Field is a structured log field.
type Field interface {
	AddTo(event *zerolog.Event)
	addToContext(ctx zerolog.Context) zerolog.Context
}

type field struct {
	key   string
	value interface{}
}

func (f field) AddTo(event *zerolog.Event) {
	switch v := f.value.(type) {
	case string:
		event.Str(f.key, v)
	case int:
		event.Int(f.key, v)
	case int64:
		event.Int64(f.key, v)
	case float64:
		event.Float64(f.key, v)
	case bool:
		event.Bool(f.key, v)
	case time.Duration:
		event.Dur(f.key, v)
	case error:
		event.AnErr(f.key, v)
	default:
		event.Interface(f.key, v)
	}
}

func (f field) addToContext(ctx zerolog.Context) zerolog.Context {
	switch v := f.value.(type) {
	case string:
		return ctx.Str(f.key, v)
	case error:
		return ctx.AnErr(f.key, v)
	default:
		return ctx.Interface(f.key, v)
	}
}

// --- Field constructors ---

func String(key, value string) Field { return field{key, value} }

func Int(key string, value int) Field { return field{key, value} }

func Int64(key string, value int64) Field { return field{key, value} }

func Float64(key string, value float64) Field { return field{key, value} }

func Bool(key string, value bool) Field { return field{key, value} }

func Duration(key string, value time.Duration) Field { return field{key, value} }

func Error(err error) Field { return field{zerolog.ErrorFieldName, err} }

func Any(key string, value interface{}) Field { return field{key, value} }

func Strings(key string, value []string) Field {
	return String(key, strings.Join(value, ", "))
}

// Component tags a child logger with the emitting component.
func Component(name string) Field { return String("component", name) }
