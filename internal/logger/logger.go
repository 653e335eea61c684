package logger

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Config controls how log entries are encoded and where they are written.
type Config struct {
	// Level is one of DEBUG, INFO, WARN, ERROR (case-insensitive)
	Level string

	// Format is "text" (console encoder) or "json"
	Format string

	// Output is "stdout", "stderr" or a file path
	Output string
}

var (
	mu    sync.RWMutex
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	base  = newLogger("text", "stdout")
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func parseLevel(s string) (Level, bool) {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return LevelDebug, true
	case "INFO":
		return LevelInfo, true
	case "WARN":
		return LevelWarn, true
	case "ERROR":
		return LevelError, true
	}
	return LevelInfo, false
}

// Init replaces the process logger according to cfg.
// Unknown levels fall back to INFO; an unknown format falls back to text.
func Init(cfg Config) error {
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}

	l, err := buildLogger(cfg.Format, cfg.Output)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	SetLevel(cfg.Level)

	mu.Lock()
	old := base
	base = l
	mu.Unlock()

	_ = old.Sync()
	return nil
}

func SetLevel(lvl string) {
	if l, ok := parseLevel(lvl); ok {
		level.SetLevel(l.zapLevel())
	}
}

// Sync flushes buffered entries.
func Sync() error {
	return current().Sync()
}

// With returns a structured logger carrying the given fields.
// Use it where the diagnostic has named parts (status, bucket, key, ...).
func With(fields ...zap.Field) *zap.Logger {
	return current().WithOptions(zap.AddCallerSkip(-2)).With(fields...)
}

func buildLogger(format, output string) (*zap.Logger, error) {
	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
		cfg.Development = false
	}
	cfg.Level = level
	cfg.Sampling = nil
	cfg.OutputPaths = []string{output}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true

	return cfg.Build(zap.AddCallerSkip(2))
}

func newLogger(format, output string) *zap.Logger {
	l, err := buildLogger(format, output)
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func current() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func log(lvl Level, format string, v ...any) {
	l := current()
	if !l.Core().Enabled(lvl.zapLevel()) {
		return
	}

	message := fmt.Sprintf(format, v...)
	switch lvl {
	case LevelDebug:
		l.Debug(message)
	case LevelInfo:
		l.Info(message)
	case LevelWarn:
		l.Warn(message)
	case LevelError:
		l.Error(message)
	}
}

func Debug(format string, v ...any) {
	log(LevelDebug, format, v...)
}

func Info(format string, v ...any) {
	log(LevelInfo, format, v...)
}

func Warn(format string, v ...any) {
	log(LevelWarn, format, v...)
}

func Error(format string, v ...any) {
	log(LevelError, format, v...)
}
