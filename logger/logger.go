// Package logger holds the process wide structured logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// L is the global sugared logger.
	L *zap.SugaredLogger
	// Z is the global structured logger.
	Z *zap.Logger
)

func init() {
	z, _ := zap.NewProduction()
	Z = z
	L = z.Sugar()
}

type Config struct {
	Level      string
	File       string
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // days
}

func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info", "":
		return zapcore.InfoLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("unsupported log level: %s", level)
}

// Init replaces the global logger. Output goes to stderr, and additionally to
// a rotated file when cfg.File is set.
func Init(cfg Config) error {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return err
	}

	var output io.Writer = os.Stderr
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		output = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    orDefault(cfg.MaxSize, 64),
			MaxBackups: orDefault(cfg.MaxBackups, 3),
			MaxAge:     orDefault(cfg.MaxAge, 7),
			Compress:   true,
		})
	}

	set(zap.New(newCore(output, level)))
	return nil
}

// New builds a logger writing console encoded lines to w.
func New(w io.Writer, level zapcore.Level) *zap.Logger {
	return zap.New(newCore(w, level))
}

func newCore(w io.Writer, level zapcore.Level) zapcore.Core {
	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "T",
		LevelKey:       "L",
		NameKey:        "N",
		MessageKey:     "M",
		StacktraceKey:  "S",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	return zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(w), level)
}

func set(z *zap.Logger) {
	Z = z
	L = z.Sugar()
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Sync flushes buffered log entries. Call it before the process exits.
func Sync() {
	if Z != nil {
		_ = Z.Sync()
	}
}
