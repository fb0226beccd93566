// Package logger provides structured, leveled logging for the pipeline.
// Log lines go to the console and to a rolling log file.
package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the logging surface used throughout the pipeline. The *Obj
// variants attach an event name and a bag of structured fields.
type Logger interface {
	DebugObj(msg, event string, fields map[string]any)
	InfoObj(msg, event string, fields map[string]any)
	WarnObj(msg, event string, fields map[string]any)
	ErrorObj(msg, event string, fields map[string]any)
	Sync() error
}

// Config controls log level and the rolling file sink.
type Config struct {
	Level      string
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// ZapLogger implements Logger on top of zap.
type ZapLogger struct {
	z *zap.Logger
}

// New builds a logger writing to stderr and, when FilePath is set, to a
// lumberjack-rotated file.
func New(cfg Config) *ZapLogger {
	level := parseLevel(cfg.Level)

	consoleEnc := zapcore.NewConsoleEncoder(consoleEncoderConfig())
	cores := []zapcore.Core{
		zapcore.NewCore(consoleEnc, zapcore.Lock(os.Stderr), level),
	}

	if cfg.FilePath != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    orDefault(cfg.MaxSizeMB, 20),
			MaxBackups: orDefault(cfg.MaxBackups, 5),
			MaxAge:     orDefault(cfg.MaxAgeDays, 30),
			Compress:   true,
		}
		fileEnc := zapcore.NewJSONEncoder(fileEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEnc, zapcore.AddSync(rotator), level))
	}

	return &ZapLogger{
		z: zap.New(zapcore.NewTee(cores...)),
	}
}

func (l *ZapLogger) DebugObj(msg, event string, fields map[string]any) {
	l.z.Debug(msg, toZapFields(event, fields)...)
}

func (l *ZapLogger) InfoObj(msg, event string, fields map[string]any) {
	l.z.Info(msg, toZapFields(event, fields)...)
}

func (l *ZapLogger) WarnObj(msg, event string, fields map[string]any) {
	l.z.Warn(msg, toZapFields(event, fields)...)
}

func (l *ZapLogger) ErrorObj(msg, event string, fields map[string]any) {
	l.z.Error(msg, toZapFields(event, fields)...)
}

// Sync flushes buffered log entries.
func (l *ZapLogger) Sync() error {
	return l.z.Sync()
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) DebugObj(string, string, map[string]any) {}
func (NopLogger) InfoObj(string, string, map[string]any)  {}
func (NopLogger) WarnObj(string, string, map[string]any)  {}
func (NopLogger) ErrorObj(string, string, map[string]any) {}
func (NopLogger) Sync() error                             { return nil }

func toZapFields(event string, fields map[string]any) []zap.Field {
	out := make([]zap.Field, 0, len(fields)+1)
	out = append(out, zap.String("event", event))
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}

func parseLevel(raw string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func consoleEncoderConfig() zapcore.EncoderConfig {
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	return enc
}

func fileEncoderConfig() zapcore.EncoderConfig {
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	return enc
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
