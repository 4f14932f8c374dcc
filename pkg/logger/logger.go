package logger

import (
	"os"

	"go.uber.org/zap"
)

// Logger is the structured, key/value logging surface used across the service.
type Logger interface {
	Info(msg string, values ...any)
	Warn(msg string, values ...any)
	Error(msg string, values ...any)
	Debug(msg string, values ...any)
	Fatal(err error, values ...any)
}

func init() {
	cfg := zap.NewDevelopmentConfig()
	if os.Getenv("LOG_ENV") == "production" {
		cfg = zap.NewProductionConfig()
	}
	if _, err := NewLogger(cfg); err != nil {
		panic(err)
	}
}

func Info(msg string, values ...any) {
	GetLogger().Info(msg, values...)
}

func Warn(msg string, values ...any) {
	GetLogger().Warn(msg, values...)
}

func Error(msg string, values ...any) {
	GetLogger().Error(msg, values...)
}

func Debug(msg string, values ...any) {
	GetLogger().Debug(msg, values...)
}

func Fatal(err error, values ...any) {
	GetLogger().Fatal(err, values...)
}

// Sync flushes buffered entries; call it once on shutdown.
func Sync() {
	_ = GetLogger().log.Sync()
}
