package logger

import (
	"os"
	"strings"

	"fx-dashboard/src/models"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// -----------------------------------------------------------------------------

// Logger provides structured logging functionality
type Logger struct {
	name  string
	sugar *zap.SugaredLogger
}

// -----------------------------------------------------------------------------

// NewLogger creates a new Logger instance. The level is read from the config
// when it is a *models.MConfig, otherwise INFO is used.
func NewLogger(config interface{}, name string) *Logger {
	level := zapcore.InfoLevel
	if cfg, ok := config.(*models.MConfig); ok && cfg != nil {
		level = parseLevel(cfg.LogLevel)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "time"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.Lock(os.Stdout),
		level,
	)

	return &Logger{
		name:  name,
		sugar: zap.New(core).Named(name).Sugar(),
	}
}

// -----------------------------------------------------------------------------

// NewNopLogger returns a Logger that discards everything (tests).
func NewNopLogger() *Logger {
	return &Logger{name: "nop", sugar: zap.NewNop().Sugar()}
}

// -----------------------------------------------------------------------------

func parseLevel(level string) zapcore.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "WARN", "WARNING":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// -----------------------------------------------------------------------------

// Named returns a child logger for a component
func (l *Logger) Named(name string) *Logger {
	return &Logger{
		name:  l.name + "." + name,
		sugar: l.sugar.Named(name),
	}
}

// -----------------------------------------------------------------------------

// Debug logs diagnostic messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// -----------------------------------------------------------------------------

// Warning logs recoverable problems
func (l *Logger) Warning(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// -----------------------------------------------------------------------------

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// -----------------------------------------------------------------------------

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// -----------------------------------------------------------------------------

// Critical logs critical errors and exits the application
func (l *Logger) Critical(format string, args ...interface{}) {
	l.sugar.Errorf("CRITICAL: "+format, args...)
	_ = l.sugar.Sync()
	os.Exit(1)
}

// -----------------------------------------------------------------------------

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}
