package logger

import (
	"sync"

	"github.com/jsonlog/jsonlog/core"
	"github.com/jsonlog/jsonlog/handler"
)

var (
	defaultLogger *Logger
	defaultMu     sync.RWMutex
)

func init() {
	// Initialize default logger with console handler
	h := handler.NewConsoleHandler(handler.ConsoleConfig{})

	defaultLogger = NewBuilder().
		WithHandler(h).
		WithLevel(core.InfoLevel).
		Build()
}

// Default returns the default logger
func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault sets the default logger
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// Package-level convenience functions using the default logger

// Debug logs a debug message using the default logger
func Debug(msg string, attrs ...core.Attr) {
	Default().Debug(msg, attrs...)
}

// Info logs an info message using the default logger
func Info(msg string, attrs ...core.Attr) {
	Default().Info(msg, attrs...)
}

// Warn logs a warning message using the default logger
func Warn(msg string, attrs ...core.Attr) {
	Default().Warn(msg, attrs...)
}

// Error logs an error message using the default logger
func Error(msg string, attrs ...core.Attr) {
	Default().Error(msg, attrs...)
}

// Fatal logs a fatal message using the default logger and exits the program
func Fatal(msg string, attrs ...core.Attr) {
	Default().Fatal(msg, attrs...)
}

// Panic logs a panic message using the default logger and panics
func Panic(msg string, attrs ...core.Attr) {
	Default().Panic(msg, attrs...)
}

// Exception logs an error with its stack trace using the default logger
func Exception(err error, msg string, attrs ...core.Attr) {
	Default().Exception(err, msg, attrs...)
}

// Debugf logs a formatted debug message using the default logger
func Debugf(format string, args ...any) {
	Default().Debugf(format, args...)
}

// Infof logs a formatted info message using the default logger
func Infof(format string, args ...any) {
	Default().Infof(format, args...)
}

// Warnf logs a formatted warning message using the default logger
func Warnf(format string, args ...any) {
	Default().Warnf(format, args...)
}

// Errorf logs a formatted error message using the default logger
func Errorf(format string, args ...any) {
	Default().Errorf(format, args...)
}

// Fatalf logs a formatted fatal message using the default logger and exits the program
func Fatalf(format string, args ...any) {
	Default().Fatalf(format, args...)
}

// Panicf logs a formatted panic message using the default logger and panics
func Panicf(format string, args ...any) {
	Default().Panicf(format, args...)
}

// With creates a new logger with additional attributes
func With(attrs ...core.Attr) *Logger {
	return Default().With(attrs...)
}
