package logger

import (
	"fmt"
	"os"
	"time"

	"github.com/jsonlog/jsonlog/core"
	"github.com/jsonlog/jsonlog/handler"
)

// osExit is a variable to allow overriding os.Exit in tests
var osExit = os.Exit

// Logger is the main logging interface (immutable)
type Logger struct {
	handler       handler.Handler
	level         core.Level
	name          string
	attrs         []core.Attr
	includeCaller bool
	callerSkip    int
}

// Builder provides a fluent API for building Logger instances
type Builder struct {
	handler       handler.Handler
	level         core.Level
	name          string
	attrs         []core.Attr
	includeCaller bool
	callerSkip    int
}

// NewBuilder creates a new logger builder
func NewBuilder() *Builder {
	return &Builder{
		level:      core.InfoLevel, // Default level
		callerSkip: 3,              // Default skip for getCaller
	}
}

// WithHandler sets the handler
func (b *Builder) WithHandler(h handler.Handler) *Builder {
	b.handler = h
	return b
}

// WithLevel sets the log level
func (b *Builder) WithLevel(level core.Level) *Builder {
	b.level = level
	return b
}

// WithName sets the logger name, emitted as the name attribute
func (b *Builder) WithName(name string) *Builder {
	b.name = name
	return b
}

// WithAttrs adds default attributes to all log events
func (b *Builder) WithAttrs(attrs ...core.Attr) *Builder {
	b.attrs = append(b.attrs, attrs...)
	return b
}

// WithCaller enables caller information
func (b *Builder) WithCaller(enabled bool) *Builder {
	b.includeCaller = enabled
	return b
}

// Build creates the Logger instance
func (b *Builder) Build() *Logger {
	return &Logger{
		handler:       b.handler,
		level:         b.level,
		name:          b.name,
		attrs:         b.attrs,
		includeCaller: b.includeCaller,
		callerSkip:    b.callerSkip,
	}
}

// With creates a new Logger with additional attributes (immutable operation)
func (l *Logger) With(attrs ...core.Attr) *Logger {
	newAttrs := make([]core.Attr, len(l.attrs)+len(attrs))
	copy(newAttrs, l.attrs)
	copy(newAttrs[len(l.attrs):], attrs)

	clone := *l
	clone.attrs = newAttrs
	return &clone
}

// Named creates a new Logger whose name extends the current one with a
// dot-separated segment.
func (l *Logger) Named(name string) *Logger {
	clone := *l
	if l.name != "" {
		clone.name = l.name + "." + name
	} else {
		clone.name = name
	}
	return &clone
}

// Enabled reports whether events at the given level are emitted
func (l *Logger) Enabled(level core.Level) bool {
	return level >= l.level
}

// Log logs a message at the specified level
func (l *Logger) Log(level core.Level, msg string, attrs ...core.Attr) {
	// Level check before any allocations
	if level < l.level {
		return
	}
	l.log(level, msg, nil, nil, attrs)
}

// Map logs structured data instead of a plain message. The map's keys
// merge into the output record.
func (l *Logger) Map(level core.Level, data map[string]any, attrs ...core.Attr) {
	if level < l.level {
		return
	}
	l.log(level, "", data, nil, attrs)
}

// Exception logs an error with its captured stack trace at error level
func (l *Logger) Exception(err error, msg string, attrs ...core.Attr) {
	if core.ErrorLevel < l.level {
		return
	}
	l.log(core.ErrorLevel, msg, nil, core.CaptureException(err, 1), attrs)
}

// log is the internal logging method
func (l *Logger) log(level core.Level, msg string, data map[string]any, exc *core.ExceptionInfo, attrs []core.Attr) {
	if l.handler == nil {
		return
	}

	// Get event from pool AFTER level check
	e := core.GetEvent()
	e.Time = time.Now()
	e.Level = level
	e.Name = l.name
	e.Message = msg
	e.Data = data
	e.Exc = exc

	if len(l.attrs) > 0 {
		e.Extra = append(e.Extra, l.attrs...)
	}
	if len(attrs) > 0 {
		e.Extra = append(e.Extra, attrs...)
	}

	if l.includeCaller {
		e.Caller = core.GetCaller(l.callerSkip)
	}

	// Handlers are synchronous, so the event can be recycled immediately
	if err := l.handler.Handle(e); err == nil {
		core.PutEvent(e)
	}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, attrs ...core.Attr) {
	if core.DebugLevel < l.level {
		return
	}
	l.log(core.DebugLevel, msg, nil, nil, attrs)
}

// Info logs an info message
func (l *Logger) Info(msg string, attrs ...core.Attr) {
	if core.InfoLevel < l.level {
		return
	}
	l.log(core.InfoLevel, msg, nil, nil, attrs)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, attrs ...core.Attr) {
	if core.WarnLevel < l.level {
		return
	}
	l.log(core.WarnLevel, msg, nil, nil, attrs)
}

// Error logs an error message
func (l *Logger) Error(msg string, attrs ...core.Attr) {
	if core.ErrorLevel < l.level {
		return
	}
	l.log(core.ErrorLevel, msg, nil, nil, attrs)
}

// Fatal logs a fatal message and exits the program with os.Exit(1)
func (l *Logger) Fatal(msg string, attrs ...core.Attr) {
	l.log(core.FatalLevel, msg, nil, nil, attrs)
	osExit(1)
}

// Panic logs a panic message and panics
func (l *Logger) Panic(msg string, attrs ...core.Attr) {
	l.log(core.PanicLevel, msg, nil, nil, attrs)
	panic(msg)
}

// Debugf logs a debug message with formatting
func (l *Logger) Debugf(format string, args ...any) {
	if core.DebugLevel < l.level {
		return
	}
	l.log(core.DebugLevel, fmt.Sprintf(format, args...), nil, nil, nil)
}

// Infof logs an info message with formatting
func (l *Logger) Infof(format string, args ...any) {
	if core.InfoLevel < l.level {
		return
	}
	l.log(core.InfoLevel, fmt.Sprintf(format, args...), nil, nil, nil)
}

// Warnf logs a warning message with formatting
func (l *Logger) Warnf(format string, args ...any) {
	if core.WarnLevel < l.level {
		return
	}
	l.log(core.WarnLevel, fmt.Sprintf(format, args...), nil, nil, nil)
}

// Errorf logs an error message with formatting
func (l *Logger) Errorf(format string, args ...any) {
	if core.ErrorLevel < l.level {
		return
	}
	l.log(core.ErrorLevel, fmt.Sprintf(format, args...), nil, nil, nil)
}

// Fatalf logs a fatal message with formatting and exits the program with os.Exit(1)
func (l *Logger) Fatalf(format string, args ...any) {
	l.log(core.FatalLevel, fmt.Sprintf(format, args...), nil, nil, nil)
	osExit(1)
}

// Panicf logs a panic message with formatting and panics
func (l *Logger) Panicf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.log(core.PanicLevel, msg, nil, nil, nil)
	panic(msg)
}

// Close closes the logger's handler
func (l *Logger) Close() error {
	if l.handler != nil {
		return l.handler.Close()
	}
	return nil
}
