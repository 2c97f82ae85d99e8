package handler

import (
	"context"
	"log/slog"

	"github.com/jsonlog/jsonlog/core"
)

// SlogHandler adapts a Handler to the log/slog Handler interface, so the
// JSON formatting pipeline can back a standard *slog.Logger.
type SlogHandler struct {
	handler Handler
	level   core.Level
	attrs   []core.Attr
	group   string
}

// NewSlogHandler creates a new slog.Handler adapter wrapping the given Handler.
func NewSlogHandler(h Handler, level core.Level) *SlogHandler {
	return &SlogHandler{
		handler: h,
		level:   level,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (s *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return slogLevelToCore(level) >= s.level
}

// Handle converts a slog.Record to an event and passes it to the wrapped
// handler. An error-valued attribute becomes the event's exception info
// rather than a plain field.
func (s *SlogHandler) Handle(_ context.Context, record slog.Record) error {
	e := core.GetEvent()
	defer core.PutEvent(e)

	e.Time = record.Time
	e.Level = slogLevelToCore(record.Level)
	e.Message = record.Message

	if len(s.attrs) > 0 {
		e.Extra = append(e.Extra, s.attrs...)
	}

	record.Attrs(func(a slog.Attr) bool {
		s.appendAttr(e, s.group, a)
		return true
	})

	return s.handler.Handle(e)
}

// WithAttrs returns a new SlogHandler with additional attributes.
func (s *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]core.Attr, len(s.attrs), len(s.attrs)+len(attrs))
	copy(newAttrs, s.attrs)
	for _, a := range attrs {
		a.Value = a.Value.Resolve()
		newAttrs = append(newAttrs, core.A(prefixKey(s.group, a.Key), a.Value.Any()))
	}
	return &SlogHandler{
		handler: s.handler,
		level:   s.level,
		attrs:   newAttrs,
		group:   s.group,
	}
}

// WithGroup returns a new SlogHandler with the given group name. Groups
// flatten into dotted key prefixes.
func (s *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return s
	}
	newAttrs := make([]core.Attr, len(s.attrs))
	copy(newAttrs, s.attrs)
	return &SlogHandler{
		handler: s.handler,
		level:   s.level,
		attrs:   newAttrs,
		group:   prefixKey(s.group, name),
	}
}

// appendAttr adds one resolved attribute to the event, recursing into
// group values with an extended prefix.
func (s *SlogHandler) appendAttr(e *core.Event, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		prefix := group
		if a.Key != "" {
			prefix = prefixKey(group, a.Key)
		}
		for _, ga := range a.Value.Group() {
			s.appendAttr(e, prefix, ga)
		}
		return
	}

	if err, ok := a.Value.Any().(error); ok && e.Exc == nil {
		e.Exc = core.CaptureException(err, 0)
		return
	}

	e.Extra = append(e.Extra, core.A(prefixKey(group, a.Key), a.Value.Any()))
}

func prefixKey(group, key string) string {
	if group == "" {
		return key
	}
	return group + "." + key
}

// slogLevelToCore converts a slog.Level to a core.Level.
func slogLevelToCore(level slog.Level) core.Level {
	switch {
	case level >= slog.LevelError:
		return core.ErrorLevel
	case level >= slog.LevelWarn:
		return core.WarnLevel
	case level >= slog.LevelInfo:
		return core.InfoLevel
	default:
		return core.DebugLevel
	}
}
