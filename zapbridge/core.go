package zapbridge

import (
	"io"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap/zapcore"

	"github.com/jsonlog/jsonlog/core"
	"github.com/jsonlog/jsonlog/formatter"
)

// Core is a zapcore.Core backed by this module's formatting pipeline, so
// an existing *zap.Logger can emit the same JSON records as the native
// API. Accumulated zap fields become event extras.
type Core struct {
	zapcore.LevelEnabler
	f       formatter.Formatter
	wf      formatter.WriterFormatter
	w       io.Writer
	mu      *sync.Mutex
	context map[string]any
}

// NewCore creates a zap core that formats through f and writes to w.
func NewCore(f formatter.Formatter, w io.Writer, enab zapcore.LevelEnabler) *Core {
	c := &Core{
		LevelEnabler: enab,
		f:            f,
		w:            w,
		mu:           &sync.Mutex{},
		context:      map[string]any{},
	}
	c.wf, _ = f.(formatter.WriterFormatter)
	return c
}

// With adds structured context to the core
func (c *Core) With(fields []zapcore.Field) zapcore.Core {
	clone := &Core{
		LevelEnabler: c.LevelEnabler,
		f:            c.f,
		wf:           c.wf,
		w:            c.w,
		mu:           c.mu,
		context:      make(map[string]any, len(c.context)+len(fields)),
	}
	for k, v := range c.context {
		clone.context[k] = v
	}
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		f.AddTo(enc)
	}
	for k, v := range enc.Fields {
		clone.context[k] = v
	}
	return clone
}

// Check determines whether the supplied entry should be logged
func (c *Core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

// Write converts the entry and its fields to an event, formats it, and
// writes the result.
func (c *Core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		f.AddTo(enc)
	}

	e := core.GetEvent()
	defer core.PutEvent(e)

	e.Time = ent.Time
	e.Level = zapLevelToCore(ent.Level)
	e.Name = ent.LoggerName
	e.Message = ent.Message
	e.Stack = ent.Stack
	if ent.Caller.Defined {
		e.Caller = core.CallerInfo{
			File:      ent.Caller.File,
			ShortFile: filepath.Base(ent.Caller.File),
			Line:      ent.Caller.Line,
			Function:  ent.Caller.Function,
			Defined:   true,
		}
	}

	// Accumulated context first, then call-site fields, each in a stable
	// order since zap's map encoder is unordered.
	appendSorted(e, c.context)
	appendSorted(e, enc.Fields)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.wf != nil {
		return c.wf.FormatTo(e, c.w)
	}
	data, err := c.f.Format(e)
	if err != nil {
		return err
	}
	_, err = c.w.Write(data)
	return err
}

// Sync flushes the underlying writer when it supports it
func (c *Core) Sync() error {
	if s, ok := c.w.(interface{ Sync() error }); ok {
		return s.Sync()
	}
	return nil
}

func appendSorted(e *core.Event, m map[string]any) {
	if len(m) == 0 {
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		e.Extra = append(e.Extra, core.A(k, m[k]))
	}
}

// zapLevelToCore maps zap levels onto the module's level scale
func zapLevelToCore(level zapcore.Level) core.Level {
	switch {
	case level >= zapcore.FatalLevel:
		return core.FatalLevel
	case level >= zapcore.PanicLevel:
		return core.PanicLevel
	case level >= zapcore.ErrorLevel:
		return core.ErrorLevel
	case level >= zapcore.WarnLevel:
		return core.WarnLevel
	case level >= zapcore.InfoLevel:
		return core.InfoLevel
	default:
		return core.DebugLevel
	}
}
