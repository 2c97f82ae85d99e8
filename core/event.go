package core

import (
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// Attr is a single caller-supplied extra attribute attached to an Event.
// Attrs keep their declaration order, which determines their position in
// the formatted output.
type Attr struct {
	Key   string
	Value any
}

// A creates an Attr.
func A(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// Event represents one emitted log occurrence with all its metadata.
// It is immutable for the duration of a single formatting call.
type Event struct {
	Time    time.Time
	Level   Level
	Name    string // logger name
	Message string
	// Data is the structured message payload. When non-nil the event's
	// message is treated as a mapping and its keys are merged into the
	// output at the message's position; Message is ignored.
	Data   map[string]any
	Extra  []Attr
	Exc    *ExceptionInfo
	Stack  string
	Caller CallerInfo
}

// CallerInfo contains information about the caller
type CallerInfo struct {
	File      string
	ShortFile string
	Line      int
	Function  string
	Defined   bool
}

// eventPool is a pool of Event objects to reduce allocations
var eventPool = sync.Pool{
	New: func() interface{} {
		return &Event{
			Extra: make([]Attr, 0, 8), // Pre-allocate for 8 attrs
		}
	},
}

// GetEvent retrieves an Event from the pool
func GetEvent() *Event {
	e := eventPool.Get().(*Event)
	e.Time = time.Now()
	e.Extra = e.Extra[:0]
	e.Caller = CallerInfo{}
	return e
}

// PutEvent returns an Event to the pool
func PutEvent(e *Event) {
	if e == nil {
		return
	}
	// Re-slice to zero length; GC handles reference cleanup
	e.Extra = e.Extra[:0]
	e.Name = ""
	e.Message = ""
	e.Data = nil
	e.Exc = nil
	e.Stack = ""
	e.Caller = CallerInfo{}
	eventPool.Put(e)
}

// GetCaller retrieves caller information
func GetCaller(skip int) CallerInfo {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return CallerInfo{}
	}

	fn := runtime.FuncForPC(pc)
	var funcName string
	if fn != nil {
		funcName = fn.Name()
	}

	return CallerInfo{
		File:      file,
		ShortFile: filepath.Base(file),
		Line:      line,
		Function:  funcName,
		Defined:   true,
	}
}
