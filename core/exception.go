package core

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// ExceptionInfo holds a captured error together with its formatted stack
// frames. It corresponds to the exc_info attribute of a formatted event.
type ExceptionInfo struct {
	Kind    string   // concrete error type name, e.g. "os.PathError"
	Message string   // the error's message
	Trace   []string // formatted frames, innermost first; may be empty
}

// stackTracer is the interface exposed by errors created with
// github.com/pkg/errors.
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// ErrorTrace returns the formatted stack frames recorded in err by
// github.com/pkg/errors, or nil when err carries no trace.
func ErrorTrace(err error) []string {
	var st stackTracer
	if !errors.As(err, &st) {
		return nil
	}
	var trace []string
	for _, f := range st.StackTrace() {
		trace = append(trace, fmt.Sprintf("%+v", f))
	}
	return trace
}

// CaptureException builds an ExceptionInfo for err. When err carries a
// pkg/errors stack trace that trace is used; otherwise the frames of the
// current goroutine are captured, skipping skip frames above the caller.
func CaptureException(err error, skip int) *ExceptionInfo {
	if err == nil {
		return nil
	}
	info := &ExceptionInfo{
		Kind:    ErrorKind(err),
		Message: err.Error(),
	}

	if trace := ErrorTrace(err); trace != nil {
		info.Trace = trace
		return info
	}

	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip+2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		info.Trace = append(info.Trace, fmt.Sprintf("%s\n\t%s:%d", frame.Function, frame.File, frame.Line))
		if !more {
			break
		}
	}
	return info
}

// ErrorKind returns the name of err's concrete type, without the leading
// pointer marker.
func ErrorKind(err error) string {
	t := reflect.TypeOf(err)
	if t == nil {
		return "error"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	if t.PkgPath() != "" {
		return t.PkgPath()[strings.LastIndexByte(t.PkgPath(), '/')+1:] + "." + t.Name()
	}
	return t.Name()
}

// Header returns the single-line "<TypeName>: <message>" form.
func (x *ExceptionInfo) Header() string {
	return x.Kind + ": " + x.Message
}

// Format returns the exception rendered as a single multi-line string:
// the header followed by one line per stack frame.
func (x *ExceptionInfo) Format() string {
	if len(x.Trace) == 0 {
		return x.Header()
	}
	return x.Header() + "\n" + strings.Join(x.Trace, "\n")
}

// Lines returns the exception rendered as separate lines: the header
// followed by every line of every frame.
func (x *ExceptionInfo) Lines() []string {
	lines := []string{x.Header()}
	for _, f := range x.Trace {
		lines = append(lines, strings.Split(f, "\n")...)
	}
	return lines
}
