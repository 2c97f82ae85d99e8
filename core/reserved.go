package core

import (
	"os"
	"path/filepath"
	"strings"
)

// reservedAttrs lists the native attribute names of an Event. Field
// resolution skips these during automatic extra inclusion; each of them can
// still be requested explicitly through the format specification. The
// names match the conventional record attributes of structured logging
// frameworks so downstream consumers see familiar keys.
var reservedAttrs = []string{
	"asctime",
	"created",
	"exc_info",
	"filename",
	"funcName",
	"levelname",
	"levelno",
	"lineno",
	"message",
	"module",
	"msecs",
	"name",
	"pathname",
	"process",
	"processName",
	"stack_info",
}

// ReservedAttrs returns a copy of the native attribute names of an Event.
func ReservedAttrs() []string {
	out := make([]string, len(reservedAttrs))
	copy(out, reservedAttrs)
	return out
}

// processName is fixed for the lifetime of the process.
var processName = filepath.Base(os.Args[0])

// ResolveAttr computes the value of one native attribute of e. The second
// return value reports whether name is a native attribute at all. The
// message, exc_info and stack_info attributes are resolved by the field
// resolver, which owns message-versus-mapping and array-mode handling, and
// report false here.
func ResolveAttr(e *Event, name, dateFormat string) (any, bool) {
	switch name {
	case "name":
		return e.Name, true
	case "levelname":
		return e.Level.String(), true
	case "levelno":
		return int(e.Level), true
	case "asctime":
		return e.Time.Format(dateFormat), true
	case "created":
		return float64(e.Time.UnixNano()) / 1e9, true
	case "msecs":
		return float64(e.Time.Nanosecond()) / 1e6, true
	case "filename":
		return e.Caller.ShortFile, true
	case "pathname":
		return e.Caller.File, true
	case "lineno":
		return e.Caller.Line, true
	case "funcName":
		return e.Caller.Function, true
	case "module":
		return strings.TrimSuffix(e.Caller.ShortFile, ".go"), true
	case "process":
		return os.Getpid(), true
	case "processName":
		return processName, true
	}
	return nil, false
}
