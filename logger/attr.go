package logger

import (
	"time"

	"github.com/jsonlog/jsonlog/core"
)

// Attribute helper functions for convenience

// String creates a string attribute
func String(key, val string) core.Attr {
	return core.A(key, val)
}

// Int creates an int attribute
func Int(key string, val int) core.Attr {
	return core.A(key, val)
}

// Int64 creates an int64 attribute
func Int64(key string, val int64) core.Attr {
	return core.A(key, val)
}

// Float64 creates a float64 attribute
func Float64(key string, val float64) core.Attr {
	return core.A(key, val)
}

// Bool creates a bool attribute
func Bool(key string, val bool) core.Attr {
	return core.A(key, val)
}

// Time creates a time attribute
func Time(key string, val time.Time) core.Attr {
	return core.A(key, val)
}

// Duration creates a duration attribute
func Duration(key string, val time.Duration) core.Attr {
	return core.A(key, val)
}

// Err creates an error attribute under the key error
func Err(err error) core.Attr {
	return core.A("error", err)
}

// Any creates an attribute with any value
func Any(key string, val any) core.Attr {
	return core.A(key, val)
}
