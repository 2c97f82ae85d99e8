// Package formatter converts log events into bytes, most importantly as
// newline-delimited JSON for machine consumption.
//
// It exposes three interfaces: Formatter, which returns a []byte,
// WriterFormatter, which writes directly to an io.Writer, and
// BufferFormatter, which fills a caller-provided buffer. Handlers check
// for WriterFormatter at construction time and prefer it when available,
// eliminating the intermediate byte slice allocation on the write path.
//
// The JSONFormatter runs a three-stage pipeline per event. A format
// specification (percent, brace, dollar or comma style) is parsed once at
// construction into the ordered required fields. Per event, the field
// resolver merges required fields, defaults, message content, exception
// and stack text, auto-included extras, static fields and renames into an
// ordered Record. Finally each value passes through the Encoder, an
// ordered predicate-then-convert chain that maps any Go value onto a
// JSON-safe one: errors render as "Type: message", defined scalar types as
// their underlying value, byte slices as URL-safe base64, structs as their
// field mapping, and everything else degrades through Stringer, %v and %#v
// down to a fixed sentinel. Formatting therefore cannot fail: a logging
// call is never the reason an application crashes.
//
// Configuration problems are the one place errors do surface, and they
// surface early: NewJSONFormatter rejects a bad format/style combination
// or an unregistered serializer at construction time rather than at the
// first log call.
//
// Both built-in formatters use a pooled bytes.Buffer internally. Buffers
// larger than 64 KiB are not returned to the pool to prevent a single
// large log line from permanently inflating memory usage.
package formatter
