// Package core defines the shared types used across the jsonlog framework.
//
// It provides the Level type for severity filtering, the Event type that
// represents a single log occurrence, and the Attr type for ordered
// key-value extras attached by calling code.
//
// Event objects are pooled via sync.Pool to keep the hot path
// allocation-free. Callers get an Event with GetEvent and must return it
// with PutEvent once the handler has consumed it. The pool pre-allocates
// the Extra slice with capacity 8, which covers most log calls without
// triggering a slice growth.
//
// An Event carries both an unstructured Message and an optional Data map.
// When Data is set the event's message is a mapping and formatters merge
// its keys directly into the output record; this supports call sites that
// log structured payloads instead of plain strings.
//
// ExceptionInfo captures an error together with its stack frames. Errors
// created with github.com/pkg/errors contribute their recorded trace;
// plain errors fall back to the frames of the capturing goroutine.
package core
