// Package handler provides output destinations for formatted log events:
// a console handler for streams, a file handler with rotation, a fan-out
// multi-handler, and an adapter that plugs the pipeline into log/slog.
//
// Handlers are synchronous. A Handle call returns once the event has been
// formatted and written, so callers may pool and reuse events freely.
package handler
