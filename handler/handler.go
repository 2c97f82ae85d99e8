package handler

import (
	"github.com/jsonlog/jsonlog/core"
)

// Handler defines the interface for log handlers
type Handler interface {
	// Handle processes a log event
	Handle(e *core.Event) error

	// Close closes the handler and releases resources
	Close() error
}
