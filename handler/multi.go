package handler

import (
	"github.com/jsonlog/jsonlog/core"
)

// MultiHandler sends log events to multiple handlers
type MultiHandler struct {
	handlers []Handler
}

// NewMultiHandler creates a new multi-handler
func NewMultiHandler(handlers ...Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

// Handle processes a log event by sending it to all handlers. Every
// handler sees the event even when an earlier one fails; the last error
// is returned.
func (h *MultiHandler) Handle(e *core.Event) error {
	var lastErr error
	for _, handler := range h.handlers {
		if err := handler.Handle(e); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Close closes all handlers
func (h *MultiHandler) Close() error {
	var lastErr error
	for _, handler := range h.handlers {
		if err := handler.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
