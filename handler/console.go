package handler

import (
	"io"
	"os"
	"sync"

	"github.com/jsonlog/jsonlog/core"
	"github.com/jsonlog/jsonlog/formatter"
)

// ConsoleHandler writes log events to a writer, stdout by default. Writes
// are serialized by a mutex so one handler can serve many goroutines.
type ConsoleHandler struct {
	writer          io.Writer
	formatter       formatter.Formatter
	writerFormatter formatter.WriterFormatter
	mu              sync.Mutex
}

// ConsoleConfig holds configuration for console handler
type ConsoleConfig struct {
	// Writer to write to (default: os.Stdout)
	Writer io.Writer
	// Formatter to use (default: TextFormatter)
	Formatter formatter.Formatter
}

// NewConsoleHandler creates a new console handler
func NewConsoleHandler(cfg ConsoleConfig) *ConsoleHandler {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	if cfg.Formatter == nil {
		cfg.Formatter = formatter.NewTextFormatter(formatter.TextConfig{})
	}

	h := &ConsoleHandler{
		writer:    cfg.Writer,
		formatter: cfg.Formatter,
	}

	// Cache WriterFormatter for the zero-alloc path
	h.writerFormatter, _ = cfg.Formatter.(formatter.WriterFormatter)

	return h
}

// Handle formats and writes one event
func (h *ConsoleHandler) Handle(e *core.Event) error {
	if h.writerFormatter != nil {
		h.mu.Lock()
		err := h.writerFormatter.FormatTo(e, h.writer)
		h.mu.Unlock()
		return err
	}

	data, err := h.formatter.Format(e)
	if err != nil {
		return err
	}

	h.mu.Lock()
	_, err = h.writer.Write(data)
	h.mu.Unlock()
	return err
}

// Close closes the handler. The writer is not owned and stays open.
func (h *ConsoleHandler) Close() error {
	return nil
}
