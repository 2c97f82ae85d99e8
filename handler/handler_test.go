package handler

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jsonlog/jsonlog/core"
	"github.com/jsonlog/jsonlog/formatter"
)

func newEvent(level core.Level, msg string) *core.Event {
	return &core.Event{
		Time:    time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Level:   level,
		Name:    "test",
		Message: msg,
	}
}

func TestConsoleHandler(t *testing.T) {
	var buf bytes.Buffer
	h := NewConsoleHandler(ConsoleConfig{Writer: &buf})
	defer func() {
		if err := h.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	}()

	if err := h.Handle(newEvent(core.InfoLevel, "hello")); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "hello") || !strings.Contains(out, "[INFO]") {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestConsoleHandlerJSONFormatter(t *testing.T) {
	f, err := formatter.NewJSONFormatter(formatter.Config{Format: "%(levelname)s %(message)s"})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	h := NewConsoleHandler(ConsoleConfig{Writer: &buf, Formatter: f})

	if err := h.Handle(newEvent(core.ErrorLevel, "kaput")); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	var data map[string]any
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("Invalid JSON %q: %v", buf.String(), err)
	}
	if data["levelname"] != "ERROR" || data["message"] != "kaput" {
		t.Errorf("Unexpected record %v", data)
	}
}

func TestConsoleHandlerConcurrent(t *testing.T) {
	var buf bytes.Buffer
	h := NewConsoleHandler(ConsoleConfig{Writer: &buf})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = h.Handle(newEvent(core.InfoLevel, "concurrent"))
			}
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 800 {
		t.Errorf("Expected 800 lines, got %d", len(lines))
	}
	for _, line := range lines {
		// Interleaved writes would corrupt individual lines
		if !strings.HasSuffix(line, "concurrent") {
			t.Fatalf("Corrupted line %q", line)
		}
	}
}

func TestFileHandler(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	h, err := NewFileHandler(FileConfig{Filename: path})
	if err != nil {
		t.Fatalf("NewFileHandler() error = %v", err)
	}

	if err := h.Handle(newEvent(core.InfoLevel, "to disk")); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var rec map[string]any
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("Invalid JSON %q: %v", data, err)
	}
	if rec["message"] != "to disk" {
		t.Errorf("Unexpected record %v", rec)
	}
}

func TestFileHandlerRequiresFilename(t *testing.T) {
	if _, err := NewFileHandler(FileConfig{}); err == nil {
		t.Fatal("Expected error for missing filename")
	}
}

func TestFileHandlerCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deep", "app.log")

	h, err := NewFileHandler(FileConfig{Filename: path})
	if err != nil {
		t.Fatalf("NewFileHandler() error = %v", err)
	}
	defer h.Close()

	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Errorf("Expected directory to be created: %v", err)
	}
}

func TestFileHandlerSizeRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	h, err := NewFileHandler(FileConfig{Filename: path, MaxSize: 64})
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	for i := 0; i < 10; i++ {
		if err := h.Handle(newEvent(core.InfoLevel, strings.Repeat("x", 32))); err != nil {
			t.Fatalf("Handle() error = %v", err)
		}
	}

	matches, err := filepath.Glob(path + ".*")
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) == 0 {
		t.Error("Expected rotated backup files")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected active log file to exist: %v", err)
	}
}

func TestMultiHandler(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h := NewMultiHandler(
		NewConsoleHandler(ConsoleConfig{Writer: &buf1}),
		NewConsoleHandler(ConsoleConfig{Writer: &buf2}),
	)
	defer h.Close()

	if err := h.Handle(newEvent(core.InfoLevel, "fan out")); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if !strings.Contains(buf1.String(), "fan out") || !strings.Contains(buf2.String(), "fan out") {
		t.Errorf("Expected both outputs, got %q and %q", buf1.String(), buf2.String())
	}
}

type failingHandler struct{ err error }

func (f *failingHandler) Handle(*core.Event) error { return f.err }
func (f *failingHandler) Close() error             { return f.err }

func TestMultiHandlerContinuesAfterError(t *testing.T) {
	var buf bytes.Buffer
	wantErr := os.ErrClosed
	h := NewMultiHandler(
		&failingHandler{err: wantErr},
		NewConsoleHandler(ConsoleConfig{Writer: &buf}),
	)

	err := h.Handle(newEvent(core.InfoLevel, "still delivered"))
	if err != wantErr {
		t.Errorf("Expected the failing handler's error, got %v", err)
	}
	if !strings.Contains(buf.String(), "still delivered") {
		t.Error("Expected delivery to healthy handler after a failure")
	}
}
