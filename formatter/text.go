package formatter

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jsonlog/jsonlog/core"
)

// TextConfig holds configuration for the text formatter
type TextConfig struct {
	// IncludeCaller enables caller information in log output
	IncludeCaller bool
	// TimestampFormat specifies the time format (empty for RFC3339)
	TimestampFormat string
}

// TextFormatter formats log events as human-readable text
type TextFormatter struct {
	TextConfig
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(cfg TextConfig) *TextFormatter {
	if cfg.TimestampFormat == "" {
		cfg.TimestampFormat = time.RFC3339
	}
	return &TextFormatter{TextConfig: cfg}
}

// Format formats an event as text
func (f *TextFormatter) Format(e *core.Event) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	f.formatToBuffer(e, buf)

	// Copy buffer content to return
	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// FormatTo formats an event and writes it directly to the writer
func (f *TextFormatter) FormatTo(e *core.Event, w io.Writer) error {
	buf := getBuffer()

	f.formatToBuffer(e, buf)

	_, err := w.Write(buf.Bytes())
	putBuffer(buf)
	return err
}

// FormatEvent formats an event into the given buffer (implements BufferFormatter).
func (f *TextFormatter) FormatEvent(e *core.Event, buf *bytes.Buffer) {
	f.formatToBuffer(e, buf)
}

// pre-formatted level strings to avoid multiple WriteString calls
var levelBrackets = [...]string{
	core.DebugLevel: " [DEBUG] ",
	core.InfoLevel:  " [INFO] ",
	core.WarnLevel:  " [WARN] ",
	core.ErrorLevel: " [ERROR] ",
	core.FatalLevel: " [FATAL] ",
	core.PanicLevel: " [PANIC] ",
}

// formatToBuffer writes the formatted event into the given buffer
func (f *TextFormatter) formatToBuffer(e *core.Event, buf *bytes.Buffer) {
	// Timestamp - use AppendFormat to avoid string allocation
	buf.Write(e.Time.AppendFormat(buf.AvailableBuffer(), f.TimestampFormat))

	// Level - use pre-formatted string
	if int(e.Level) < len(levelBrackets) {
		buf.WriteString(levelBrackets[e.Level])
	} else {
		buf.WriteString(" [UNKNOWN] ")
	}

	if e.Name != "" {
		buf.WriteString(e.Name)
		buf.WriteString(": ")
	}

	// Caller info if enabled
	if f.IncludeCaller && e.Caller.Defined {
		buf.WriteByte('[')
		buf.WriteString(e.Caller.ShortFile)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(e.Caller.Line))
		buf.WriteString("] ")
	}

	// Message: either the plain string or the structured payload
	if e.Data != nil {
		first := true
		for _, k := range sortedKeys(e.Data) {
			if !first {
				buf.WriteByte(' ')
			}
			first = false
			buf.WriteString(k)
			buf.WriteByte('=')
			fmt.Fprint(buf, e.Data[k])
		}
	} else {
		buf.WriteString(e.Message)
	}

	// Extras
	for _, a := range e.Extra {
		buf.WriteByte(' ')
		buf.WriteString(a.Key)
		buf.WriteByte('=')
		fmt.Fprint(buf, a.Value)
	}

	if e.Exc != nil {
		buf.WriteByte('\n')
		buf.WriteString(e.Exc.Format())
	}
	if e.Stack != "" {
		buf.WriteByte('\n')
		buf.WriteString(e.Stack)
	}

	buf.WriteByte('\n')
}
