package formatter

import (
	"bytes"
	"io"
	"time"

	"github.com/jsonlog/jsonlog/core"
)

// Config declares which fields a JSONFormatter emits and how awkward
// values are encoded. The zero value is usable and emits message plus
// auto-included extras.
type Config struct {
	// Format declares required fields using Style placeholders, e.g.
	// "%(levelname)s %(message)s". Empty means message only.
	Format string
	// Fields declares required fields directly, bypassing Format parsing.
	Fields []string
	// Style selects the placeholder syntax of Format (default StylePercent).
	Style Style
	// DisableValidation accepts unrecognized styles and placeholder-free
	// formats instead of failing construction. Required when using a
	// custom style together with ParseFields.
	DisableValidation bool
	// ParseFields, when set, replaces the built-in format parsing.
	ParseFields func(format string) []string

	// DateFormat is the layout of the asctime field (default time.RFC3339).
	DateFormat string
	// RenameFields renames output keys, e.g. {"levelname": "level"}. A
	// missing source field is silently ignored.
	RenameFields map[string]string
	// StaticFields are merged into every record and always win.
	StaticFields map[string]any
	// Defaults are merged into every record only when the field is
	// otherwise absent.
	Defaults map[string]any
	// ReservedAttrs suppresses auto-inclusion of the named event
	// attributes. Nil means the native attribute set; an empty non-nil
	// slice reserves nothing.
	ReservedAttrs []string
	// TimestampKey, when non-empty, adds the event's UTC timestamp under
	// that key.
	TimestampKey string
	// Prefix is written verbatim before each serialized record.
	Prefix string

	// ExcInfoAsArray renders exception text as an array of lines instead
	// of a single multi-line string.
	ExcInfoAsArray bool
	// StackInfoAsArray renders stack trace text as an array of lines.
	StackInfoAsArray bool
	// IncludeTraceback attaches recorded stack frames when error values
	// are encoded by the fallback chain.
	IncludeTraceback bool
	// EncodeHook is consulted for unsupported values before the built-in
	// conversion chain.
	EncodeHook func(v any) (any, bool)
	// ProcessRecord, when set, may alter the resolved record before
	// serialization.
	ProcessRecord func(rec *Record)
	// Serializer names the registered serializer to use (default "json").
	Serializer string
}

// JSONFormatter formats log events as newline-delimited JSON, one object
// per event. Construction validates the configuration; formatting itself
// cannot fail.
type JSONFormatter struct {
	cfg       Config
	resolver  *resolver
	encoder   Encoder
	serialize Serializer
}

// NewJSONFormatter creates a JSON formatter. Configuration errors (bad
// format/style combination, unknown serializer) are reported here, never
// deferred to a log call.
func NewJSONFormatter(cfg Config) (*JSONFormatter, error) {
	if cfg.Style == "" {
		cfg.Style = StylePercent
	}
	if cfg.DateFormat == "" {
		cfg.DateFormat = time.RFC3339
	}
	if cfg.Serializer == "" {
		cfg.Serializer = "json"
	}

	required, err := requiredFields(cfg)
	if err != nil {
		return nil, err
	}

	serialize, err := LookupSerializer(cfg.Serializer)
	if err != nil {
		return nil, err
	}

	return &JSONFormatter{
		cfg:      cfg,
		resolver: newResolver(cfg, required),
		encoder: Encoder{
			Hook:             cfg.EncodeHook,
			IncludeTraceback: cfg.IncludeTraceback,
			TracebackAsArray: cfg.ExcInfoAsArray,
		},
		serialize: serialize,
	}, nil
}

func requiredFields(cfg Config) ([]string, error) {
	if cfg.Fields != nil {
		return cfg.Fields, nil
	}
	if cfg.ParseFields != nil {
		return cfg.ParseFields(cfg.Format), nil
	}

	fields, err := ParseFormat(cfg.Format, cfg.Style)
	if err != nil {
		if cfg.DisableValidation {
			// Unrecognized styles are accepted verbatim; without a custom
			// ParseFields they contribute no required fields.
			return nil, nil
		}
		return nil, err
	}
	if !cfg.DisableValidation {
		if err := validateFormat(cfg.Format, cfg.Style, fields); err != nil {
			return nil, err
		}
	}
	if fields == nil && cfg.Format == "" {
		// No field specification at all: emit the message.
		fields = []string{"message"}
	}
	return fields, nil
}

// Format formats an event as JSON
func (f *JSONFormatter) Format(e *core.Event) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	f.formatToBuffer(e, buf)

	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// FormatTo formats an event as JSON and writes it directly to the writer
func (f *JSONFormatter) FormatTo(e *core.Event, w io.Writer) error {
	buf := getBuffer()

	f.formatToBuffer(e, buf)

	_, err := w.Write(buf.Bytes())
	putBuffer(buf)
	return err
}

// FormatEvent formats an event as JSON into the given buffer (implements BufferFormatter).
func (f *JSONFormatter) FormatEvent(e *core.Event, buf *bytes.Buffer) {
	f.formatToBuffer(e, buf)
}

func (f *JSONFormatter) formatToBuffer(e *core.Event, buf *bytes.Buffer) {
	rec := f.resolver.Resolve(e)
	if f.cfg.ProcessRecord != nil {
		f.cfg.ProcessRecord(rec)
	}

	if f.cfg.Prefix != "" {
		buf.WriteString(f.cfg.Prefix)
	}

	buf.WriteByte('{')
	first := true
	rec.Each(func(key string, value any) bool {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteByte('"')
		appendJSONString(buf, key)
		buf.WriteString(`":`)
		f.appendValue(buf, value)
		return true
	})
	buf.WriteString("}\n")
}

// appendValue writes one serialized field value. The value is normalized
// first, so serialization failures are confined to misbehaving custom
// serializers and degrade to the sentinel instead of propagating.
func (f *JSONFormatter) appendValue(buf *bytes.Buffer, value any) {
	data, err := f.serialize(f.encoder.Normalize(value))
	if err != nil {
		buf.WriteByte('"')
		appendJSONString(buf, CouldNotEncode)
		buf.WriteByte('"')
		return
	}
	buf.Write(data)
}

// appendJSONString writes a JSON-escaped string (without surrounding quotes) to the buffer
func appendJSONString(buf *bytes.Buffer, s string) {
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		// Flush unescaped prefix
		if start < i {
			buf.WriteString(s[start:i])
		}
		switch c {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			buf.WriteString(`\u00`)
			buf.WriteByte(hexChars[c>>4])
			buf.WriteByte(hexChars[c&0x0f])
		}
		start = i + 1
	}
	// Flush remaining
	if start < len(s) {
		buf.WriteString(s[start:])
	}
}

var hexChars = [16]byte{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', 'a', 'b', 'c', 'd', 'e', 'f'}
