package formatter

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jsonlog/jsonlog/core"
)

// CouldNotEncode is the sentinel emitted for values that defeat every
// conversion attempt. Its presence in output means the value could not be
// represented at all, but the log line itself was still produced.
const CouldNotEncode = "__could_not_encode__"

// maxEncodeDepth bounds recursion through nested containers and struct
// graphs. Values past the limit become the sentinel, so a cyclic or
// pathologically deep value degrades in place rather than overflowing the
// stack. fmt cannot be used here: it has no cycle detection for maps and
// slices, and formatting a cyclic value would recurse unrecoverably.
const maxEncodeDepth = 64

// Encoder converts arbitrary values into JSON-safe ones: nil, bool,
// int64, uint64, finite float64, string, []any, map[string]any, or
// pre-serialized json.RawMessage. Normalize never fails and never panics;
// it bottoms out at CouldNotEncode.
type Encoder struct {
	// Hook, when set, is consulted for every unsupported value before the
	// built-in conversion chain. Returning ok=false falls through.
	Hook func(v any) (any, bool)
	// IncludeTraceback attaches recorded stack frames when encoding error
	// values that carry one.
	IncludeTraceback bool
	// TracebackAsArray renders attached frames as an array of lines
	// instead of a single multi-line string.
	TracebackAsArray bool
}

// Normalize returns the JSON-safe form of v.
func (enc *Encoder) Normalize(v any) any {
	return enc.normalize(v, 0)
}

func (enc *Encoder) normalize(v any, depth int) (out any) {
	defer func() {
		if recover() != nil {
			out = CouldNotEncode
		}
	}()

	if v == nil {
		return nil
	}
	if depth > maxEncodeDepth {
		return CouldNotEncode
	}

	// Values the serializer handles natively.
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case int64:
		return val
	case uint:
		return uint64(val)
	case uint8:
		return uint64(val)
	case uint16:
		return uint64(val)
	case uint32:
		return uint64(val)
	case uint64:
		return val
	case float32:
		return normalizeFloat(float64(val))
	case float64:
		return normalizeFloat(val)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case time.Duration:
		return int64(val)
	case []byte:
		return base64.URLEncoding.EncodeToString(val)
	case uuid.UUID:
		return val.String()
	case json.Number:
		if json.Valid([]byte(val)) {
			return json.RawMessage(val)
		}
		return string(val)
	case json.RawMessage:
		return compactRaw(val)
	case *core.ExceptionInfo:
		return enc.encodeExceptionInfo(val)
	}

	// Caller-supplied hook runs before the built-in chain. Its result is
	// re-normalized with the hook disabled so a hook returning another
	// unsupported value cannot loop.
	if enc.Hook != nil {
		if replaced, ok := callHook(enc.Hook, v); ok {
			sub := *enc
			sub.Hook = nil
			return sub.normalize(replaced, depth+1)
		}
	}

	// Built-in conversion chain; order is a tested contract since it
	// determines precedence when a value satisfies multiple predicates.
	for _, step := range encodeChain {
		if step.match(v) {
			return step.encode(enc, v, depth)
		}
	}

	// Containers and indirections.
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return enc.normalize(rv.Elem().Interface(), depth+1)
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[mapKey(iter.Key().Interface())] = enc.normalize(iter.Value().Interface(), depth+1)
		}
		return out
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = enc.normalize(rv.Index(i).Interface(), depth+1)
		}
		return out
	}

	return stringify(v)
}

// encodeStep is one predicate-then-convert stage of the conversion chain.
type encodeStep struct {
	name   string
	match  func(v any) bool
	encode func(enc *Encoder, v any, depth int) any
}

// encodeChain is evaluated in order, first match wins. Populated in init
// because the record step reaches back into normalize, which walks the
// chain; a composite literal would form an initialization cycle.
var encodeChain []encodeStep

func init() {
	encodeChain = []encodeStep{
		{
			name:  "exception",
			match: func(v any) bool { _, ok := v.(error); return ok },
			encode: func(enc *Encoder, v any, _ int) any {
				return enc.encodeError(v.(error))
			},
		},
		{
			name:  "json-marshaler",
			match: func(v any) bool { _, ok := v.(json.Marshaler); return ok },
			encode: func(enc *Encoder, v any, depth int) any {
				data, err := safeMarshalJSON(v.(json.Marshaler))
				if err != nil {
					return stringify(v)
				}
				return compactRaw(data)
			},
		},
		{
			name:  "text-marshaler",
			match: func(v any) bool { _, ok := v.(interface{ MarshalText() ([]byte, error) }); return ok },
			encode: func(enc *Encoder, v any, _ int) any {
				data, err := safeMarshalText(v.(interface{ MarshalText() ([]byte, error) }))
				if err != nil {
					return stringify(v)
				}
				return string(data)
			},
		},
		{
			name:  "enum",
			match: isEnum,
			encode: func(enc *Encoder, v any, _ int) any {
				return enumValue(v)
			},
		},
		{
			name:  "type",
			match: func(v any) bool { _, ok := v.(reflect.Type); return ok },
			encode: func(enc *Encoder, v any, _ int) any {
				return v.(reflect.Type).String()
			},
		},
		{
			name: "bytes",
			match: func(v any) bool {
				t := reflect.TypeOf(v)
				return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
			},
			encode: func(enc *Encoder, v any, _ int) any {
				return base64.URLEncoding.EncodeToString(reflect.ValueOf(v).Bytes())
			},
		},
		{
			name: "record",
			match: func(v any) bool {
				// A plain data-holding aggregate. Types that provide their own
				// string form are not records and fall through to stringify.
				if _, ok := v.(fmt.Stringer); ok {
					return false
				}
				return reflect.TypeOf(v).Kind() == reflect.Struct
			},
			encode: func(enc *Encoder, v any, depth int) any {
				return enc.encodeStruct(v, depth)
			},
		},
	}
}

// isEnum reports whether v is a member of an enumeration: a defined
// (named, non-predeclared) type whose underlying kind is a basic scalar.
// Such values encode as their underlying value.
func isEnum(v any) bool {
	t := reflect.TypeOf(v)
	if t.PkgPath() == "" {
		return false
	}
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return true
	}
	return false
}

func enumValue(v any) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return normalizeFloat(rv.Float())
	case reflect.String:
		return rv.String()
	}
	return stringify(v)
}

// encodeError renders an error as "<TypeName>: <message>". When traceback
// inclusion is on and the error carries a recorded stack, the frames are
// attached alongside the rendered header.
func (enc *Encoder) encodeError(err error) any {
	header := core.ErrorKind(err) + ": " + safeErrorMessage(err)
	if !enc.IncludeTraceback {
		return header
	}
	trace := core.ErrorTrace(err)
	if len(trace) == 0 {
		return header
	}
	return map[string]any{
		"error":     header,
		"traceback": enc.traceValue(trace),
	}
}

func (enc *Encoder) encodeExceptionInfo(x *core.ExceptionInfo) any {
	if x == nil {
		return nil
	}
	if !enc.IncludeTraceback || len(x.Trace) == 0 {
		return x.Header()
	}
	return map[string]any{
		"error":     x.Header(),
		"traceback": enc.traceValue(x.Trace),
	}
}

func (enc *Encoder) traceValue(trace []string) any {
	if enc.TracebackAsArray {
		var lines []any
		for _, f := range trace {
			for _, l := range strings.Split(f, "\n") {
				lines = append(lines, l)
			}
		}
		return lines
	}
	return strings.Join(trace, "\n")
}

// encodeStruct converts a struct into its field mapping, honoring json
// struct tags for naming and omission.
func (enc *Encoder) encodeStruct(v any, depth int) any {
	rv := reflect.ValueOf(v)
	fields := reflect.VisibleFields(rv.Type())
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		if f.Anonymous || !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		fv, err := safeFieldByIndex(rv, f.Index)
		if err != nil {
			continue // unreachable through a nil embedded pointer
		}
		out[name] = enc.normalize(fv, depth+1)
	}
	return out
}

func normalizeFloat(f float64) any {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}
	return f
}

// compactRaw validates and compacts pre-serialized JSON so that one log
// event always occupies exactly one line. Invalid payloads degrade to
// their string form.
func compactRaw(data []byte) any {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return string(data)
	}
	return json.RawMessage(buf.Bytes())
}

func mapKey(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprint(k)
}

// stringify is the terminal fallback: human-readable conversion first,
// debug representation second, sentinel last. Panics in user String
// methods are contained at every stage.
func stringify(v any) string {
	if s, ok := v.(fmt.Stringer); ok {
		if out, err := safeString(s); err == nil {
			return out
		}
	}
	if out, err := safeSprintf("%v", v); err == nil {
		return out
	}
	if out, err := safeSprintf("%#v", v); err == nil {
		return out
	}
	return CouldNotEncode
}

func callHook(hook func(v any) (any, bool), v any) (out any, ok bool) {
	defer func() {
		if recover() != nil {
			out, ok = nil, false
		}
	}()
	return hook(v)
}

func safeString(s fmt.Stringer) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("String panicked: %v", r)
		}
	}()
	return s.String(), nil
}

func safeSprintf(format string, v any) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("Sprintf panicked: %v", r)
		}
	}()
	return fmt.Sprintf(format, v), nil
}

func safeErrorMessage(err error) (msg string) {
	defer func() {
		if recover() != nil {
			msg = CouldNotEncode
		}
	}()
	return err.Error()
}

func safeMarshalJSON(m json.Marshaler) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("MarshalJSON panicked: %v", r)
		}
	}()
	return m.MarshalJSON()
}

func safeMarshalText(m interface{ MarshalText() ([]byte, error) }) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("MarshalText panicked: %v", r)
		}
	}()
	return m.MarshalText()
}

func safeFieldByIndex(rv reflect.Value, index []int) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("field access panicked: %v", r)
		}
	}()
	return rv.FieldByIndex(index).Interface(), nil
}
