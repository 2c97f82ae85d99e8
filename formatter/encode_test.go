package formatter

import (
	"encoding/json"
	stderrors "errors"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/jsonlog/jsonlog/core"
)

type color string

type priority int

type panickyStringer struct{}

func (panickyStringer) String() string { panic("no string for you") }

type opaque struct{ n int }

func TestEncodeChainOrder(t *testing.T) {
	// The chain order is a contract: it determines precedence when a
	// value satisfies multiple predicates.
	want := []string{"exception", "json-marshaler", "text-marshaler", "enum", "type", "bytes", "record"}
	var got []string
	for _, step := range encodeChain {
		got = append(got, step.name)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Unexpected chain order %v, want %v", got, want)
	}
}

func TestNormalizePrimitives(t *testing.T) {
	enc := &Encoder{}
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"bool", true, true},
		{"string", "x", "x"},
		{"int", 42, int64(42)},
		{"int8", int8(-1), int64(-1)},
		{"uint", uint(7), uint64(7)},
		{"float", 1.5, 1.5},
		{"nan", math.NaN(), "NaN"},
		{"+inf", math.Inf(1), "+Inf"},
		{"-inf", math.Inf(-1), "-Inf"},
		{"duration", 1500 * time.Millisecond, int64(1_500_000_000)},
		{"json number", json.Number("12.5"), json.RawMessage("12.5")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := enc.Normalize(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize(%v) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeTime(t *testing.T) {
	enc := &Encoder{}
	ts := time.Date(2026, 5, 1, 10, 30, 0, 0, time.UTC)
	if got := enc.Normalize(ts); got != "2026-05-01T10:30:00Z" {
		t.Errorf("Normalize(time) = %v", got)
	}
}

func TestNormalizeBytesURLSafe(t *testing.T) {
	enc := &Encoder{}

	// 0xff 0x00 encodes differently in standard and URL-safe alphabets
	if got := enc.Normalize([]byte{0xff, 0x00}); got != "_wA=" {
		t.Errorf("Normalize(bytes) = %v, want _wA=", got)
	}

	// Named byte slice types go through the chain's bytes step
	type blob []byte
	if got := enc.Normalize(blob{0xff, 0x00}); got != "_wA=" {
		t.Errorf("Normalize(named bytes) = %v, want _wA=", got)
	}
}

func TestNormalizeUUID(t *testing.T) {
	enc := &Encoder{}
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	if got := enc.Normalize(id); got != "6ba7b810-9dad-11d1-80b4-00c04fd430c8" {
		t.Errorf("Normalize(uuid) = %v", got)
	}
}

func TestNormalizeEnum(t *testing.T) {
	enc := &Encoder{}

	if got := enc.Normalize(color("red")); got != "red" {
		t.Errorf("Normalize(color) = %#v, want red", got)
	}
	if got := enc.Normalize(priority(3)); got != int64(3) {
		t.Errorf("Normalize(priority) = %#v, want 3", got)
	}
	// A core.Level is itself an enumeration member
	if got := enc.Normalize(core.WarnLevel); got != int64(core.WarnLevel) {
		t.Errorf("Normalize(level) = %#v", got)
	}
}

func TestNormalizeType(t *testing.T) {
	enc := &Encoder{}
	if got := enc.Normalize(reflect.TypeOf(color(""))); got != "formatter.color" {
		t.Errorf("Normalize(type) = %v", got)
	}
}

func TestNormalizeError(t *testing.T) {
	enc := &Encoder{}
	got := enc.Normalize(stderrors.New("boom"))
	if got != "errors.errorString: boom" {
		t.Errorf("Normalize(error) = %v", got)
	}
}

func TestNormalizeErrorWithTraceback(t *testing.T) {
	enc := &Encoder{IncludeTraceback: true}
	err := errors.New("boom")

	got, ok := enc.Normalize(err).(map[string]any)
	if !ok {
		t.Fatalf("Expected map for traced error, got %#v", enc.Normalize(err))
	}
	header, _ := got["error"].(string)
	if !strings.HasSuffix(header, ": boom") {
		t.Errorf("Unexpected header %q", header)
	}
	trace, _ := got["traceback"].(string)
	if !strings.Contains(trace, "TestNormalizeErrorWithTraceback") {
		t.Errorf("Expected capture site in traceback, got %q", trace)
	}

	// A plain error has no recorded trace and renders as the header only
	if got := enc.Normalize(stderrors.New("plain")); got != "errors.errorString: plain" {
		t.Errorf("Normalize(plain error) = %v", got)
	}

	// Array mode splits frames into lines
	arrEnc := &Encoder{IncludeTraceback: true, TracebackAsArray: true}
	got, ok = arrEnc.Normalize(err).(map[string]any)
	if !ok {
		t.Fatal("Expected map for traced error")
	}
	lines, _ := got["traceback"].([]any)
	if len(lines) < 2 {
		t.Fatalf("Expected multiple trace lines, got %v", got["traceback"])
	}
	for _, l := range lines {
		if strings.Contains(l.(string), "\n") {
			t.Errorf("Expected no embedded newline in %q", l)
		}
	}
}

func TestNormalizeExceptionInfo(t *testing.T) {
	x := &core.ExceptionInfo{Kind: "app.E", Message: "m", Trace: []string{"f\n\tfile.go:1"}}

	enc := &Encoder{}
	if got := enc.Normalize(x); got != "app.E: m" {
		t.Errorf("Normalize(info) = %v", got)
	}

	traced := &Encoder{IncludeTraceback: true}
	got, ok := traced.Normalize(x).(map[string]any)
	if !ok {
		t.Fatal("Expected map with traceback")
	}
	if got["error"] != "app.E: m" {
		t.Errorf("Unexpected error %v", got["error"])
	}
}

func TestNormalizeStruct(t *testing.T) {
	enc := &Encoder{}
	in := struct {
		Things string `json:"things"`
		Stuff  int
		Junk   bool `json:"-"`
		hidden string
	}{Things: "x", Stuff: 2, Junk: true}

	got, ok := enc.Normalize(in).(map[string]any)
	if !ok {
		t.Fatalf("Expected map, got %#v", enc.Normalize(in))
	}
	want := map[string]any{"things": "x", "Stuff": int64(2)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize(struct) = %#v, want %#v", got, want)
	}
}

func TestNormalizeContainers(t *testing.T) {
	enc := &Encoder{}

	got := enc.Normalize(map[string]any{"a": 1, "b": []any{"x", 2.5}})
	want := map[string]any{"a": int64(1), "b": []any{"x", 2.5}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize(map) = %#v, want %#v", got, want)
	}

	// Non-string map keys are stringified
	got = enc.Normalize(map[int]string{1: "one"})
	want = map[string]any{"1": "one"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize(int-keyed map) = %#v, want %#v", got, want)
	}

	// Pointers are dereferenced, nil pointers become null
	n := 5
	if got := enc.Normalize(&n); got != int64(5) {
		t.Errorf("Normalize(ptr) = %#v", got)
	}
	var np *int
	if got := enc.Normalize(np); got != nil {
		t.Errorf("Normalize(nil ptr) = %#v", got)
	}
}

func TestNormalizeFallback(t *testing.T) {
	enc := &Encoder{}

	// A panicking Stringer falls through to %v, which fmt renders with a
	// panic marker rather than crashing.
	got, ok := enc.Normalize(panickyStringer{}).(string)
	if !ok {
		t.Fatalf("Expected string fallback, got %#v", enc.Normalize(panickyStringer{}))
	}
	if got == "" {
		t.Error("Expected non-empty fallback")
	}

	// A plain unexported struct renders via %v
	if got := enc.Normalize(opaque{n: 3}); got == nil || got == "" {
		t.Errorf("Normalize(opaque) = %#v", got)
	}

	// Channels have no better representation than their %v form
	ch := make(chan int)
	if got, ok := enc.Normalize(ch).(string); !ok || got == "" {
		t.Errorf("Normalize(chan) = %#v", enc.Normalize(ch))
	}
}

func TestNormalizeHook(t *testing.T) {
	enc := &Encoder{
		Hook: func(v any) (any, bool) {
			if o, ok := v.(opaque); ok {
				return map[string]any{"n": o.n}, true
			}
			return nil, false
		},
	}

	got, ok := enc.Normalize(opaque{n: 7}).(map[string]any)
	if !ok {
		t.Fatalf("Expected hook result, got %#v", enc.Normalize(opaque{n: 7}))
	}
	if got["n"] != int64(7) {
		t.Errorf("Expected hook result to be re-normalized, got %#v", got["n"])
	}

	// Hook declining falls through to the built-in chain
	if got := enc.Normalize(color("blue")); got != "blue" {
		t.Errorf("Normalize(color) = %#v", got)
	}

	// A panicking hook is contained
	bad := &Encoder{Hook: func(v any) (any, bool) { panic("hook boom") }}
	if got := bad.Normalize(color("blue")); got != "blue" {
		t.Errorf("Expected panicking hook to be skipped, got %#v", got)
	}
}

func TestNormalizeDepthLimit(t *testing.T) {
	enc := &Encoder{}

	// Build nesting deeper than the limit
	v := any("bottom")
	for i := 0; i < maxEncodeDepth+10; i++ {
		v = []any{v}
	}

	got := enc.Normalize(v)
	// The result must be JSON-safe all the way down, with the sentinel
	// standing in past the limit
	data, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("Expected depth-limited result to serialize, got %v", err)
	}
	if !strings.Contains(string(data), CouldNotEncode) {
		t.Errorf("Expected sentinel past the depth limit, got %s", data)
	}
}

func TestNormalizeCyclicValue(t *testing.T) {
	enc := &Encoder{}

	m := map[string]any{"k": 1}
	m["self"] = m
	got := enc.Normalize(m)
	data, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("Expected cyclic map to serialize, got %v", err)
	}
	if !strings.Contains(string(data), CouldNotEncode) {
		t.Errorf("Expected sentinel in cyclic result, got %s", data)
	}

	s := []any{"head", nil}
	s[1] = s
	if _, err := json.Marshal(enc.Normalize(s)); err != nil {
		t.Errorf("Expected cyclic slice to serialize, got %v", err)
	}

	// Two maps referring to each other
	a := map[string]any{}
	b := map[string]any{"a": a}
	a["b"] = b
	if _, err := json.Marshal(enc.Normalize(a)); err != nil {
		t.Errorf("Expected mutually cyclic maps to serialize, got %v", err)
	}
}

func TestNormalizeNeverPanics(t *testing.T) {
	enc := &Encoder{IncludeTraceback: true, TracebackAsArray: true}
	values := []any{
		nil,
		panickyStringer{},
		&panickyStringer{},
		make(chan int),
		func() {},
		complex(1, 2),
		uintptr(0xdead),
		map[any]any{1: panickyStringer{}},
		struct{ C chan int }{C: make(chan int)},
		[]any{math.NaN(), []byte{0x00}},
	}

	for _, v := range values {
		got := enc.Normalize(v)
		if _, err := json.Marshal(got); err != nil {
			t.Errorf("Normalize(%T) produced unserializable %#v: %v", v, got, err)
		}
	}
}

func TestNormalizeJSONMarshaler(t *testing.T) {
	enc := &Encoder{}

	// json.RawMessage round-trips compacted
	got := enc.Normalize(json.RawMessage(` {"a": 1} `))
	if raw, ok := got.(json.RawMessage); !ok || string(raw) != `{"a":1}` {
		t.Errorf("Normalize(raw) = %#v", got)
	}

	// Invalid raw JSON degrades to a string instead of corrupting the line
	got = enc.Normalize(json.RawMessage(`{"a":`))
	if _, ok := got.(string); !ok {
		t.Errorf("Expected string for invalid raw JSON, got %#v", got)
	}
}
