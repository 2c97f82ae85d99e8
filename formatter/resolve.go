package formatter

import (
	"sort"
	"strings"

	"github.com/jsonlog/jsonlog/core"
)

// resolver computes the OutputRecord for one event. It is built once at
// formatter construction, is immutable afterwards, and allocates a fresh
// Record per call, so a single resolver may be shared across goroutines.
type resolver struct {
	required     []string
	renames      map[string]string
	static       map[string]any
	staticKeys   []string
	defaults     map[string]any
	defaultKeys  []string
	skip         map[string]struct{} // required fields + reserved attrs
	dateFormat   string
	timestampKey string
	excAsArray   bool
	stackAsArray bool
}

func newResolver(cfg Config, required []string) *resolver {
	r := &resolver{
		required:     required,
		renames:      cfg.RenameFields,
		static:       cfg.StaticFields,
		staticKeys:   sortedKeys(cfg.StaticFields),
		defaults:     cfg.Defaults,
		defaultKeys:  sortedKeys(cfg.Defaults),
		skip:         make(map[string]struct{}, len(required)+20),
		dateFormat:   cfg.DateFormat,
		timestampKey: cfg.TimestampKey,
		excAsArray:   cfg.ExcInfoAsArray,
		stackAsArray: cfg.StackInfoAsArray,
	}

	reserved := cfg.ReservedAttrs
	if reserved == nil {
		reserved = core.ReservedAttrs()
	}
	for _, a := range reserved {
		r.skip[a] = struct{}{}
	}
	for _, f := range required {
		r.skip[f] = struct{}{}
	}
	return r
}

// Resolve builds the ordered output record for e. Merge order: required
// fields, defaults (gaps only), message content, exception and stack info,
// non-excluded extras, static fields (always overwrite), the optional
// timestamp field, renames last.
func (r *resolver) Resolve(e *core.Event) *Record {
	rec := NewRecord()

	message := e.Message
	if e.Data != nil {
		// The message is a mapping; its keys merge in at the message
		// stage and the plain-text message renders empty.
		message = ""
	}

	for _, f := range r.required {
		rec.Set(f, r.lookup(e, f, message))
	}

	for _, k := range r.defaultKeys {
		rec.SetDefault(k, r.defaults[k])
	}

	if e.Data != nil {
		for _, k := range sortedKeys(e.Data) {
			rec.Set(k, e.Data[k])
		}
	}

	// Formatted exception and stack trace; values supplied through the
	// message mapping win.
	if e.Exc != nil && e.Data["exc_info"] == nil {
		rec.Set("exc_info", r.excValue(e.Exc))
	}
	if e.Stack != "" && e.Data["stack_info"] == nil {
		rec.Set("stack_info", r.stackValue(e.Stack))
	}

	for _, a := range e.Extra {
		if strings.HasPrefix(a.Key, "_") {
			continue
		}
		if _, skipped := r.skip[a.Key]; skipped {
			continue
		}
		rec.Set(a.Key, a.Value)
	}

	for _, k := range r.staticKeys {
		rec.Set(k, r.static[k])
	}

	if r.timestampKey != "" {
		rec.Set(r.timestampKey, e.Time.UTC())
	}

	// Renames move keys in place, so iterate over a snapshot.
	if len(r.renames) > 0 {
		keys := append([]string(nil), rec.Keys()...)
		for _, k := range keys {
			if to, ok := r.renames[k]; ok {
				rec.Rename(k, to)
			}
		}
	}

	return rec
}

// lookup resolves one required field against the event: the message
// itself, a formatted exception or stack, a native attribute, or a
// caller-supplied extra. Missing fields resolve to nil so a required field
// is always present in the output.
func (r *resolver) lookup(e *core.Event, name, message string) any {
	switch name {
	case "message":
		return message
	case "exc_info":
		if e.Data["exc_info"] != nil {
			return e.Data["exc_info"]
		}
		if e.Exc == nil {
			return nil
		}
		return r.excValue(e.Exc)
	case "stack_info":
		if e.Data["stack_info"] != nil {
			return e.Data["stack_info"]
		}
		if e.Stack == "" {
			return nil
		}
		return r.stackValue(e.Stack)
	}

	if v, ok := core.ResolveAttr(e, name, r.dateFormat); ok {
		return v
	}

	var found any
	for _, a := range e.Extra {
		if a.Key == name {
			found = a.Value
		}
	}
	return found
}

func (r *resolver) excValue(x *core.ExceptionInfo) any {
	if r.excAsArray {
		return x.Lines()
	}
	return x.Format()
}

func (r *resolver) stackValue(stack string) any {
	stack = strings.TrimRight(stack, "\n")
	if r.stackAsArray {
		return strings.Split(stack, "\n")
	}
	return stack
}

func sortedKeys(m map[string]any) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
