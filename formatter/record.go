package formatter

// Record is the per-event ordered mapping from output field name to value,
// built fresh for every formatted event. Keys are unique; Set overwrites in
// place so that a field keeps the position of its first occurrence.
type Record struct {
	keys []string
	vals map[string]any
}

// NewRecord creates an empty Record.
func NewRecord() *Record {
	return &Record{vals: make(map[string]any, 16)}
}

// Set stores value under key, appending the key when new and overwriting
// in place when it already exists.
func (r *Record) Set(key string, value any) {
	if _, ok := r.vals[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.vals[key] = value
}

// SetDefault stores value under key only when the key is absent.
func (r *Record) SetDefault(key string, value any) {
	if _, ok := r.vals[key]; ok {
		return
	}
	r.keys = append(r.keys, key)
	r.vals[key] = value
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (any, bool) {
	v, ok := r.vals[key]
	return v, ok
}

// Has reports whether key is present.
func (r *Record) Has(key string) bool {
	_, ok := r.vals[key]
	return ok
}

// Rename moves the value stored under from to the key to. When to is a new
// key the value keeps from's position; when to already exists its value is
// overwritten in place and from's slot is removed. A missing from is a
// silent no-op: a logging call must never fail over configuration applied
// to an event that happens not to carry the field.
func (r *Record) Rename(from, to string) {
	if from == to {
		return
	}
	v, ok := r.vals[from]
	if !ok {
		return
	}
	delete(r.vals, from)

	if _, exists := r.vals[to]; exists {
		r.vals[to] = v
		r.removeKey(from)
		return
	}

	r.vals[to] = v
	for i, k := range r.keys {
		if k == from {
			r.keys[i] = to
			return
		}
	}
}

func (r *Record) removeKey(key string) {
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			return
		}
	}
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.keys)
}

// Keys returns the field names in output order. The returned slice is
// owned by the Record and must not be modified.
func (r *Record) Keys() []string {
	return r.keys
}

// Each calls fn for every field in output order until fn returns false.
func (r *Record) Each(fn func(key string, value any) bool) {
	for _, k := range r.keys {
		if !fn(k, r.vals[k]) {
			return
		}
	}
}
