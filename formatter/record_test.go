package formatter

import (
	"reflect"
	"testing"
)

func TestRecordSetKeepsPosition(t *testing.T) {
	r := NewRecord()
	r.Set("a", 1)
	r.Set("b", 2)
	r.Set("c", 3)
	r.Set("b", 20) // overwrite in place

	if !reflect.DeepEqual(r.Keys(), []string{"a", "b", "c"}) {
		t.Errorf("Unexpected key order %v", r.Keys())
	}
	if v, _ := r.Get("b"); v != 20 {
		t.Errorf("Expected b=20, got %v", v)
	}
	if r.Len() != 3 {
		t.Errorf("Expected 3 fields, got %d", r.Len())
	}
}

func TestRecordSetDefault(t *testing.T) {
	r := NewRecord()
	r.Set("a", 1)
	r.SetDefault("a", 10)
	r.SetDefault("b", 2)

	if v, _ := r.Get("a"); v != 1 {
		t.Errorf("Expected default to not overwrite, got a=%v", v)
	}
	if v, _ := r.Get("b"); v != 2 {
		t.Errorf("Expected default to fill gap, got b=%v", v)
	}
	if !reflect.DeepEqual(r.Keys(), []string{"a", "b"}) {
		t.Errorf("Unexpected key order %v", r.Keys())
	}
}

func TestRecordRename(t *testing.T) {
	r := NewRecord()
	r.Set("a", 1)
	r.Set("b", 2)
	r.Set("c", 3)

	// Rename to a new key keeps the position
	r.Rename("b", "B")
	if !reflect.DeepEqual(r.Keys(), []string{"a", "B", "c"}) {
		t.Errorf("Unexpected key order %v", r.Keys())
	}
	if v, _ := r.Get("B"); v != 2 {
		t.Errorf("Expected B=2, got %v", v)
	}
	if r.Has("b") {
		t.Error("Expected original key to be removed")
	}

	// Rename onto an existing key overwrites at its position
	r.Rename("c", "a")
	if !reflect.DeepEqual(r.Keys(), []string{"a", "B"}) {
		t.Errorf("Unexpected key order %v", r.Keys())
	}
	if v, _ := r.Get("a"); v != 3 {
		t.Errorf("Expected a=3, got %v", v)
	}

	// Missing source is a silent no-op
	r.Rename("missing", "present")
	if r.Has("present") {
		t.Error("Expected no-op rename for missing source")
	}

	// Self-rename is a no-op
	r.Rename("a", "a")
	if v, _ := r.Get("a"); v != 3 {
		t.Errorf("Expected a=3 after self-rename, got %v", v)
	}
}

func TestRecordEach(t *testing.T) {
	r := NewRecord()
	r.Set("a", 1)
	r.Set("b", 2)
	r.Set("c", 3)

	var seen []string
	r.Each(func(key string, value any) bool {
		seen = append(seen, key)
		return key != "b" // stop after b
	})
	if !reflect.DeepEqual(seen, []string{"a", "b"}) {
		t.Errorf("Expected iteration to stop, saw %v", seen)
	}
}
