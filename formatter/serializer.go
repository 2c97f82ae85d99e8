package formatter

import (
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
)

// Serializer converts one JSON-safe value (as produced by Encoder) into
// its serialized form.
type Serializer func(v any) ([]byte, error)

// ErrSerializerUnavailable is returned when a named serializer is
// requested but not registered. It surfaces at formatter construction
// only; callers who never request the serializer never see it.
var ErrSerializerUnavailable = errors.New("formatter: serializer unavailable")

var (
	serializerMu sync.RWMutex
	serializers  = map[string]Serializer{
		"json": json.Marshal,
	}
)

// RegisterSerializer makes s available under name, replacing any previous
// registration.
func RegisterSerializer(name string, s Serializer) {
	serializerMu.Lock()
	defer serializerMu.Unlock()
	serializers[name] = s
}

// LookupSerializer returns the serializer registered under name. The
// returned error wraps ErrSerializerUnavailable and names the missing
// serializer.
func LookupSerializer(name string) (Serializer, error) {
	serializerMu.RLock()
	defer serializerMu.RUnlock()
	s, ok := serializers[name]
	if !ok {
		return nil, errors.Wrapf(ErrSerializerUnavailable, "serializer %q is not registered", name)
	}
	return s, nil
}
