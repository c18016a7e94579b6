package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Map is a string-keyed mapping that remembers insertion order. Nested
// objects are *Map, arrays are []any; anything else is treated as a scalar.
//
// A Map is not safe for concurrent mutation. After the bootstrap sequence
// hands it out it is treated as read-only.
type Map struct {
	keys []string
	vals map[string]any
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{vals: make(map[string]any)}
}

// MapOf builds a Map from alternating key/value arguments, keeping their
// order. It panics on an odd argument count or a non-string key, so it is
// meant for literals.
func MapOf(kv ...any) *Map {
	if len(kv)%2 != 0 {
		panic("config.MapOf: odd number of arguments")
	}
	m := NewMap()
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("config.MapOf: key %v is %T, not string", kv[i], kv[i]))
		}
		m.Set(k, kv[i+1])
	}
	return m
}

// FromStd converts a plain Go map (recursively) into a Map. Go maps have no
// declaration order, so keys are sorted to keep the result deterministic.
func FromStd(src map[string]any) *Map {
	m := NewMap()
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		m.Set(k, normalize(src[k]))
	}
	return m
}

// normalize turns plain maps found inside values into *Map.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return FromStd(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = normalize(t[i])
		}
		return out
	default:
		return v
	}
}

// Len returns the number of keys.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// Get returns the value stored under k.
func (m *Map) Get(k string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.vals[k]
	return v, ok
}

// Has reports whether k is present.
func (m *Map) Has(k string) bool {
	_, ok := m.Get(k)
	return ok
}

// Set stores v under k. A new key is appended; an existing key keeps its
// position.
func (m *Map) Set(k string, v any) {
	if m.vals == nil {
		m.vals = make(map[string]any)
	}
	if _, ok := m.vals[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.vals[k] = v
}

// Delete removes k if present.
func (m *Map) Delete(k string) {
	if m == nil {
		return
	}
	if _, ok := m.vals[k]; !ok {
		return
	}
	delete(m.vals, k)
	for i, key := range m.keys {
		if key == k {
			m.keys = append(m.keys[:i:i], m.keys[i+1:]...)
			break
		}
	}
}

// Range calls fn for each entry in order until fn returns false.
func (m *Map) Range(fn func(k string, v any) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !fn(k, m.vals[k]) {
			return
		}
	}
}

// Lookup walks nested maps along path.
func (m *Map) Lookup(path ...string) (any, bool) {
	var cur any = m
	for _, p := range path {
		mm, ok := cur.(*Map)
		if !ok {
			return nil, false
		}
		cur, ok = mm.Get(p)
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Clone returns a deep copy. Scalars (including funcs) are shared.
func (m *Map) Clone() *Map {
	if m == nil {
		return nil
	}
	out := &Map{keys: append([]string(nil), m.keys...), vals: make(map[string]any, len(m.vals))}
	for k, v := range m.vals {
		out.vals[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case *Map:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	default:
		return v
	}
}

// Std converts the Map into plain Go maps and slices, the shape most
// decoders (mapstructure, encoding/json) expect.
func (m *Map) Std() map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m.keys))
	for _, k := range m.keys {
		out[k] = stdValue(m.vals[k])
	}
	return out
}

func stdValue(v any) any {
	switch t := v.(type) {
	case *Map:
		return t.Std()
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = stdValue(t[i])
		}
		return out
	default:
		return v
	}
}

// MarshalJSON encodes the Map as a JSON object in key order. Values that
// encoding/json cannot represent (funcs, channels) are written as a
// "<type>" placeholder string so status output never fails.
func (m *Map) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.vals[k])
		if err != nil {
			vb, _ = json.Marshal(fmt.Sprintf("<%T>", m.vals[k]))
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
