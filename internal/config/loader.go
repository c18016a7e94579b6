package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"
	"gopkg.in/yaml.v3"
)

// Extensions lists the document formats understood by Decode, in the order
// the file probe tries them.
var Extensions = []string{".yaml", ".yml", ".json", ".toml"}

// Load reads a configuration document based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (*Map, error) {
	if path == "" {
		return nil, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(path, b)
}

// Decode parses b as the format implied by the extension of name. Key
// declaration order is preserved. An empty document decodes to an empty Map.
func Decode(name string, b []byte) (*Map, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".yaml", ".yml", ".json", ".toml":
	default:
		return nil, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return NewMap(), nil
	}
	var (
		v   any
		err error
	)
	switch ext {
	case ".yaml", ".yml":
		v, err = decodeYAML(b)
	case ".json":
		v, err = decodeJSON(b)
	case ".toml":
		v, err = decodeTOML(b)
	}
	if err != nil {
		return nil, err
	}
	switch m := v.(type) {
	case *Map:
		return m, nil
	case nil:
		return NewMap(), nil
	default:
		return nil, fmt.Errorf("top-level value is %T, want an object", v)
	}
}

func decodeYAML(b []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return nil, nil
		}
		return yamlValue(doc.Content[0])
	}
	return yamlValue(&doc)
}

func yamlValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.MappingNode:
		m := NewMap()
		var merged []*Map
		for i := 0; i+1 < len(n.Content); i += 2 {
			kn, vn := n.Content[i], n.Content[i+1]
			v, err := yamlValue(vn)
			if err != nil {
				return nil, err
			}
			if kn.Tag == "!!merge" {
				merged = append(merged, yamlMergeSources(v)...)
				continue
			}
			m.Set(kn.Value, v)
		}
		// "<<" keys only fill in what the mapping does not set itself.
		for _, src := range merged {
			src.Range(func(k string, v any) bool {
				if !m.Has(k) {
					m.Set(k, cloneValue(v))
				}
				return true
			})
		}
		return m, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := yamlValue(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, fmt.Errorf("line %d: dangling alias", n.Line)
		}
		return yamlValue(n.Alias)
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return yamlValue(n.Content[0])
	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

func yamlMergeSources(v any) []*Map {
	switch t := v.(type) {
	case *Map:
		return []*Map{t}
	case []any:
		var out []*Map
		for _, e := range t {
			if m, ok := e.(*Map); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

func decodeJSON(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	v, err := jsonValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return v, nil
}

func jsonValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			m := NewMap()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("object key is %T, want string", kt)
				}
				v, err := jsonValue(dec)
				if err != nil {
					return nil, err
				}
				m.Set(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return m, nil
		case '[':
			out := []any{}
			for dec.More() {
				v, err := jsonValue(dec)
				if err != nil {
					return nil, err
				}
				out = append(out, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return out, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %q", rune(t))
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		return t.Float64()
	default:
		return t, nil
	}
}

// decodeTOML takes values from the regular decoder and key order from the
// unstable parser, which is the only go-toml API that exposes it.
// Tables inside arrays of tables keep sorted key order.
func decodeTOML(b []byte) (any, error) {
	var raw map[string]any
	if err := toml.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	rank, err := tomlKeyRanks(b)
	if err != nil {
		return nil, err
	}
	return orderedFrom(raw, nil, rank), nil
}

func tomlKeyRanks(b []byte) (map[string]int, error) {
	rank := make(map[string]int)
	n := 0
	note := func(path []string) {
		for l := 1; l <= len(path); l++ {
			k := strings.Join(path[:l], "\x00")
			if _, ok := rank[k]; !ok {
				rank[k] = n
				n++
			}
		}
	}
	var (
		p     unstable.Parser
		table []string
	)
	p.Reset(b)
	for p.NextExpression() {
		e := p.Expression()
		switch e.Kind {
		case unstable.Table, unstable.ArrayTable:
			table = tomlKey(e.Key())
			note(table)
		case unstable.KeyValue:
			full := append(append([]string(nil), table...), tomlKey(e.Key())...)
			note(full)
			if v := e.Value(); v != nil && v.Kind == unstable.InlineTable {
				tomlInline(full, v, note)
			}
		}
	}
	if err := p.Error(); err != nil {
		return nil, err
	}
	return rank, nil
}

func tomlInline(prefix []string, n *unstable.Node, note func([]string)) {
	it := n.Children()
	for it.Next() {
		kv := it.Node()
		if kv.Kind != unstable.KeyValue {
			continue
		}
		full := append(append([]string(nil), prefix...), tomlKey(kv.Key())...)
		note(full)
		if v := kv.Value(); v != nil && v.Kind == unstable.InlineTable {
			tomlInline(full, v, note)
		}
	}
}

func tomlKey(it unstable.Iterator) []string {
	var parts []string
	for it.Next() {
		parts = append(parts, string(it.Node().Data))
	}
	return parts
}

func orderedFrom(raw map[string]any, prefix []string, rank map[string]int) *Map {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pos := func(k string) int {
		path := append(append([]string(nil), prefix...), k)
		if r, ok := rank[strings.Join(path, "\x00")]; ok {
			return r
		}
		return len(rank)
	}
	sort.SliceStable(keys, func(i, j int) bool { return pos(keys[i]) < pos(keys[j]) })
	m := NewMap()
	for _, k := range keys {
		switch v := raw[k].(type) {
		case map[string]any:
			m.Set(k, orderedFrom(v, append(append([]string(nil), prefix...), k), rank))
		default:
			m.Set(k, normalize(v))
		}
	}
	return m
}
