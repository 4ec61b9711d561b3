// Package config loads relcm's workflow configuration documents.
//
// A document is a hierarchical mapping parsed from YAML. Values are kept
// as a small dynamic variant (nil, bool, numbers, string, []Value,
// *Mapping) rather than unmarshaled into structs, because the transition
// fragments are free-form and key order is significant for merging.
package config

import (
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"

	"github.com/relcm/relcm/pkg/errors"
)

// Value is one node of a configuration document: nil, bool, int, int64,
// float64, string, []Value or *Mapping.
type Value interface{}

// Mapping is an order-preserving string-keyed mapping node. yaml.v3's
// map[string]interface{} decoding loses declaration order, which the merge
// contract depends on, so mappings carry their own key slice.
type Mapping struct {
	keys   []string
	values map[string]Value
}

// NewMapping returns an empty mapping
func NewMapping() *Mapping {
	return &Mapping{values: make(map[string]Value)}
}

// Get returns the value for key and whether it is present
func (m *Mapping) Get(key string) (Value, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Set stores a value, appending the key to the order on first insert
func (m *Mapping) Set(key string, v Value) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Keys returns the keys in declaration order
func (m *Mapping) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Len returns the number of keys
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Clone returns a deep copy
func (m *Mapping) Clone() *Mapping {
	if m == nil {
		return nil
	}
	out := NewMapping()
	for _, k := range m.keys {
		out.Set(k, CloneValue(m.values[k]))
	}
	return out
}

// UnmarshalYAML implements yaml.Unmarshaler, preserving key order
func (m *Mapping) UnmarshalYAML(node *yaml.Node) error {
	v, err := decodeNode(node)
	if err != nil {
		return err
	}
	decoded, ok := v.(*Mapping)
	if !ok {
		return fmt.Errorf("line %d: expected a mapping, got %s", node.Line, node.Tag)
	}
	*m = *decoded
	return nil
}

// MarshalYAML implements yaml.Marshaler, emitting keys in declaration order
func (m *Mapping) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range m.keys {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
		var valNode yaml.Node
		if err := valNode.Encode(m.values[k]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, keyNode, &valNode)
	}
	return node, nil
}

func decodeNode(node *yaml.Node) (Value, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return decodeNode(node.Content[0])
	case yaml.AliasNode:
		return decodeNode(node.Alias)
	case yaml.MappingNode:
		m := NewMapping()
		for i := 0; i+1 < len(node.Content); i += 2 {
			v, err := decodeNode(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			m.Set(node.Content[i].Value, v)
		}
		return m, nil
	case yaml.SequenceNode:
		seq := make([]Value, 0, len(node.Content))
		for _, item := range node.Content {
			v, err := decodeNode(item)
			if err != nil {
				return nil, err
			}
			seq = append(seq, v)
		}
		return seq, nil
	default:
		var v interface{}
		if err := node.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

// Parse parses a YAML document. The name is used in diagnostics only;
// syntax errors carry yaml's line/column information alongside it.
func Parse(name string, data []byte) (*Mapping, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "%s", name)
	}
	v, err := decodeNode(&root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "%s", name)
	}
	if v == nil {
		return NewMapping(), nil
	}
	m, ok := v.(*Mapping)
	if !ok {
		return nil, errors.Newf(errors.ErrConfigParse, "%s: top level must be a mapping", name)
	}
	return m, nil
}

// CloneValue returns a deep copy of a document node
func CloneValue(v Value) Value {
	switch t := v.(type) {
	case *Mapping:
		return t.Clone()
	case []Value:
		out := make([]Value, len(t))
		for i, item := range t {
			out[i] = CloneValue(item)
		}
		return out
	default:
		return v
	}
}

// Plain converts a document node into plain Go values (map[string]interface{}
// and []interface{}) for JSON encoding. Key order is lost, which is fine for
// wire payloads.
func Plain(v Value) interface{} {
	switch t := v.(type) {
	case *Mapping:
		out := make(map[string]interface{}, t.Len())
		for _, k := range t.keys {
			out[k] = Plain(t.values[k])
		}
		return out
	case []Value:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = Plain(item)
		}
		return out
	default:
		return v
	}
}

// Equal reports structural equality, including mapping key order
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case *Mapping:
		bv, ok := b.(*Mapping)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for i, k := range av.keys {
			if bv.keys[i] != k || !Equal(av.values[k], bv.values[k]) {
				return false
			}
		}
		return true
	case []Value:
		bv, ok := b.([]Value)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(a, b)
	}
}
