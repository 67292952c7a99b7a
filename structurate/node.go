// SPDX-License-Identifier: MIT

package structurate

import (
	"sort"
)

// Node is an insertion-ordered, string-keyed mapping that mirrors a YAML
// mapping. Nested mappings are always stored as *Node.
//
// A Node is not safe for concurrent mutation.
type Node struct {
	keys   []string
	values map[string]any
}

// NewNode returns an empty node.
func NewNode() *Node {
	return &Node{values: make(map[string]any)}
}

// NodeFromMap builds a node from a plain map. Go maps carry no order, so keys
// are inserted in sorted order. Nested maps become child nodes.
func NodeFromMap(m map[string]any) *Node {
	n := NewNode()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n.Set(k, m[k])
	}
	return n
}

// Has reports whether key is present, even with a nil value.
func (n *Node) Has(key string) bool {
	_, ok := n.values[key]
	return ok
}

// Get returns the value stored under key, or nil.
func (n *Node) Get(key string) any {
	return n.values[key]
}

// Node returns the child mapping under key. A missing key, or one holding a
// non-mapping value, is replaced by a new empty child.
func (n *Node) Node(key string) *Node {
	if child, ok := n.values[key].(*Node); ok {
		return child
	}
	child := NewNode()
	n.Set(key, child)
	return child
}

// Set stores value under key, keeping the key's position when it already exists.
func (n *Node) Set(key string, value any) {
	if n.values == nil {
		n.values = make(map[string]any)
	}
	if _, ok := n.values[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.values[key] = normalizeValue(value)
}

// Remove deletes key. Missing keys are ignored.
func (n *Node) Remove(key string) {
	if _, ok := n.values[key]; !ok {
		return
	}
	delete(n.values, key)
	for i, k := range n.keys {
		if k == key {
			n.keys = append(n.keys[:i], n.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (n *Node) Keys() []string {
	out := make([]string, len(n.keys))
	copy(out, n.keys)
	return out
}

// Len returns the number of keys.
func (n *Node) Len() int {
	return len(n.keys)
}

// AsMap returns a shallow copy of the node's entries. Child nodes are shared.
func (n *Node) AsMap() map[string]any {
	out := make(map[string]any, len(n.keys))
	for _, k := range n.keys {
		out[k] = n.values[k]
	}
	return out
}

// ToMap returns a deep copy with every child node converted to a plain map.
func (n *Node) ToMap() map[string]any {
	out := make(map[string]any, len(n.keys))
	for _, k := range n.keys {
		out[k] = plainValue(n.values[k])
	}
	return out
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	c := &Node{
		keys:   make([]string, len(n.keys)),
		values: make(map[string]any, len(n.values)),
	}
	copy(c.keys, n.keys)
	for k, v := range n.values {
		c.values[k] = cloneValue(v)
	}
	return c
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return NodeFromMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeValue(e)
		}
		return out
	default:
		return v
	}
}

func plainValue(v any) any {
	switch t := v.(type) {
	case *Node:
		return t.ToMap()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plainValue(e)
		}
		return out
	default:
		return v
	}
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case *Node:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// mergeDefaults copies every key from defaults missing in target. Mappings
// present on both sides are merged recursively; target values always win.
func mergeDefaults(target, defaults *Node) {
	for _, k := range defaults.keys {
		dv := defaults.values[k]
		if !target.Has(k) {
			target.Set(k, cloneValue(dv))
			continue
		}
		dn, dok := dv.(*Node)
		tn, tok := target.values[k].(*Node)
		if dok && tok {
			mergeDefaults(tn, dn)
		}
	}
}
