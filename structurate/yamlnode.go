// SPDX-License-Identifier: MIT

package structurate

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

const mergeTag = "!!merge"

// nodeFromYAML converts a decoded YAML document into a Node, keeping mapping
// order. A document whose root is not a mapping yields an empty node.
func nodeFromYAML(doc *yaml.Node) (*Node, error) {
	v, err := valueFromYAML(doc)
	if err != nil {
		return nil, err
	}
	if n, ok := v.(*Node); ok {
		return n, nil
	}
	return NewNode(), nil
}

func valueFromYAML(n *yaml.Node) (any, error) {
	if n == nil {
		return nil, nil
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return valueFromYAML(n.Content[0])
	case yaml.AliasNode:
		return valueFromYAML(n.Alias)
	case yaml.MappingNode:
		return mappingFromYAML(n)
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := valueFromYAML(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: decode scalar: %w", n.Line, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node kind %d", n.Line, n.Kind)
	}
}

func mappingFromYAML(n *yaml.Node) (*Node, error) {
	out := NewNode()
	var merges []*Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valNode := n.Content[i], n.Content[i+1]
		if keyNode.Kind == yaml.AliasNode {
			keyNode = keyNode.Alias
		}
		if isMergeKey(keyNode) {
			m, err := mergeSources(valNode)
			if err != nil {
				return nil, err
			}
			merges = append(merges, m...)
			continue
		}
		v, err := valueFromYAML(valNode)
		if err != nil {
			return nil, err
		}
		out.Set(keyNode.Value, v)
	}
	// Explicit keys win over merged ones regardless of position.
	for _, m := range merges {
		for _, k := range m.Keys() {
			if !out.Has(k) {
				out.Set(k, cloneValue(m.Get(k)))
			}
		}
	}
	return out, nil
}

func isMergeKey(n *yaml.Node) bool {
	if n.Tag == mergeTag {
		return true
	}
	return n.Kind == yaml.ScalarNode && n.Style == 0 && n.Value == "<<" && n.Tag == ""
}

func mergeSources(n *yaml.Node) ([]*Node, error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	switch n.Kind {
	case yaml.MappingNode:
		m, err := mappingFromYAML(n)
		if err != nil {
			return nil, err
		}
		return []*Node{m}, nil
	case yaml.SequenceNode:
		var out []*Node
		for _, item := range n.Content {
			m, err := mergeSources(item)
			if err != nil {
				return nil, err
			}
			out = append(out, m...)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("line %d: merge value must be a mapping", n.Line)
	}
}

// valueToYAML builds a YAML node tree for v. Child nodes keep insertion order.
func valueToYAML(v any) (*yaml.Node, error) {
	switch t := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case *Node:
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range t.keys {
			keyNode, err := scalarToYAML(k)
			if err != nil {
				return nil, err
			}
			valNode, err := valueToYAML(t.values[k])
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			out.Content = append(out.Content, keyNode, valNode)
		}
		return out, nil
	case map[string]any:
		return valueToYAML(NodeFromMap(t))
	case []any:
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i, item := range t {
			itemNode, err := valueToYAML(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out.Content = append(out.Content, itemNode)
		}
		return out, nil
	default:
		return scalarToYAML(t)
	}
}

func scalarToYAML(v any) (*yaml.Node, error) {
	out := &yaml.Node{}
	if err := out.Encode(v); err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	return out, nil
}
