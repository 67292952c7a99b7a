// SPDX-License-Identifier: MIT

package structurate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeKeepsInsertionOrder(t *testing.T) {
	n := NewNode()
	n.Set("c", 1)
	n.Set("a", 2)
	n.Set("b", 3)
	n.Set("c", 4)

	assert.Equal(t, []string{"c", "a", "b"}, n.Keys())
	assert.Equal(t, 4, n.Get("c"))

	n.Remove("a")
	n.Remove("missing")
	assert.Equal(t, []string{"c", "b"}, n.Keys())
	assert.Equal(t, 2, n.Len())
	assert.False(t, n.Has("a"))
}

func TestNodeHasNilValue(t *testing.T) {
	n := NewNode()
	n.Set("empty", nil)
	assert.True(t, n.Has("empty"))
	assert.Nil(t, n.Get("empty"))
}

func TestNodeFromMapSortsAndNests(t *testing.T) {
	n := NodeFromMap(map[string]any{
		"zeta":  1,
		"alpha": map[string]any{"y": 1, "x": 2},
		"list":  []any{map[string]any{"k": "v"}},
	})
	assert.Equal(t, []string{"alpha", "list", "zeta"}, n.Keys())

	alpha, ok := n.Get("alpha").(*Node)
	require.True(t, ok)
	assert.Equal(t, []string{"x", "y"}, alpha.Keys())

	list := n.Get("list").([]any)
	_, ok = list[0].(*Node)
	assert.True(t, ok, "maps inside sequences are stored as nodes")
}

func TestNodeChildReplacesScalar(t *testing.T) {
	n := NewNode()
	n.Set("server", "not a mapping")
	child := n.Node("server")
	child.Set("port", 80)

	assert.Same(t, child, n.Node("server"))
	assert.Equal(t, map[string]any{"server": map[string]any{"port": 80}}, n.ToMap())
}

func TestNodeCloneIsDeep(t *testing.T) {
	n := NewNode()
	n.Node("server").Set("port", 80)
	n.Set("tags", []any{"a"})

	c := n.Clone()
	c.Node("server").Set("port", 81)
	c.Get("tags").([]any)[0] = "b"

	assert.Equal(t, 80, n.Node("server").Get("port"))
	assert.Equal(t, "a", n.Get("tags").([]any)[0])
}

func TestNodeAsMapIsShallow(t *testing.T) {
	n := NewNode()
	child := n.Node("server")
	m := n.AsMap()
	assert.Same(t, child, m["server"])
}

func TestMergeDefaults(t *testing.T) {
	target := NewNode()
	target.Set("port", 9090)
	target.Node("server").Set("debug", true)
	target.Set("mode", "custom")

	defaults := NewNode()
	defaults.Set("name", "vortex")
	defaults.Set("port", 8080)
	defaults.Node("server").Set("host", "localhost")
	defaults.Node("server").Set("debug", false)
	defaults.Node("mode").Set("nested", 1)

	mergeDefaults(target, defaults)

	assert.Equal(t, map[string]any{
		"port": 9090,
		"server": map[string]any{
			"debug": true,
			"host":  "localhost",
		},
		"mode": "custom",
		"name": "vortex",
	}, target.ToMap())
	assert.Equal(t, []string{"port", "server", "mode", "name"}, target.Keys())

	// defaults must not be aliased into the target
	defaults.Node("server").Set("host", "changed")
	assert.Equal(t, "localhost", target.Node("server").Get("host"))
}
