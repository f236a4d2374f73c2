package group

import (
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrdered_FirstSeenOrder(t *testing.T) {
	g := New[string, int]()
	g.Add("b", 1)
	g.Add("a", 2)
	g.Add("b", 3)
	g.Add("c", 4)

	assert.Equal(t, 3, g.Len())
	got := collectAll(g)
	assert.Equal(t, []int{1, 3}, got["b"])
	assert.Equal(t, []int{2}, got["a"])
	assert.Equal(t, []int{4}, got["c"])

	var seen []string
	for k := range g.All() {
		seen = append(seen, k)
		if k == "a" {
			break
		}
	}
	assert.Equal(t, []string{"b", "a"}, seen)
}

func TestOrdered_IdentityNotName(t *testing.T) {
	first := types.NewPackage("example.com/one", "one")
	second := types.NewPackage("example.com/two", "two")
	a := types.NewTypeName(token.NoPos, first, "Model", nil)
	b := types.NewTypeName(token.NoPos, second, "Model", nil)
	require.Equal(t, a.Name(), b.Name())

	var g Ordered[*types.TypeName, string]
	g.Add(a, "x")
	g.Add(b, "y")
	g.Add(a, "z")

	require.Equal(t, 2, g.Len())
	got := collectAll(&g)
	assert.Equal(t, []string{"x", "z"}, got[a])
	assert.Equal(t, []string{"y"}, got[b])
}

func collectAll[K comparable, V any](g *Ordered[K, V]) map[K][]V {
	out := make(map[K][]V)
	for k, vs := range g.All() {
		out[k] = vs
	}
	return out
}
