// Package group keeps values grouped by an identity key in first-seen order.
package group

import "iter"

// Ordered maps keys to value lists. Keys iterate in the order they were first
// added and values in the order they were added to their key. Keys compare
// with ==, so pointer keys such as *types.TypeName group by identity.
type Ordered[K comparable, V any] struct {
	keys   []K
	index  map[K]int
	values [][]V
}

func New[K comparable, V any]() *Ordered[K, V] {
	return &Ordered[K, V]{index: make(map[K]int)}
}

// Add appends v to the group of k, creating the group when needed.
func (g *Ordered[K, V]) Add(k K, v V) {
	i := g.ensure(k)
	g.values[i] = append(g.values[i], v)
}

func (g *Ordered[K, V]) ensure(k K) int {
	if g.index == nil {
		g.index = make(map[K]int)
	}
	i, ok := g.index[k]
	if !ok {
		i = len(g.keys)
		g.index[k] = i
		g.keys = append(g.keys, k)
		g.values = append(g.values, nil)
	}
	return i
}

func (g *Ordered[K, V]) Len() int {
	return len(g.keys)
}

// All yields every group in first-seen order.
func (g *Ordered[K, V]) All() iter.Seq2[K, []V] {
	return func(yield func(K, []V) bool) {
		for i, k := range g.keys {
			if !yield(k, g.values[i]) {
				return
			}
		}
	}
}
