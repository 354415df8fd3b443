package intmap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// object is a reference counted value like the ones stored by callers.
type object struct {
	name string
	ref  uint16
}

func (o *object) IncRef() {
	o.ref++
}

func (o *object) DecRef() {
	o.ref--
}

func newObject(name string) *object {
	return &object{name: name, ref: 1}
}

func mustNew[V comparable](t testing.TB, alloc Allocator) *Map[V] {
	t.Helper()

	m, err := NewWithAllocator[V](alloc)
	require.NoError(t, err)

	return m
}

// requireConsistent checks the size bookkeeping of every node against the
// values actually reachable.
func requireConsistent[V comparable](t testing.TB, m *Map[V]) {
	t.Helper()

	var (
		zero  V
		total int
	)

	for i := range m.slots {
		nd := &m.slots[i]

		if nd.val != zero {
			total++
		}

		if nd.kids != nil {
			total += countNode(t, nd)
		} else {
			require.Zero(t, nd.size, "top slot %d", i)
		}
	}

	require.Equal(t, total, m.Len())
}

func countNode[V comparable](t testing.TB, parent *node[V]) int {
	t.Helper()

	var (
		zero  V
		total int
	)

	for i := range parent.kids {
		nd := &parent.kids[i]

		if nd.val != zero {
			total++
		}

		if nd.kids != nil {
			total += countNode(t, nd)
		} else {
			require.Zero(t, nd.size)
		}
	}

	require.Equal(t, parent.size, total)
	require.NotZero(t, total, "empty child array kept alive")

	return total
}
