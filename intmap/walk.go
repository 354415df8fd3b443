package intmap

import (
	"fmt"
	"unsafe"
)

// RefCounter is a value carrying its own reference count. Only increments are
// done by the map; releasing a reference is up to the caller since every value
// kind does it differently.
type RefCounter interface {
	comparable
	IncRef()
}

// Walk calls fn on every value, top level first, in ascending slot order and
// depth-first. It returns the sum of all fn results.
func (m *Map[V]) Walk(fn func(V) int) int {
	m.mustLive()

	if m.size == 0 {
		return 0
	}

	return walk(m.slots, fn)
}

// WalkN calls fn on the values in Walk order, subtracting each result from n,
// and stops as soon as n drops to zero. It returns what is left of n.
func (m *Map[V]) WalkN(n int, fn func(V) int) int {
	m.mustLive()

	if m.size != 0 {
		walkN(m.slots, &n, fn)
	}

	return n
}

// Range calls fn with every key and value in Walk order until fn returns
// false.
func (m *Map[V]) Range(fn func(key uint64, val V) bool) {
	m.mustLive()

	if m.size != 0 {
		walkKeys(m.slots, 0, 1, fn)
	}
}

// Slice returns all values in Walk order. The slice has exactly Len()
// elements.
func (m *Map[V]) Slice() ([]V, error) {
	return m.slice(nil)
}

// SliceRef is like Slice but also increments the reference count of every
// value it returns.
func SliceRef[V RefCounter](m *Map[V]) ([]V, error) {
	return m.slice(func(val V) { val.IncRef() })
}

func (m *Map[V]) slice(ref func(V)) ([]V, error) {
	m.mustLive()

	var (
		zero V
		size = uintptr(m.size) * unsafe.Sizeof(zero)
	)

	if err := m.alloc.Reserve(size); err != nil {
		return nil, fmt.Errorf("slice of %d values: %w", m.size, err)
	}

	// the slice is handed over to the caller
	m.alloc.Release(size)

	vals := make([]V, 0, m.size)

	if m.size == 0 {
		return vals, nil
	}

	walk(m.slots, func(val V) int {
		vals = append(vals, val)
		if ref != nil {
			ref(val)
		}
		return 0
	})

	return vals, nil
}

func walk[V comparable](arr *[nodeSize]node[V], fn func(V) int) (sum int) {
	var zero V

	for i := range arr {
		nd := &arr[i]

		if nd.val != zero {
			sum += fn(nd.val)
		}

		if nd.kids != nil {
			sum += walk(nd.kids, fn)
		}
	}

	return sum
}

func walkN[V comparable](arr *[nodeSize]node[V], n *int, fn func(V) int) {
	var zero V

	for i := 0; *n > 0 && i < nodeSize; i++ {
		nd := &arr[i]

		if nd.val != zero {
			if *n -= fn(nd.val); *n <= 0 {
				return
			}
		}

		if nd.kids != nil {
			walkN(nd.kids, n, fn)
		}
	}
}

// walkKeys rebuilds keys on the way down: a slot at index i of an array
// reached with (base, mult) holds key base+mult*i, its kids are reached with
// (base+mult*(i+32), mult*32).
func walkKeys[V comparable](arr *[nodeSize]node[V], base, mult uint64, fn func(uint64, V) bool) bool {
	var zero V

	for i := range arr {
		var (
			nd    = &arr[i]
			digit = uint64(i)
		)

		if nd.val != zero && !fn(base+mult*digit, nd.val) {
			return false
		}

		if nd.kids != nil && !walkKeys(nd.kids, base+mult*(digit+nodeSize), mult*nodeSize, fn) {
			return false
		}
	}

	return true
}
