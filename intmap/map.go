package intmap

import (
	"fmt"
	"unsafe"
)

const (
	nodeBits = 5
	nodeSize = 1 << nodeBits // 32
	nodeMask = nodeSize - 1
)

// Result tells whether Add inserted a new key or replaced a value.
type Result int

const (
	Overwritten Result = iota
	Inserted
)

func (r Result) String() string {
	switch r {
	case Overwritten:
		return "overwritten"
	case Inserted:
		return "inserted"
	}

	return fmt.Sprintf("Result(%d)", int(r))
}

type node[V comparable] struct {
	val  V
	kids *[nodeSize]node[V]
	size int // values reachable through kids
}

// Map maps uint64 keys to values of type V. The zero value of V is never
// stored; it stands for "absent".
type Map[V comparable] struct {
	slots   *[nodeSize]node[V] // nil once freed
	size    int
	alloc   Allocator
	arrSize uintptr
}

// New returns an empty Map backed by the Heap allocator.
func New[V comparable]() (*Map[V], error) {
	return NewWithAllocator[V](Heap{})
}

// NewWithAllocator returns an empty Map charging its storage to alloc.
func NewWithAllocator[V comparable](alloc Allocator) (*Map[V], error) {
	m := &Map[V]{
		alloc:   alloc,
		arrSize: unsafe.Sizeof(node[V]{}) * nodeSize,
	}

	slots, err := m.newArray()
	if err != nil {
		return nil, fmt.Errorf("new map: %w", err)
	}

	m.slots = slots

	return m, nil
}

// Len returns the number of keys in the map.
func (m *Map[V]) Len() int {
	return m.size
}

// Free releases every node array of the map. The map must not be used
// afterwards.
func (m *Map[V]) Free() {
	m.FreeFunc(nil)
}

// FreeFunc calls fn for every stored value (top level first, ascending slots,
// depth-first) and then frees the map like Free does. A nil fn is allowed.
func (m *Map[V]) FreeFunc(fn func(V)) {
	m.mustLive()

	m.freeArray(m.slots, fn)

	m.slots = nil
	m.size = 0
}

// Add associates val with key.
//
// It reports Inserted when the key is new and Overwritten when a previous
// value was replaced. An error wrapping ErrAlloc means a node array could not
// be reserved; the map is left as it was.
func (m *Map[V]) Add(key uint64, val V) (Result, error) {
	m.mustLive()

	var zero V

	if val == zero {
		panic("intmap: add of a zero value")
	}

	nd := &m.slots[key&nodeMask]
	key >>= nodeBits

	if key == 0 {
		if nd.val != zero {
			nd.val = val
			return Overwritten, nil
		}

		nd.val = val
		m.size++

		return Inserted, nil
	}

	res, err := m.add(nd, key-1, val)
	if err != nil {
		return res, fmt.Errorf("add key: %w", err)
	}

	if res == Inserted {
		m.size++
	}

	return res, nil
}

// Get returns the value stored under key.
func (m *Map[V]) Get(key uint64) (V, bool) {
	m.mustLive()

	var (
		zero V
		nd   = &m.slots[key&nodeMask]
	)

	for key >>= nodeBits; key != 0; key >>= nodeBits {
		if nd.kids == nil {
			return zero, false
		}

		key--
		nd = &nd.kids[key&nodeMask]
	}

	return nd.val, nd.val != zero
}

// Pop removes key from the map and returns its value.
func (m *Map[V]) Pop(key uint64) (V, bool) {
	m.mustLive()

	var (
		zero V
		val  V
		nd   = &m.slots[key&nodeMask]
	)

	key >>= nodeBits

	if key == 0 {
		if val = nd.val; val == zero {
			return zero, false
		}

		nd.val = zero
		m.size--

		return val, true
	}

	if nd.kids == nil {
		return zero, false
	}

	val, ok := m.pop(nd, key-1)
	if ok {
		m.size--
	}

	return val, ok
}

func (m *Map[V]) add(parent *node[V], key uint64, val V) (Result, error) {
	if parent.size == 0 {
		kids, err := m.newArray()
		if err != nil {
			return Overwritten, err
		}

		parent.kids = kids
	}

	var (
		zero V
		nd   = &parent.kids[key&nodeMask]
	)

	key >>= nodeBits

	if key == 0 {
		if nd.val != zero {
			nd.val = val
			return Overwritten, nil
		}

		nd.val = val
		parent.size++

		return Inserted, nil
	}

	res, err := m.add(nd, key-1, val)
	if err != nil {
		if parent.size == 0 {
			// the array was reserved above and nothing got linked into it
			m.releaseArray(parent)
		}

		return res, err
	}

	if res == Inserted {
		parent.size++
	}

	return res, nil
}

func (m *Map[V]) pop(parent *node[V], key uint64) (V, bool) {
	var (
		zero V
		val  V
		nd   = &parent.kids[key&nodeMask]
	)

	key >>= nodeBits

	if key == 0 {
		if val = nd.val; val == zero {
			return zero, false
		}

		nd.val = zero
	} else {
		if nd.kids == nil {
			return zero, false
		}

		var ok bool

		if val, ok = m.pop(nd, key-1); !ok {
			return zero, false
		}
	}

	if parent.size--; parent.size == 0 {
		m.releaseArray(parent)
	}

	return val, true
}

func (m *Map[V]) newArray() (*[nodeSize]node[V], error) {
	if err := m.alloc.Reserve(m.arrSize); err != nil {
		return nil, err
	}

	return new([nodeSize]node[V]), nil
}

// releaseArray drops the (empty) kids of a node.
func (m *Map[V]) releaseArray(nd *node[V]) {
	nd.kids = nil
	nd.size = 0
	m.alloc.Release(m.arrSize)
}

func (m *Map[V]) freeArray(arr *[nodeSize]node[V], fn func(V)) {
	var zero V

	for i := range arr {
		nd := &arr[i]

		if fn != nil && nd.val != zero {
			fn(nd.val)
		}

		if nd.kids != nil {
			m.freeArray(nd.kids, fn)
			nd.kids = nil
		}
	}

	m.alloc.Release(m.arrSize)
}

func (m *Map[V]) mustLive() {
	if m.slots == nil {
		panic("intmap: use of a freed map")
	}
}
