package intmap

// Union merges src into m and consumes src: src must not be used afterwards.
//
// Subtrees missing in m are moved over as a whole. A key present in both maps
// is expected to hold the very same value, for which the caller took an extra
// reference when putting it into src; that reference is given back through
// decref (which may be nil when there is nothing to release). The value kept
// in m is not touched.
//
// Both maps must share the same Allocator.
func (m *Map[V]) Union(src *Map[V], decref func(V)) {
	m.mustLive()
	src.mustLive()

	switch {
	case m == src:
		panic("intmap: union of a map with itself")
	case m.alloc != src.alloc:
		panic("intmap: union of maps with different allocators")
	}

	if src.size != 0 {
		m.size += m.union(m.slots, src.slots, decref)
	}

	src.alloc.Release(src.arrSize)
	src.slots = nil
	src.size = 0
}

// union moves the content of src into dst and returns the number of values
// dst has gained. Every array of src that is not moved as a whole is released.
func (m *Map[V]) union(dst, src *[nodeSize]node[V], decref func(V)) (added int) {
	var zero V

	for i := range src {
		var (
			d = &dst[i]
			s = &src[i]
		)

		if s.val != zero {
			if d.val != zero {
				// same object: drop the reference held for src
				if decref != nil {
					decref(s.val)
				}
			} else {
				d.val = s.val
				added++
			}

			s.val = zero
		}

		if s.kids == nil {
			continue
		}

		if d.kids != nil {
			n := m.union(d.kids, s.kids, decref)
			d.size += n
			added += n

			m.releaseArray(s)
		} else {
			d.kids, d.size = s.kids, s.size
			added += s.size

			s.kids, s.size = nil, 0
		}
	}

	return added
}
