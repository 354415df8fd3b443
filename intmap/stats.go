package intmap

import (
	"github.com/hideo55/go-popcount"
)

// Stats describes the shape of a Map.
type Stats struct {
	Len    int     // stored values
	Arrays int     // live child arrays, the top level excluded
	Depth  int     // deepest level holding values, the top level is 0
	Slots  int     // occupied slots (value or kids) over all arrays
	Bytes  uintptr // bytes taken by node arrays, the top level included
}

// Stats walks the map and reports its shape.
func (m *Map[V]) Stats() Stats {
	m.mustLive()

	st := Stats{
		Len:   m.size,
		Bytes: m.arrSize,
	}

	m.stats(m.slots, 0, &st)

	return st
}

func (m *Map[V]) stats(arr *[nodeSize]node[V], depth int, st *Stats) {
	var (
		zero   V
		bitmap uint64 // occupied slots
	)

	for i := range arr {
		nd := &arr[i]

		if nd.val != zero {
			bitmap |= 1 << i

			if depth > st.Depth {
				st.Depth = depth
			}
		}

		if nd.kids != nil {
			bitmap |= 1 << i
			st.Arrays++
			st.Bytes += m.arrSize

			m.stats(nd.kids, depth+1, st)
		}
	}

	st.Slots += int(popcount.Count(bitmap))
}
