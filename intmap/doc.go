// Package intmap defines a map from uint64 keys to externally owned values,
// implemented as a base-32 radix trie.
//
// Keys are consumed least-significant digit first:
//
//	digit = key % 32
//	key   = key / 32
//
// The handle owns the top level (32 slots). When the remaining key is not
// zero, descending to the next level continues with key-1, so that "no more
// digits" and "next digit is zero" are told apart.
//
// Each slot is a node:
//
//   - val  - the stored value; the zero value of V means "absent";
//   - kids - an array of 32 nodes for the next digit, nil when empty;
//   - size - number of values reachable through kids (not kept at the top level).
//
// Child arrays are allocated on the first insert below a node and released as
// soon as its size drops back to zero, so the memory taken follows the live
// content.
//
// Example (keys 1, 33 and 1057):
//
//	top[1].val = v1
//	top[1].kids[0].val = v33             33 = 1 + 32*(0+1)
//	top[1].kids[0].kids[0].val = v1057   1057 = 1 + 32*(1 + 0 + 32*(0+1))
//
// Values are not owned by the map. The only place the map touches their
// lifetime is through the reference-count hooks of SliceRef and Union and the
// callback of FreeFunc.
//
// A Map is not safe for concurrent use.
package intmap
