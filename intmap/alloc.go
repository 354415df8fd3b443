package intmap

import (
	"errors"
	"fmt"
)

// ErrAlloc is returned (wrapped) whenever an Allocator refuses to reserve
// storage for a node array or an exported slice.
var ErrAlloc = errors.New("intmap: allocation failed")

// Allocator accounts for the storage a Map takes. Every node array and every
// exported slice is reserved before it is allocated; node arrays are released
// when the map frees them.
type Allocator interface {
	Reserve(size uintptr) error
	Release(size uintptr)
}

// Heap is the default Allocator. It never refuses.
type Heap struct{}

func (Heap) Reserve(uintptr) error { return nil }
func (Heap) Release(uintptr)       {}

// Limit is an Allocator with a fixed byte budget.
type Limit struct {
	max  uintptr
	used uintptr
}

// NewLimit returns an Allocator that refuses reservations once more than max
// bytes would be in use.
func NewLimit(max uintptr) *Limit {
	return &Limit{max: max}
}

func (l *Limit) Reserve(size uintptr) error {
	if size > l.max-l.used {
		return fmt.Errorf("reserve %d bytes (%d of %d in use): %w", size, l.used, l.max, ErrAlloc)
	}

	l.used += size

	return nil
}

func (l *Limit) Release(size uintptr) {
	if size > l.used {
		panic("intmap: release of more bytes than reserved")
	}

	l.used -= size
}

// InUse returns the number of bytes currently reserved.
func (l *Limit) InUse() uintptr {
	return l.used
}

// Max returns the byte budget.
func (l *Limit) Max() uintptr {
	return l.max
}
