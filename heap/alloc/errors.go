package alloc

import (
	"errors"

	"github.com/joshuapare/umheap/heap"
)

var (
	// ErrNoMemory indicates the host refused to grow the heap.
	ErrNoMemory = heap.ErrNoMemory

	// ErrBadPtr indicates an offset outside the heap or off the alignment grid.
	ErrBadPtr = errors.New("alloc: bad pointer")

	// ErrTooLarge indicates a request that cannot be represented in a block tag.
	ErrTooLarge = errors.New("alloc: request too large")

	// ErrCorrupt indicates a heap scan found a broken invariant.
	ErrCorrupt = errors.New("alloc: heap corrupt")
)
