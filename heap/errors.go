package heap

import "errors"

var (
	// ErrNoMemory indicates the region cannot grow by the requested amount.
	ErrNoMemory = errors.New("heap: out of memory")

	// ErrClosed indicates an operation on a closed region.
	ErrClosed = errors.New("heap: region closed")

	// ErrReadOnly indicates an attempt to grow a snapshot region.
	ErrReadOnly = errors.New("heap: region is read-only")
)
