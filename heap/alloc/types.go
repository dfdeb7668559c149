package alloc

import (
	"log/slog"

	"github.com/joshuapare/umheap/heap/dirty"
	"github.com/joshuapare/umheap/internal/format"
)

// Ptr is a payload address: a byte offset into the heap region.
type Ptr uint32

// Nil is the null payload address.
const Nil Ptr = 0

// Host is the program-break primitive the allocator grows through.
// *heap.Region implements it.
type Host interface {
	// Sbrk grows the region by n bytes and returns the previous break.
	// Failure must leave the region unchanged.
	Sbrk(n int) (old int, err error)

	// Bytes returns the current [0, break) view. It may change after Sbrk.
	Bytes() []byte
}

// DirtyTracker is a type alias for the canonical interface defined in heap/dirty.
type DirtyTracker = dirty.DirtyTracker

// Block describes one block during a heap walk.
type Block struct {
	Ptr       Ptr    // payload offset
	Size      uint32 // block size including header and footer
	Allocated bool
}

// Payload returns the usable bytes of the block.
func (b Block) Payload() int { return int(b.Size) - format.DoubleWord }

// Option configures a Heap.
type Option func(*Heap)

// WithLogger routes allocator tracing to l instead of the global logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Heap) {
		if l != nil {
			h.log = l
		}
	}
}

// WithDirtyTracker reports every tag write and realloc copy to dt.
func WithDirtyTracker(dt DirtyTracker) Option {
	return func(h *Heap) { h.dt = dt }
}

// WithGrowHook calls fn with the granted byte count after every successful
// heap extension.
func WithGrowHook(fn func(granted int)) Option {
	return func(h *Heap) { h.onGrow = fn }
}
