package alloc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/umheap/heap"
	"github.com/joshuapare/umheap/internal/format"
)

// newTestHeap creates an in-memory heap with the given break limit.
func newTestHeap(t testing.TB, limit int, opts ...Option) *Heap {
	t.Helper()
	h, err := New(heap.NewMem(limit), opts...)
	require.NoError(t, err)
	assertInvariants(t, h)
	return h
}

// assertInvariants fails the test when the heap layout is broken.
func assertInvariants(t testing.TB, h *Heap) {
	t.Helper()
	require.NoError(t, h.Check())
}

// mustAlloc allocates size bytes and fills the payload with fill.
func mustAlloc(t testing.TB, h *Heap, size int, fill byte) Ptr {
	t.Helper()
	p, err := h.Alloc(size)
	require.NoError(t, err)
	require.NotEqual(t, Nil, p)
	b := h.Bytes(p)
	require.GreaterOrEqual(t, len(b), size)
	for i := range size {
		b[i] = fill
	}
	return p
}

// requireFilled asserts the first n payload bytes of p equal fill.
func requireFilled(t testing.TB, h *Heap, p Ptr, n int, fill byte) {
	t.Helper()
	b := h.Bytes(p)
	require.GreaterOrEqual(t, len(b), n)
	for i := range n {
		if b[i] != fill {
			require.Failf(t, "payload mismatch", "ptr %d byte %d = 0x%02x, want 0x%02x", p, i, b[i], fill)
		}
	}
}

// blockOf returns the tag of the block at p.
func blockOf(h *Heap, p Ptr) format.Tag {
	return h.header(h.host.Bytes(), p)
}

// freeBlocks lists free blocks in address order.
func freeBlocks(h *Heap) []Block {
	var out []Block
	h.Walk(func(b Block) bool {
		if !b.Allocated {
			out = append(out, b)
		}
		return true
	})
	return out
}

// switchHost wraps a region and refuses every Sbrk while fail is set.
type switchHost struct {
	*heap.Region
	fail  bool
	calls int
}

var errHostRefused = errors.New("host refused")

func (s *switchHost) Sbrk(n int) (int, error) {
	s.calls++
	if s.fail {
		return 0, errHostRefused
	}
	return s.Region.Sbrk(n)
}

// rangeRecorder is a DirtyTracker that keeps every reported range.
type rangeRecorder struct {
	ranges [][2]int
}

func (r *rangeRecorder) Add(off, length int) {
	r.ranges = append(r.ranges, [2]int{off, length})
}

func (r *rangeRecorder) covers(off, length int) bool {
	for _, rg := range r.ranges {
		if rg[0] <= off && off+length <= rg[0]+rg[1] {
			return true
		}
	}
	return false
}
