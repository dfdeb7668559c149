package alloc

import (
	"math"

	"github.com/joshuapare/umheap/internal/format"
)

// findFit scans every block from the first real block up to the epilogue and
// returns the smallest free block of at least asize bytes. Only a strictly
// smaller candidate replaces the current best, so the lowest address wins
// among equal sizes.
//
// The scan stops at the tracked epilogue offset. A zero-size tag before that
// point means the heap is corrupt; the scan gives up rather than spin.
func (h *Heap) findFit(asize uint32) (Ptr, bool) {
	data := h.host.Bytes()
	best := Nil
	bestSize := uint32(math.MaxUint32)

	for bp := h.first; bp < h.end; {
		t := h.header(data, bp)
		if t.Size == 0 {
			h.log.Warn("zero-size block inside heap", "ptr", bp, "brk", h.end)
			break
		}
		if !t.Allocated && t.Size >= asize && t.Size < bestSize {
			best, bestSize = bp, t.Size
			if t.Size == asize {
				break
			}
		}
		bp += Ptr(t.Size)
	}

	return best, best != Nil
}

// place marks asize bytes of the free block at bp allocated. The remainder
// is split off as a new free block when it can stand on its own (at least
// MinBlockSize); otherwise the whole block is handed out.
func (h *Heap) place(bp Ptr, asize uint32) {
	size := h.header(h.host.Bytes(), bp).Size

	if asize+format.DoubleWord < size {
		h.setTags(bp, format.Tag{Size: asize, Allocated: true})
		h.setTags(bp+Ptr(asize), format.Tag{Size: size - asize})
		h.stats.SplitCount++
		return
	}
	h.setTags(bp, format.Tag{Size: size, Allocated: true})
}
