package alloc

import "github.com/joshuapare/umheap/internal/format"

// coalesce merges the free block at bp with a free successor and/or a free
// predecessor and returns the start of the merged block. With both
// neighbours allocated it returns bp unchanged, so calling it on a block that
// is already maximal is harmless.
//
// The prologue footer and the epilogue header are allocated, so the reads
// below never need edge checks.
func (h *Heap) coalesce(bp Ptr) Ptr {
	data := h.host.Bytes()
	size := h.header(data, bp).Size
	prev := format.ReadTag(data, prevFtrOff(bp))
	next := h.header(data, bp+Ptr(size))

	if prev.Allocated && next.Allocated {
		return bp
	}

	if !next.Allocated {
		size += next.Size
		h.stats.CoalesceForward++
	}
	if !prev.Allocated {
		size += prev.Size
		bp -= Ptr(prev.Size)
		h.stats.CoalesceBackward++
	}

	h.setTags(bp, format.Tag{Size: size})
	return bp
}
