package alloc

import (
	"errors"

	"github.com/joshuapare/umheap/internal/format"
)

// Boundary-tag addressing. bp is a payload offset; its header sits one word
// before it and its footer one double word before the next block.

func hdrOff(bp Ptr) int { return int(bp) - format.WordSize }

func ftrOff(bp Ptr, size uint32) int { return int(bp) + int(size) - format.DoubleWord }

// prevFtrOff is the footer of the block physically before bp.
func prevFtrOff(bp Ptr) int { return int(bp) - format.DoubleWord }

func (h *Heap) header(data []byte, bp Ptr) format.Tag {
	return format.ReadTag(data, hdrOff(bp))
}

// setTags writes t to both the header and the footer of bp.
func (h *Heap) setTags(bp Ptr, t format.Tag) {
	data := h.host.Bytes()
	format.PutTag(data, hdrOff(bp), t)
	format.PutTag(data, ftrOff(bp, t.Size), t)
	h.touch(hdrOff(bp), format.WordSize)
	h.touch(ftrOff(bp, t.Size), format.WordSize)
}

// putEpilogue writes the zero-size allocated header that terminates the heap
// at end.
func (h *Heap) putEpilogue(end Ptr) {
	format.PutTag(h.host.Bytes(), hdrOff(end), format.Tag{Allocated: true})
	h.touch(hdrOff(end), format.WordSize)
}

func (h *Heap) touch(off, n int) {
	if h.dt != nil {
		h.dt.Add(off, n)
	}
}

func isNoMemory(err error) bool {
	return errors.Is(err, ErrNoMemory)
}
