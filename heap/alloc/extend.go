package alloc

import (
	"fmt"

	"github.com/joshuapare/umheap/internal/format"
)

// extend grows the heap by words 4-byte words, rounded up to an even count,
// formats the grant as one free block followed by a fresh epilogue, and
// returns the block after coalescing it with a free predecessor.
//
// The old epilogue header becomes the header of the new block, so the
// previous last block's footer is still in place for backward coalescing.
func (h *Heap) extend(words int) (Ptr, error) {
	size := format.EvenWords(words) * format.WordSize
	if uint64(h.end)+uint64(size) > maxBreak {
		return Nil, fmt.Errorf("extend by %d bytes at break %d: %w", size, h.end, ErrNoMemory)
	}

	old, err := h.host.Sbrk(size)
	if err != nil {
		h.log.Debug("extend refused", "bytes", size, "brk", h.end, "err", err)
		return Nil, fmt.Errorf("extend by %d bytes: %w", size, asNoMemory(err))
	}
	if Ptr(old) != h.end {
		return Nil, fmt.Errorf("extend: host break %d does not match heap end %d: %w", old, h.end, ErrCorrupt)
	}

	bp := Ptr(old)
	h.setTags(bp, format.Tag{Size: uint32(size)})
	h.end = bp + Ptr(size)
	h.putEpilogue(h.end)

	h.stats.ExtendCalls++
	h.stats.ExtendBytes += int64(size)
	h.log.Debug("heap extended", "bytes", size, "brk", h.end)
	if h.onGrow != nil {
		h.onGrow(size)
	}

	return h.coalesce(bp), nil
}
