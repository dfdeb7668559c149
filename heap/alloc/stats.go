package alloc

import (
	"fmt"
	"io"

	"github.com/joshuapare/umheap/internal/format"
)

// Stats holds allocator counters since the heap was created.
type Stats struct {
	AllocCalls       int   // Total Alloc() calls, including Alloc(0) and those made by Realloc
	AllocFastPath    int   // Allocations served by find-fit
	AllocSlowPath    int   // Allocations that required an extension
	FailedAllocs     int   // Allocations that returned an error
	FreeCalls        int   // Total Free() calls
	ReallocCalls     int   // Total Realloc() calls
	ExtendCalls      int   // Successful heap extensions, the initial chunk included
	ExtendBytes      int64 // Total bytes granted by the host
	SplitCount       int   // Placements that split off a free remainder
	CoalesceForward  int   // Merges with a free successor
	CoalesceBackward int   // Merges with a free predecessor
}

// Stats returns a copy of the allocator counters.
func (h *Heap) Stats() Stats { return h.stats }

// Usage summarises the current block population.
type Usage struct {
	HeapBytes       int // break minus bootstrap base, sentinels included
	Blocks          int
	AllocatedBlocks int
	FreeBlocks      int
	AllocatedBytes  int // block bytes, tags included
	FreeBytes       int
	PayloadBytes    int // usable bytes across allocated blocks
	LargestFree     int
}

// Walk calls fn for every real block in address order until fn returns false.
// Sentinels are not reported.
func (h *Heap) Walk(fn func(Block) bool) {
	if !h.bootstrapped {
		return
	}
	data := h.host.Bytes()
	for bp := h.first; bp < h.end; {
		t := h.header(data, bp)
		if t.Size == 0 {
			return
		}
		if !fn(Block{Ptr: bp, Size: t.Size, Allocated: t.Allocated}) {
			return
		}
		bp += Ptr(t.Size)
	}
}

// Usage walks the heap and returns block and byte totals.
func (h *Heap) Usage() Usage {
	u := Usage{HeapBytes: int(h.end) - h.base}
	h.Walk(func(b Block) bool {
		u.Blocks++
		if b.Allocated {
			u.AllocatedBlocks++
			u.AllocatedBytes += int(b.Size)
			u.PayloadBytes += b.Payload()
		} else {
			u.FreeBlocks++
			u.FreeBytes += int(b.Size)
			u.LargestFree = max(u.LargestFree, int(b.Size))
		}
		return true
	})
	return u
}

// Check verifies the heap layout:
//   - prologue header and footer are 8|allocated, epilogue header is 0|allocated
//   - every block is aligned, at least MinBlockSize, and ends inside the heap
//   - every header equals its footer
//   - no two free blocks are adjacent
//   - the block chain lands exactly on the epilogue
//
// Violations are reported as ErrCorrupt with the offending offset.
func (h *Heap) Check() error {
	if !h.bootstrapped {
		return nil
	}
	data := h.host.Bytes()
	if len(data) != int(h.end) {
		return fmt.Errorf("heap end %d does not match break %d: %w", h.end, len(data), ErrCorrupt)
	}

	prologue := format.Tag{Size: format.PrologueSize, Allocated: true}
	pro := h.first - format.PrologueSize
	if got := h.header(data, pro); got != prologue {
		return fmt.Errorf("prologue header %v: %w", got, ErrCorrupt)
	}
	if got := format.ReadTag(data, ftrOff(pro, format.PrologueSize)); got != prologue {
		return fmt.Errorf("prologue footer %v: %w", got, ErrCorrupt)
	}
	if got := h.header(data, h.end); got != (format.Tag{Allocated: true}) {
		return fmt.Errorf("epilogue header %v at %d: %w", got, hdrOff(h.end), ErrCorrupt)
	}

	prevFree := false
	bp := h.first
	for bp < h.end {
		hdr, err := format.CheckedTag(data, hdrOff(bp))
		if err != nil {
			return fmt.Errorf("block %d: %v: %w", bp, err, ErrCorrupt)
		}
		if !format.IsAligned(int(bp)) {
			return fmt.Errorf("block %d: payload not %d-byte aligned: %w", bp, format.Alignment, ErrCorrupt)
		}
		if hdr.Size < format.MinBlockSize {
			return fmt.Errorf("block %d: size %d below minimum: %w", bp, hdr.Size, ErrCorrupt)
		}
		if uint64(bp)+uint64(hdr.Size) > uint64(h.end) {
			return fmt.Errorf("block %d: size %d overruns heap end %d: %w", bp, hdr.Size, h.end, ErrCorrupt)
		}
		if ftr := format.ReadTag(data, ftrOff(bp, hdr.Size)); ftr != hdr {
			return fmt.Errorf("block %d: header %v != footer %v: %w", bp, hdr, ftr, ErrCorrupt)
		}
		if hdr.Free() && prevFree {
			return fmt.Errorf("block %d: adjacent free blocks: %w", bp, ErrCorrupt)
		}
		prevFree = hdr.Free()
		bp += Ptr(hdr.Size)
	}
	if bp != h.end {
		return fmt.Errorf("block chain ends at %d, epilogue at %d: %w", bp, h.end, ErrCorrupt)
	}
	return nil
}

// Dump writes a human-readable block listing to w.
func (h *Heap) Dump(w io.Writer) {
	u := h.Usage()
	fmt.Fprintf(w, "Heap: brk=%d blocks=%d used=%d free=%d largest-free=%d\n",
		h.end, u.Blocks, u.AllocatedBlocks, u.FreeBlocks, u.LargestFree)
	h.Walk(func(b Block) bool {
		state := "free"
		if b.Allocated {
			state = "used"
		}
		fmt.Fprintf(w, "  ptr=%-8d size=%-8d %s\n", b.Ptr, b.Size, state)
		return true
	})
}
