// Package alloc implements a malloc/free/realloc allocator over a growable
// heap region.
//
// # Overview
//
// The heap is an implicit list of boundary-tagged blocks. Every block carries
// a 4-byte header and a 4-byte footer holding size|allocated, so the
// allocator can step forward (header) and backward (previous footer) from
// any block without auxiliary indexes:
//
//	 bp-4     bp                       bp+size-8  bp+size-4
//	 +--------+------------------------+----------+
//	 | header | payload (size-8 bytes) | footer   |
//	 +--------+------------------------+----------+
//
// The region opens with a padding word and a zero-payload allocated prologue
// block, and always ends with a zero-size allocated epilogue header. The
// sentinels let coalescing and scanning run without edge checks.
//
// # Allocation Policy
//
//   - Requests are rounded to size+8 aligned to 8 (16 bytes minimum)
//   - Best-fit: one linear scan picks the smallest free block that fits;
//     the lowest address wins ties
//   - A fit is split when the remainder is at least 16 bytes
//   - On a miss the heap grows by max(request, 4096) bytes and the new
//     block is coalesced with a free predecessor before placement
//   - Free coalesces eagerly with both neighbours, so no two free blocks
//     are ever adjacent
//   - Realloc always moves: allocate, copy min(old, new), free
//
// # Hosts
//
// The only system dependency is Host.Sbrk, a program-break style primitive.
// heap.Region provides in-memory, reserved-mmap and file-backed hosts:
//
//	r := heap.NewMem(16 << 20)
//	h, err := alloc.New(r)
//	if err != nil {
//	    return err
//	}
//
//	p, err := h.Alloc(100)
//	if err != nil {
//	    return err // errors.Is(err, alloc.ErrNoMemory)
//	}
//	copy(h.Bytes(p), payload)
//
//	p, err = h.Realloc(p, 40)
//	_ = h.Free(p)
//
// # Addresses
//
// Ptr values are byte offsets into the region, always multiples of 8. Nil is
// the zero offset, which is padding and never a payload. Slices returned by
// Bytes are only valid until the next operation that may grow the heap.
//
// # Caller Contract
//
// Freeing or reallocating a pointer that Alloc did not return, or freeing it
// twice, is undefined and not detected. Free and Realloc only reject offsets
// that fall outside the heap or are misaligned.
//
// # Thread Safety
//
// Heap instances are not thread-safe. Independent heaps may be used from
// different goroutines.
package alloc
