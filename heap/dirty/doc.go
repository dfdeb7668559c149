// Package dirty tracks which byte ranges of a heap region were modified and
// flushes them to the backing file.
//
// The allocator reports every boundary-tag write and every realloc copy
// through the DirtyTracker interface. Callers report their own payload
// writes with Heap.MarkDirty. At flush time the ranges are page-aligned,
// sorted, merged and written out:
//
//   - linux: msync(MS_SYNC) per merged range, fdatasync on Sync
//   - darwin: msync of the whole mapping, fsync or F_FULLFSYNC on Sync
//   - other platforms: pwrite of each merged range, fsync on Sync
//
// Regions that are not file-backed flush as a no-op, so the same code path
// serves in-memory heaps.
//
// # Usage
//
//	r, _ := heap.OpenFile("heap.img", 64<<20)
//	dt := dirty.NewTracker(r)
//	h, _ := alloc.New(r, alloc.WithDirtyTracker(dt))
//	p, _ := h.Alloc(128)
//	copy(h.Bytes(p), data)
//	h.MarkDirty(p)
//	_ = dt.Sync(ctx, false)
//
// Tracker is not thread-safe.
package dirty
