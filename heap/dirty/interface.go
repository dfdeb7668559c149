package dirty

// DirtyTracker is the minimal interface for reporting modified byte ranges.
// The allocator depends only on this.
type DirtyTracker interface {
	// Add marks a byte range as dirty.
	// off is the offset from the start of the region, length is the number of bytes.
	Add(off, length int)
}

// Target is the region a Tracker flushes. *heap.Region satisfies it.
type Target interface {
	Bytes() []byte
	FD() int
	Mapped() bool
}
