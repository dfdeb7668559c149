package alloc

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/joshuapare/umheap/internal/buf"
	"github.com/joshuapare/umheap/internal/format"
	"github.com/joshuapare/umheap/internal/logger"
)

// maxRequest is the largest payload whose adjusted size fits a tag.
const maxRequest = uint64(format.MaxBlockSize - format.DoubleWord)

// maxBreak bounds the heap so every offset fits in a Ptr.
const maxBreak = math.MaxUint32 &^ format.AlignmentMask

// Heap is a boundary-tag allocator over one host region.
type Heap struct {
	host   Host
	dt     DirtyTracker
	log    *slog.Logger
	onGrow func(int)

	// base is the break at bootstrap; the padding word lives there.
	base int
	// first is the payload offset of the first real block.
	first Ptr
	// end is the epilogue block pointer, which always equals the break.
	end Ptr

	bootstrapped bool
	ready        bool

	stats Stats
}

// New creates a heap on host and runs Init.
func New(host Host, opts ...Option) (*Heap, error) {
	h := newHeap(host, opts)
	if err := h.Init(); err != nil {
		return nil, err
	}
	return h, nil
}

// Attach adopts a heap image already present in host, such as a reopened
// file-backed region. The image must start at offset 0 and pass Check.
func Attach(host Host, opts ...Option) (*Heap, error) {
	h := newHeap(host, opts)
	data := host.Bytes()
	if len(data) < format.BootstrapSize || uint64(len(data)) > maxBreak || !format.IsAligned(len(data)) {
		return nil, fmt.Errorf("attach: region of %d bytes: %w", len(data), ErrCorrupt)
	}
	h.first = format.FirstBlockOffset
	h.end = Ptr(len(data))
	h.bootstrapped = true
	h.ready = true
	if err := h.Check(); err != nil {
		return nil, fmt.Errorf("attach: %w", err)
	}
	h.log.Debug("heap attached", "brk", len(data))
	return h, nil
}

func newHeap(host Host, opts []Option) *Heap {
	h := &Heap{
		host: host,
		log:  logger.L,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Init lays down the prologue and epilogue sentinels and extends the heap by
// one default chunk. Calling Init on a ready heap is a no-op. If the first
// extension fails, a later Init retries only the extension.
func (h *Heap) Init() error {
	if h.ready {
		return nil
	}
	if !h.bootstrapped {
		if err := h.bootstrap(); err != nil {
			return err
		}
	}
	if _, err := h.extend(format.ChunkSize / format.WordSize); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	h.ready = true
	return nil
}

func (h *Heap) bootstrap() error {
	old, err := h.host.Sbrk(format.BootstrapSize)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", asNoMemory(err))
	}
	if !format.IsAligned(old) {
		return fmt.Errorf("bootstrap: host break %d is not %d-byte aligned: %w", old, format.Alignment, ErrBadPtr)
	}

	data := h.host.Bytes()
	format.PutU32(data, old, 0)
	prologue := format.Tag{Size: format.PrologueSize, Allocated: true}
	format.PutTag(data, old+format.WordSize, prologue)
	format.PutTag(data, old+2*format.WordSize, prologue)
	format.PutTag(data, old+3*format.WordSize, format.Tag{Allocated: true})
	h.touch(old, format.BootstrapSize)

	h.base = old
	h.first = Ptr(old + format.FirstBlockOffset)
	h.end = h.first
	h.bootstrapped = true
	return nil
}

// Alloc returns a payload of at least size bytes, aligned to 8.
// Alloc(0) returns Nil and no error.
func (h *Heap) Alloc(size int) (Ptr, error) {
	h.stats.AllocCalls++
	if size == 0 {
		return Nil, nil
	}
	if size < 0 || uint64(size) > maxRequest {
		h.stats.FailedAllocs++
		return Nil, fmt.Errorf("alloc(%d): %w", size, ErrTooLarge)
	}
	if err := h.Init(); err != nil {
		h.stats.FailedAllocs++
		return Nil, err
	}

	asize := uint32(format.AdjustedSize(size))

	if bp, ok := h.findFit(asize); ok {
		h.place(bp, asize)
		h.stats.AllocFastPath++
		return bp, nil
	}

	extendSize := max(asize, format.ChunkSize)
	h.log.Debug("find-fit miss", "request", size, "asize", asize, "extend", extendSize)
	bp, err := h.extend(int(extendSize / format.WordSize))
	if err != nil {
		h.stats.FailedAllocs++
		h.log.Debug("alloc failed", "request", size, "err", err)
		return Nil, fmt.Errorf("alloc(%d): %w", size, err)
	}
	h.place(bp, asize)
	h.stats.AllocSlowPath++
	return bp, nil
}

// Free releases the block at p and coalesces it with free neighbours.
// Free(Nil) is a no-op. Offsets outside the heap or off the alignment grid
// return ErrBadPtr; any other misuse is undefined.
func (h *Heap) Free(p Ptr) error {
	h.stats.FreeCalls++
	if p == Nil {
		return nil
	}
	t, err := h.blockAt(p)
	if err != nil {
		return err
	}
	h.setTags(p, format.Tag{Size: t.Size})
	h.coalesce(p)
	return nil
}

// Realloc moves the payload at p into a fresh block of size bytes and frees
// p. The first min(old payload, size) bytes are preserved. Realloc(p, 0)
// frees p and returns Nil; Realloc(Nil, n) is Alloc(n). When the new block
// cannot be allocated, p is left untouched.
func (h *Heap) Realloc(p Ptr, size int) (Ptr, error) {
	h.stats.ReallocCalls++
	if size == 0 {
		return Nil, h.Free(p)
	}
	if p == Nil {
		return h.Alloc(size)
	}
	old, err := h.blockAt(p)
	if err != nil {
		return Nil, err
	}

	np, err := h.Alloc(size)
	if err != nil {
		return Nil, err
	}

	data := h.host.Bytes()
	n := min(int(old.Size)-format.DoubleWord, size)
	copy(data[int(np):int(np)+n], data[int(p):int(p)+n])
	h.touch(int(np), n)

	if err := h.Free(p); err != nil {
		return Nil, err
	}
	return np, nil
}

// Bytes returns the payload of the allocated block at p, or nil when p is
// not a valid block. The slice covers the whole usable size and is valid
// until the next call that may grow the heap.
func (h *Heap) Bytes(p Ptr) []byte {
	t, err := h.blockAt(p)
	if err != nil {
		return nil
	}
	b, _ := buf.Slice(h.host.Bytes(), int(p), int(t.Size)-format.DoubleWord)
	return b
}

// UsableSize returns the payload capacity of the block at p, or 0 when p is
// not a valid block.
func (h *Heap) UsableSize(p Ptr) int {
	t, err := h.blockAt(p)
	if err != nil {
		return 0
	}
	return int(t.Size) - format.DoubleWord
}

// MarkDirty reports the whole payload of p to the dirty tracker.
func (h *Heap) MarkDirty(p Ptr) {
	if n := h.UsableSize(p); n > 0 {
		h.touch(int(p), n)
	}
}

// Brk returns the current end of the heap (the epilogue block pointer).
func (h *Heap) Brk() Ptr { return h.end }

// blockAt validates p against the heap bounds and returns its header.
func (h *Heap) blockAt(p Ptr) (format.Tag, error) {
	if !h.ready || p < h.first || p >= h.end || !format.IsAligned(int(p)) {
		return format.Tag{}, fmt.Errorf("pointer %d outside heap [%d, %d): %w", p, h.first, h.end, ErrBadPtr)
	}
	t := h.header(h.host.Bytes(), p)
	if t.Size < format.MinBlockSize || uint64(p)+uint64(t.Size) > uint64(h.end) {
		return format.Tag{}, fmt.Errorf("pointer %d: block size %d overruns heap: %w", p, t.Size, ErrBadPtr)
	}
	return t, nil
}

func asNoMemory(err error) error {
	if err == nil {
		return nil
	}
	if isNoMemory(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrNoMemory, err)
}
