package heap

import (
	"fmt"
	"os"

	"github.com/joshuapare/umheap/internal/buf"
)

// DefaultLimit is the break limit used when a constructor is given a
// non-positive limit.
const DefaultLimit = 64 << 20

type regionKind uint8

const (
	kindMem regionKind = iota
	kindAnon
	kindFile
	kindSnapshot
)

func (k regionKind) String() string {
	switch k {
	case kindAnon:
		return "anon"
	case kindFile:
		return "file"
	case kindSnapshot:
		return "snapshot"
	default:
		return "mem"
	}
}

// Region is a contiguous, grow-only byte range with a movable break.
type Region struct {
	kind  regionKind
	f     *os.File
	data  []byte // reservation (mem, anon) or current mapping (file)
	brk   int
	limit int

	// committed is the page-aligned prefix of an anonymous reservation that
	// has been made readable and writable.
	committed int

	// unmap releases a snapshot mapping.
	unmap func() error

	closed bool
}

// NewMem returns an in-memory region that can grow up to limit bytes.
// The backing array is allocated once and never moves.
func NewMem(limit int) *Region {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Region{
		kind:  kindMem,
		data:  make([]byte, 0, limit),
		limit: limit,
	}
}

// Bytes returns the current [0, Brk) view of the region.
func (r *Region) Bytes() []byte {
	if r == nil || r.closed {
		return nil
	}
	return r.data[:r.brk:r.brk]
}

// Brk returns the current break offset.
func (r *Region) Brk() int { return r.brk }

// Limit returns the maximum break.
func (r *Region) Limit() int { return r.limit }

// Kind returns "mem", "anon" or "file".
func (r *Region) Kind() string { return r.kind.String() }

// FD returns the backing file descriptor, or -1 for anonymous regions.
func (r *Region) FD() int {
	if r == nil || r.f == nil {
		return -1
	}
	return int(r.f.Fd())
}

// Mapped reports whether the region is a shared file mapping whose pages
// must be flushed with msync to reach the file.
func (r *Region) Mapped() bool {
	return r != nil && r.kind == kindFile && mmapSupported
}

// Sbrk advances the break by n bytes and returns the previous break.
// New bytes are zero. A request past the limit fails with ErrNoMemory and
// leaves the region untouched. Sbrk(0) reports the current break.
func (r *Region) Sbrk(n int) (int, error) {
	if r == nil || r.closed {
		return 0, ErrClosed
	}
	if r.kind == kindSnapshot && n != 0 {
		return 0, fmt.Errorf("sbrk(%d): %w", n, ErrReadOnly)
	}
	if n < 0 {
		return 0, fmt.Errorf("sbrk(%d): negative increment: %w", n, ErrNoMemory)
	}
	old := r.brk
	if n == 0 {
		return old, nil
	}
	newBrk, err := buf.End(r.limit, old, n)
	if err != nil {
		return 0, fmt.Errorf("sbrk(%d) at break %d: %w", n, old, ErrNoMemory)
	}
	if err := r.grow(newBrk); err != nil {
		return 0, err
	}
	r.brk = newBrk
	return old, nil
}

func (r *Region) grow(newBrk int) error {
	switch r.kind {
	case kindAnon:
		return r.commit(newBrk)
	case kindFile:
		return r.extendFile(newBrk)
	default:
		r.data = r.data[:newBrk]
		return nil
	}
}

// Close releases the mapping and the backing file. Closing twice is a no-op.
func (r *Region) Close() error {
	if r == nil || r.closed {
		return nil
	}
	r.closed = true
	var err error
	if r.unmap != nil {
		err = r.unmap()
	} else {
		err = r.release()
	}
	r.data = nil
	if r.f != nil {
		if cerr := r.f.Close(); err == nil {
			err = cerr
		}
		r.f = nil
	}
	return err
}
