//go:build linux || darwin

package heap

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/joshuapare/umheap/internal/format"
)

const mmapSupported = true

// Reserve maps limit bytes of anonymous address space with no access rights
// and commits pages read/write as the break advances. Untouched pages cost
// nothing, which mirrors how a process break behaves.
func Reserve(limit int) (*Region, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	size := format.AlignPage(limit)
	data, err := unix.Mmap(-1, 0, size, unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("heap: reserve %d bytes: %w", size, err)
	}
	return &Region{
		kind:  kindAnon,
		data:  data,
		limit: limit,
	}, nil
}

// OpenFile opens (or creates) a file-backed region. An existing file keeps
// its content and the break starts at its current size.
func OpenFile(path string, limit int) (*Region, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, err
	}

	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	sz := st.Size()
	if sz > int64(limit) {
		_ = f.Close()
		return nil, fmt.Errorf("heap: %s is %d bytes, beyond limit %d: %w", path, sz, limit, ErrNoMemory)
	}

	r := &Region{
		kind:  kindFile,
		f:     f,
		brk:   int(sz),
		limit: limit,
	}
	if sz > 0 {
		data, err := mapShared(f, int(sz))
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("mmap failed: %w", err)
		}
		r.data = data
	}
	return r, nil
}

func mapShared(f *os.File, size int) ([]byte, error) {
	return unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
}

// commit makes the reservation readable and writable up to newBrk, rounded
// to a page.
func (r *Region) commit(newBrk int) error {
	if newBrk <= r.committed {
		return nil
	}
	end := min(format.AlignPage(newBrk), len(r.data))
	if err := unix.Mprotect(r.data[r.committed:end], unix.PROT_READ|unix.PROT_WRITE); err != nil {
		return fmt.Errorf("heap: commit [%d, %d): %v: %w", r.committed, end, err, ErrNoMemory)
	}
	r.committed = end
	return nil
}

// extendFile grows the backing file to newBrk bytes and remaps it.
// The new bytes are zero-initialized by the OS.
func (r *Region) extendFile(newBrk int) error {
	if r.data != nil {
		if err := unix.Munmap(r.data); err != nil {
			return fmt.Errorf("heap: failed to unmap before grow: %w", err)
		}
		r.data = nil
	}

	if err := r.f.Truncate(int64(newBrk)); err != nil {
		r.remapOld()
		return fmt.Errorf("heap: failed to extend file: %v: %w", err, ErrNoMemory)
	}

	data, err := mapShared(r.f, newBrk)
	if err != nil {
		_ = r.f.Truncate(int64(r.brk))
		r.remapOld()
		return fmt.Errorf("heap: failed to remap after grow: %v: %w", err, ErrNoMemory)
	}
	r.data = data
	return nil
}

// remapOld restores the mapping at the current break after a failed grow.
func (r *Region) remapOld() {
	if r.brk == 0 {
		return
	}
	data, err := mapShared(r.f, r.brk)
	if err == nil {
		r.data = data
	}
}

func (r *Region) release() error {
	if r.kind == kindMem || len(r.data) == 0 {
		return nil
	}
	return unix.Munmap(r.data)
}
