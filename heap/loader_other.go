//go:build !linux && !darwin

package heap

import (
	"fmt"
	"io"
	"os"
)

const mmapSupported = false

// Reserve falls back to an in-memory region on platforms without mmap.
func Reserve(limit int) (*Region, error) {
	return NewMem(limit), nil
}

// OpenFile loads the file into memory on platforms without mmap. Dirty
// ranges are written back explicitly with WriteBack.
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
		f.Close()
		return nil, err
	}
	sz := st.Size()
	if sz > int64(limit) {
		f.Close()
		return nil, fmt.Errorf("heap: %s is %d bytes, beyond limit %d: %w", path, sz, limit, ErrNoMemory)
	}

	data := make([]byte, sz, limit)
	if _, err := io.ReadFull(f, data); err != nil {
		f.Close()
		return nil, err
	}

	return &Region{
		kind:  kindFile,
		f:     f,
		data:  data,
		brk:   int(sz),
		limit: limit,
	}, nil
}

func (r *Region) commit(int) error { return nil }

func (r *Region) extendFile(newBrk int) error {
	if err := r.f.Truncate(int64(newBrk)); err != nil {
		return fmt.Errorf("heap: failed to extend file: %v: %w", err, ErrNoMemory)
	}
	r.data = r.data[:newBrk]
	return nil
}

// WriteBack writes [off, off+n) of the region to the backing file.
func (r *Region) WriteBack(off, n int) error {
	if r.f == nil {
		return nil
	}
	end := min(off+n, r.brk)
	if off >= end {
		return nil
	}
	_, err := r.f.WriteAt(r.data[off:end], int64(off))
	return err
}

// SyncFile commits the backing file to stable storage.
func (r *Region) SyncFile() error {
	if r.f == nil {
		return nil
	}
	return r.f.Sync()
}

func (r *Region) release() error { return nil }
