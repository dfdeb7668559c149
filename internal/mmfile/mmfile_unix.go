//go:build linux || darwin

// Package mmfile maps heap images read-only for inspection.
package mmfile

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Map maps the file at path read-only and returns its contents with an
// unmap function. Files larger than maxSize are refused with ErrTooLarge.
// The unmap function is safe to call more than once.
func Map(path string, maxSize int64) ([]byte, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close() // the mapping outlives the descriptor

	info, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	size := info.Size()
	if size > maxSize {
		return nil, nil, fmt.Errorf("mmfile: %s is %d bytes, limit %d: %w", path, size, maxSize, ErrTooLarge)
	}
	if size == 0 {
		return []byte{}, noop, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, fmt.Errorf("mmfile: map %s: %w", path, err)
	}
	unmap := func() error {
		if data == nil {
			return nil
		}
		err := unix.Munmap(data)
		data = nil
		if errors.Is(err, unix.EINVAL) {
			return nil
		}
		return err
	}
	return data, unmap, nil
}
