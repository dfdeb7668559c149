//go:build darwin

package dirty

import (
	"context"

	"golang.org/x/sys/unix"
)

// flushRanges syncs the whole mapping. On macOS msync wants the original
// mapping address; the kernel only writes pages that are actually dirty.
func (t *Tracker) flushRanges(_ context.Context, data []byte) error {
	if !t.r.Mapped() {
		return nil
	}
	return unix.Msync(data, unix.MS_SYNC)
}

func (t *Tracker) syncFile(full bool) error {
	fd := t.r.FD()
	if fd < 0 {
		return nil
	}
	if full {
		_, err := unix.FcntlInt(uintptr(fd), unix.F_FULLFSYNC, 0)
		return err
	}
	return unix.Fsync(fd)
}
