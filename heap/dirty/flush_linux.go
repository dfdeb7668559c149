//go:build linux

package dirty

import (
	"context"

	"golang.org/x/sys/unix"
)

// flushRanges msyncs each merged range. Linux accepts sub-slices of a mapping
// as long as the start is page-aligned.
func (t *Tracker) flushRanges(ctx context.Context, data []byte) error {
	if !t.r.Mapped() {
		return nil
	}
	for _, r := range t.coalesce() {
		if err := ctx.Err(); err != nil {
			return err
		}
		start, end, ok := clip(r, len(data))
		if !ok {
			continue
		}
		if err := unix.Msync(data[start:end], unix.MS_SYNC); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tracker) syncFile(_ bool) error {
	fd := t.r.FD()
	if fd < 0 {
		return nil
	}
	return unix.Fdatasync(fd)
}
