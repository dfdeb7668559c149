//go:build !linux && !darwin

package dirty

import "context"

// writeBacker is implemented by regions that hold file content in memory.
type writeBacker interface {
	WriteBack(off, n int) error
	SyncFile() error
}

func (t *Tracker) flushRanges(ctx context.Context, data []byte) error {
	wb, ok := t.r.(writeBacker)
	if !ok || t.r.FD() < 0 {
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
		if err := wb.WriteBack(start, end-start); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tracker) syncFile(_ bool) error {
	wb, ok := t.r.(writeBacker)
	if !ok || t.r.FD() < 0 {
		return nil
	}
	return wb.SyncFile()
}
