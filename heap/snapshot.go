package heap

import (
	"fmt"
	"math"

	"github.com/joshuapare/umheap/internal/mmfile"
)

// OpenSnapshot maps a heap image read-only. The break is fixed at the file
// size and Sbrk fails with ErrReadOnly, so the region suits Attach followed
// by Check, Walk or Dump. Writing through Bytes is not allowed.
func OpenSnapshot(path string) (*Region, error) {
	data, unmap, err := mmfile.Map(path, math.MaxUint32)
	if err != nil {
		return nil, fmt.Errorf("heap: snapshot %s: %w", path, err)
	}
	return &Region{
		kind:  kindSnapshot,
		data:  data,
		brk:   len(data),
		limit: len(data),
		unmap: unmap,
	}, nil
}
