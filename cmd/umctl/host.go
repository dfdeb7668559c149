package main

import (
	"fmt"

	"github.com/joshuapare/umheap/heap"
	"github.com/joshuapare/umheap/heap/alloc"
	"github.com/joshuapare/umheap/heap/dirty"
)

const (
	hostMem  = "mem"
	hostMmap = "mmap"
	hostFile = "file"
)

// openHost creates the region a replay runs on. For file hosts the returned
// tracker must be synced before the region is closed.
func openHost(kind string, limit int, path string) (*heap.Region, *dirty.Tracker, error) {
	switch kind {
	case hostMem:
		return heap.NewMem(limit), nil, nil
	case hostMmap:
		r, err := heap.Reserve(limit)
		return r, nil, err
	case hostFile:
		if path == "" {
			return nil, nil, fmt.Errorf("--host file needs --heap-file")
		}
		r, err := heap.OpenFile(path, limit)
		if err != nil {
			return nil, nil, err
		}
		if r.Brk() != 0 {
			_ = r.Close()
			return nil, nil, fmt.Errorf("%s is not empty; replay needs a fresh heap file", path)
		}
		return r, dirty.NewTracker(r), nil
	default:
		return nil, nil, fmt.Errorf("unknown host %q (want %s, %s or %s)", kind, hostMem, hostMmap, hostFile)
	}
}

func heapOptions(dt *dirty.Tracker) []alloc.Option {
	if dt == nil {
		return nil
	}
	return []alloc.Option{alloc.WithDirtyTracker(dt)}
}
