package trace

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joshuapare/umheap/heap/alloc"
	"github.com/joshuapare/umheap/internal/logger"
)

// Result summarises one replay.
type Result struct {
	Ops      int `json:"ops"`
	Allocs   int `json:"allocs"`
	Reallocs int `json:"reallocs"`
	Frees    int `json:"frees"`

	// PeakPayload is the largest sum of live request sizes seen.
	PeakPayload int `json:"peak_payload"`
	// HeapBytes is the heap size after the replay.
	HeapBytes int `json:"heap_bytes"`
	// Utilization is PeakPayload / HeapBytes.
	Utilization float64 `json:"utilization"`

	Elapsed time.Duration `json:"elapsed_ns"`
	Stats   alloc.Stats   `json:"stats"`
}

// ReplayOption configures Replay.
type ReplayOption func(*replayConfig)

type replayConfig struct {
	verify bool
	log    *slog.Logger
}

// WithVerify runs Heap.Check after every operation.
func WithVerify() ReplayOption {
	return func(c *replayConfig) { c.verify = true }
}

// WithLogger sets the logger for replay progress.
func WithLogger(l *slog.Logger) ReplayOption {
	return func(c *replayConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// Replay executes tr against h. Each payload is filled with a pattern derived
// from its id; the pattern is verified before every free and realloc, and a
// realloc must carry min(old, new) bytes of it to the new block. A free or
// realloc of an id that is not live acts on Nil.
func Replay(h *alloc.Heap, tr *Trace, opts ...ReplayOption) (Result, error) {
	cfg := replayConfig{log: logger.L}
	for _, opt := range opts {
		opt(&cfg)
	}

	var res Result

	// Per-id state is sized from the ids the ops use, not the header.
	maxID := -1
	for i, op := range tr.Ops {
		if op.ID < 0 || op.ID >= tr.NumIDs {
			return res, fmt.Errorf("op %d: id %d outside [0, %d): %w", i, op.ID, tr.NumIDs, ErrSyntax)
		}
		maxID = max(maxID, op.ID)
	}
	ptrs := make([]alloc.Ptr, maxID+1)
	sizes := make([]int, maxID+1)
	payload := 0
	start := time.Now()

	for i, op := range tr.Ops {
		id := op.ID

		switch op.Kind {
		case OpAlloc:
			if ptrs[id] != alloc.Nil {
				return res, fmt.Errorf("op %d: alloc of live id %d: %w", i, id, ErrSyntax)
			}
			p, err := h.Alloc(op.Size)
			if err != nil {
				return res, fmt.Errorf("op %d (%s %d %d): %w", i, op.Kind, id, op.Size, err)
			}
			fill(h, p, id, 0, op.Size)
			ptrs[id], sizes[id] = p, op.Size
			payload += op.Size
			res.Allocs++

		case OpRealloc:
			if err := verify(h, ptrs[id], id, sizes[id]); err != nil {
				return res, fmt.Errorf("op %d (%s %d): %w", i, op.Kind, id, err)
			}
			p, err := h.Realloc(ptrs[id], op.Size)
			if err != nil {
				return res, fmt.Errorf("op %d (%s %d %d): %w", i, op.Kind, id, op.Size, err)
			}
			kept := min(sizes[id], op.Size)
			if err := verify(h, p, id, kept); err != nil {
				return res, fmt.Errorf("op %d (%s %d %d): moved payload: %w", i, op.Kind, id, op.Size, err)
			}
			fill(h, p, id, kept, op.Size)
			payload += op.Size - sizes[id]
			ptrs[id], sizes[id] = p, op.Size
			res.Reallocs++

		case OpFree:
			if err := verify(h, ptrs[id], id, sizes[id]); err != nil {
				return res, fmt.Errorf("op %d (%s %d): %w", i, op.Kind, id, err)
			}
			if err := h.Free(ptrs[id]); err != nil {
				return res, fmt.Errorf("op %d (%s %d): %w", i, op.Kind, id, err)
			}
			payload -= sizes[id]
			ptrs[id], sizes[id] = alloc.Nil, 0
			res.Frees++

		default:
			return res, fmt.Errorf("op %d: %s: %w", i, op.Kind, ErrSyntax)
		}

		res.Ops++
		res.PeakPayload = max(res.PeakPayload, payload)
		if cfg.verify {
			if err := h.Check(); err != nil {
				return res, fmt.Errorf("op %d (%s %d): %w", i, op.Kind, id, err)
			}
		}
	}

	res.Elapsed = time.Since(start)
	res.HeapBytes = h.Usage().HeapBytes
	if res.HeapBytes > 0 {
		res.Utilization = float64(res.PeakPayload) / float64(res.HeapBytes)
	}
	res.Stats = h.Stats()

	cfg.log.Debug("trace replayed",
		"ops", res.Ops, "peak_payload", res.PeakPayload,
		"heap_bytes", res.HeapBytes, "elapsed", res.Elapsed)
	return res, nil
}

func pattern(id, off int) byte {
	return byte(id*0x9D + off + id>>8)
}

// fill stamps bytes [from, to) of p and reports the payload as dirty.
func fill(h *alloc.Heap, p alloc.Ptr, id, from, to int) {
	if p == alloc.Nil || from >= to {
		return
	}
	b := h.Bytes(p)
	for off := from; off < to; off++ {
		b[off] = pattern(id, off)
	}
	h.MarkDirty(p)
}

func verify(h *alloc.Heap, p alloc.Ptr, id, n int) error {
	if p == alloc.Nil || n == 0 {
		return nil
	}
	b := h.Bytes(p)
	if len(b) < n {
		return fmt.Errorf("ptr %d holds %d bytes, want %d: %w", p, len(b), n, ErrMismatch)
	}
	for off := range n {
		if b[off] != pattern(id, off) {
			return fmt.Errorf("ptr %d byte %d = 0x%02x, want 0x%02x: %w", p, off, b[off], pattern(id, off), ErrMismatch)
		}
	}
	return nil
}
