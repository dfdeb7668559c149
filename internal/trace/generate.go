package trace

import "math/rand/v2"

// Config controls Generate. Zero fields take the defaults below.
type Config struct {
	Ops     int    // operations before the closing frees (default 1000)
	IDs     int    // distinct ids in flight at once (default 100)
	MaxSize int    // largest request (default 4096)
	Seed    uint64 // PCG seed (default 1)
}

func (c *Config) setDefaults() {
	if c.Ops <= 0 {
		c.Ops = 1000
	}
	if c.IDs <= 0 {
		c.IDs = 100
	}
	if c.MaxSize <= 0 {
		c.MaxSize = 4096
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
}

// Generate builds a reproducible random workload: roughly half allocations,
// the rest split between frees and reallocs. Ids are recycled after they are
// freed, and every id still live at the end is freed, so replaying the trace
// leaves no allocated blocks. HeapSize is set to the peak live payload.
func Generate(cfg Config) *Trace {
	cfg.setDefaults()
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed*0x9E3779B97F4A7C15))

	tr := &Trace{NumIDs: cfg.IDs, Weight: 1}
	sizes := make([]int, cfg.IDs)

	// pool pops ids in ascending order.
	pool := make([]int, cfg.IDs)
	for i := range pool {
		pool[i] = cfg.IDs - 1 - i
	}
	var live []int
	payload, peak := 0, 0

	newSize := func() int { return 1 + rng.IntN(cfg.MaxSize) }
	takeLive := func() (int, int) {
		i := rng.IntN(len(live))
		return live[i], i
	}

	for range cfg.Ops {
		r := rng.IntN(100)
		switch {
		case len(live) == 0 || (r < 50 && len(pool) > 0):
			id := pool[len(pool)-1]
			pool = pool[:len(pool)-1]
			sizes[id] = newSize()
			payload += sizes[id]
			live = append(live, id)
			tr.Ops = append(tr.Ops, Op{Kind: OpAlloc, ID: id, Size: sizes[id]})

		case r < 80:
			id, i := takeLive()
			live[i] = live[len(live)-1]
			live = live[:len(live)-1]
			payload -= sizes[id]
			pool = append(pool, id)
			tr.Ops = append(tr.Ops, Op{Kind: OpFree, ID: id})

		default:
			id, _ := takeLive()
			size := newSize()
			payload += size - sizes[id]
			sizes[id] = size
			tr.Ops = append(tr.Ops, Op{Kind: OpRealloc, ID: id, Size: size})
		}
		peak = max(peak, payload)
	}

	for _, id := range live {
		tr.Ops = append(tr.Ops, Op{Kind: OpFree, ID: id})
	}
	tr.HeapSize = peak
	return tr
}
