package trace

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/umheap/heap"
	"github.com/joshuapare/umheap/heap/alloc"
)

const shortTrace = `20000
3
8
1
a 0 512
a 1 128
# comment lines are ignored
r 0 640
a 2 128
f 1

r 0 4096
f 0
f 2
`

func TestParse(t *testing.T) {
	tr, err := Parse(strings.NewReader(shortTrace))
	require.NoError(t, err)

	assert.Equal(t, 20000, tr.HeapSize)
	assert.Equal(t, 3, tr.NumIDs)
	assert.Equal(t, 1, tr.Weight)
	require.Len(t, tr.Ops, 8)
	assert.Equal(t, Op{Kind: OpAlloc, ID: 0, Size: 512}, tr.Ops[0])
	assert.Equal(t, Op{Kind: OpRealloc, ID: 0, Size: 640}, tr.Ops[2])
	assert.Equal(t, Op{Kind: OpFree, ID: 1}, tr.Ops[4])
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"short header", "100\n2\n"},
		{"bad header", "100\nx\n1\n1\n"},
		{"op count", "100\n2\n2\n1\na 0 8\n"},
		{"unknown op", "100\n2\n1\n1\nx 0 8\n"},
		{"long op", "100\n2\n1\n1\nalloc 0 8\n"},
		{"free with size", "100\n2\n1\n1\nf 0 8\n"},
		{"alloc without size", "100\n2\n1\n1\na 0\n"},
		{"id out of range", "100\n2\n1\n1\na 2 8\n"},
		{"negative size", "100\n2\n1\n1\na 0 -8\n"},
		{"huge op count", "0\n1\n999999999999999\n1\na 0 8\n"},
		{"huge id count", "0\n999999999999999\n0\n1\n"},
		{"id count above limit", fmt.Sprintf("0\n%d\n0\n1\n", MaxIDs+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.in))
			assert.ErrorIs(t, err, ErrSyntax)
		})
	}
}

func TestWriteTo_ParsesBack(t *testing.T) {
	tr := Generate(Config{Ops: 200, IDs: 10, MaxSize: 300, Seed: 9})

	var out bytes.Buffer
	n, err := tr.WriteTo(&out)
	require.NoError(t, err)
	assert.Equal(t, int64(out.Len()), n)

	back, err := Parse(&out)
	require.NoError(t, err)
	assert.Equal(t, tr, back)
}

func TestGenerate(t *testing.T) {
	cfg := Config{Ops: 500, IDs: 20, MaxSize: 1000, Seed: 5}
	tr := Generate(cfg)

	assert.Equal(t, tr, Generate(cfg), "same seed, same trace")
	assert.NotEqual(t, tr, Generate(Config{Ops: 500, IDs: 20, MaxSize: 1000, Seed: 6}))
	assert.GreaterOrEqual(t, len(tr.Ops), 500)

	live := map[int]bool{}
	for i, op := range tr.Ops {
		require.Less(t, op.ID, cfg.IDs)
		switch op.Kind {
		case OpAlloc:
			require.False(t, live[op.ID], "op %d allocates live id %d", i, op.ID)
			require.LessOrEqual(t, op.Size, cfg.MaxSize)
			require.Positive(t, op.Size)
			live[op.ID] = true
		case OpRealloc, OpFree:
			require.True(t, live[op.ID], "op %d touches dead id %d", i, op.ID)
			if op.Kind == OpFree {
				delete(live, op.ID)
			}
		}
	}
	assert.Empty(t, live, "every id is freed by the end")
	assert.Positive(t, tr.HeapSize)
}

func TestGenerate_Defaults(t *testing.T) {
	tr := Generate(Config{})
	assert.Equal(t, 100, tr.NumIDs)
	assert.GreaterOrEqual(t, len(tr.Ops), 1000)
}

func TestReplay(t *testing.T) {
	tr, err := Parse(strings.NewReader(shortTrace))
	require.NoError(t, err)

	h, err := alloc.New(heap.NewMem(1 << 20))
	require.NoError(t, err)

	res, err := Replay(h, tr, WithVerify())
	require.NoError(t, err)
	assert.Equal(t, 8, res.Ops)
	assert.Equal(t, 3, res.Allocs)
	assert.Equal(t, 2, res.Reallocs)
	assert.Equal(t, 3, res.Frees)
	assert.Equal(t, 4096+128, res.PeakPayload)
	assert.Equal(t, h.Usage().HeapBytes, res.HeapBytes)
	assert.InDelta(t, float64(res.PeakPayload)/float64(res.HeapBytes), res.Utilization, 1e-9)
	assert.Equal(t, 0, h.Usage().AllocatedBlocks)
}

func TestReplay_GeneratedWorkload(t *testing.T) {
	for _, seed := range []uint64{1, 2, 3} {
		tr := Generate(Config{Ops: 2000, IDs: 64, MaxSize: 2048, Seed: seed})
		h, err := alloc.New(heap.NewMem(16 << 20))
		require.NoError(t, err)

		res, err := Replay(h, tr, WithVerify())
		require.NoError(t, err, "seed %d", seed)
		assert.Equal(t, len(tr.Ops), res.Ops)
		assert.Equal(t, tr.HeapSize, res.PeakPayload)
		assert.Greater(t, res.Utilization, 0.0)
		assert.LessOrEqual(t, res.Utilization, 1.0)

		u := h.Usage()
		assert.Equal(t, 1, u.FreeBlocks, "seed %d: everything coalesces back", seed)
		assert.Equal(t, 0, u.AllocatedBlocks)
	}
}

func TestReplay_OutOfMemory(t *testing.T) {
	tr := &Trace{NumIDs: 1, Ops: []Op{{Kind: OpAlloc, ID: 0, Size: 10000}}}
	h, err := alloc.New(heap.NewMem(8192))
	require.NoError(t, err)

	_, err = Replay(h, tr)
	assert.ErrorIs(t, err, alloc.ErrNoMemory)
}

func TestReplay_AllocOfLiveID(t *testing.T) {
	tr := &Trace{NumIDs: 1, Ops: []Op{
		{Kind: OpAlloc, ID: 0, Size: 8},
		{Kind: OpAlloc, ID: 0, Size: 8},
	}}
	h, err := alloc.New(heap.NewMem(1 << 20))
	require.NoError(t, err)

	res, err := Replay(h, tr)
	assert.ErrorIs(t, err, ErrSyntax)
	assert.Equal(t, 1, res.Ops)
}

func TestReplay_UnknownIDAndOp(t *testing.T) {
	h, err := alloc.New(heap.NewMem(1 << 20))
	require.NoError(t, err)

	_, err = Replay(h, &Trace{NumIDs: 1, Ops: []Op{{Kind: OpFree, ID: 4}}})
	assert.ErrorIs(t, err, ErrSyntax)

	_, err = Replay(h, &Trace{NumIDs: 1, Ops: []Op{{Kind: 'z', ID: 0}}})
	assert.ErrorIs(t, err, ErrSyntax)

	_, err = Replay(h, &Trace{NumIDs: 1, Ops: []Op{{Kind: OpAlloc, ID: -1, Size: 8}}})
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestReplay_HugeIDCountUsesOpsOnly(t *testing.T) {
	h, err := alloc.New(heap.NewMem(1 << 20))
	require.NoError(t, err)

	tr := &Trace{NumIDs: math.MaxInt, Ops: []Op{
		{Kind: OpAlloc, ID: 3, Size: 24},
		{Kind: OpFree, ID: 3},
	}}
	res, err := Replay(h, tr)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Ops)

	empty, err := Replay(h, &Trace{NumIDs: math.MaxInt})
	require.NoError(t, err)
	assert.Zero(t, empty.Ops)
}

func TestVerify_DetectsClobberedPayload(t *testing.T) {
	h, err := alloc.New(heap.NewMem(1 << 20))
	require.NoError(t, err)

	p, err := h.Alloc(64)
	require.NoError(t, err)
	fill(h, p, 7, 0, 64)
	require.NoError(t, verify(h, p, 7, 64))

	h.Bytes(p)[10] ^= 0xFF
	assert.ErrorIs(t, verify(h, p, 7, 64), ErrMismatch)
	assert.NoError(t, verify(h, p, 7, 10))
}
