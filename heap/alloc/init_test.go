package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/umheap/heap"
	"github.com/joshuapare/umheap/internal/format"
)

func TestInit_Layout(t *testing.T) {
	r := heap.NewMem(1 << 20)
	h, err := New(r)
	require.NoError(t, err)

	data := r.Bytes()
	require.Len(t, data, format.BootstrapSize+format.ChunkSize)

	assert.Equal(t, uint32(0), format.ReadU32(data, 0), "padding word")
	assert.Equal(t, uint32(9), format.ReadU32(data, 4), "prologue header")
	assert.Equal(t, uint32(9), format.ReadU32(data, 8), "prologue footer")

	// The first chunk is one free block starting at the first payload offset.
	assert.Equal(t, format.Tag{Size: format.ChunkSize}, blockOf(h, format.FirstBlockOffset))
	assert.Equal(t, uint32(1), format.ReadU32(data, len(data)-4), "epilogue header")
	assert.Equal(t, Ptr(len(data)), h.Brk())

	st := h.Stats()
	assert.Equal(t, 1, st.ExtendCalls)
	assert.Equal(t, int64(format.ChunkSize), st.ExtendBytes)
	assertInvariants(t, h)
}

func TestInit_Idempotent(t *testing.T) {
	r := heap.NewMem(1 << 20)
	h, err := New(r)
	require.NoError(t, err)

	brk := r.Brk()
	require.NoError(t, h.Init())
	require.NoError(t, h.Init())
	assert.Equal(t, brk, r.Brk(), "Init on a ready heap must not grow it")
	assert.Equal(t, 1, h.Stats().ExtendCalls)
}

func TestInit_HostRefusesBootstrap(t *testing.T) {
	_, err := New(heap.NewMem(8))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoMemory)
}

func TestInit_HostRefusesFirstChunk(t *testing.T) {
	r := heap.NewMem(format.BootstrapSize + format.ChunkSize - 8)
	_, err := New(r)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoMemory)
	assert.Equal(t, format.BootstrapSize, r.Brk(), "sentinels stay, the chunk is refused")
}

func TestInit_RetriesOnlyTheExtension(t *testing.T) {
	host := &switchHost{Region: heap.NewMem(1 << 20)}
	h := newHeap(host, nil)

	// Let the bootstrap through, then refuse the first chunk.
	require.NoError(t, h.bootstrap())
	host.fail = true
	err := h.Init()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoMemory)
	assert.ErrorIs(t, err, errHostRefused)

	host.fail = false
	require.NoError(t, h.Init())
	assert.Equal(t, format.BootstrapSize+format.ChunkSize, host.Brk())
	assertInvariants(t, h)
}

func TestInit_UnalignedHostBreak(t *testing.T) {
	r := heap.NewMem(1 << 20)
	_, err := r.Sbrk(4)
	require.NoError(t, err)

	_, err = New(r)
	assert.ErrorIs(t, err, ErrBadPtr)
}

func TestInit_NonZeroBase(t *testing.T) {
	r := heap.NewMem(1 << 20)
	_, err := r.Sbrk(64)
	require.NoError(t, err)

	h, err := New(r)
	require.NoError(t, err)
	assert.Equal(t, Ptr(64+format.FirstBlockOffset), h.first)

	p := mustAlloc(t, h, 32, 0x11)
	assert.Equal(t, h.first, p)
	assert.Equal(t, format.BootstrapSize+format.ChunkSize, h.Usage().HeapBytes)
	assertInvariants(t, h)
}
