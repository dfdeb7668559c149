package dirty

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/umheap/heap"
)

func newMemTarget(t testing.TB, size int) *heap.Region {
	t.Helper()
	r := heap.NewMem(1 << 20)
	_, err := r.Sbrk(size)
	require.NoError(t, err)
	return r
}

func Test_DirtyTracker_PageAlignment(t *testing.T) {
	tracker := NewTracker(newMemTarget(t, 8192))

	tracker.Add(100, 200)

	coalesced := tracker.coalesce()
	require.Len(t, coalesced, 1)
	assert.Equal(t, int64(0), coalesced[0].Off)
	assert.Equal(t, int64(4096), coalesced[0].Len)
}

func Test_DirtyTracker_Coalesce_Adjacent(t *testing.T) {
	tracker := NewTracker(newMemTarget(t, 16384))

	tracker.Add(4096, 4096)
	tracker.Add(8192, 4096)

	coalesced := tracker.coalesce()
	require.Len(t, coalesced, 1)
	assert.Equal(t, Range{Off: 4096, Len: 8192}, coalesced[0])
}

func Test_DirtyTracker_Coalesce_Disjoint(t *testing.T) {
	tracker := NewTracker(newMemTarget(t, 65536))

	tracker.Add(40000, 4)
	tracker.Add(12, 4)
	tracker.Add(20, 4)

	coalesced := tracker.DebugCoalescedRanges()
	require.Len(t, coalesced, 2)
	assert.Equal(t, Range{Off: 0, Len: 4096}, coalesced[0])
	assert.Equal(t, Range{Off: 36864, Len: 4096}, coalesced[1])
	assert.Len(t, tracker.DebugRanges(), 3)
}

func Test_DirtyTracker_IgnoresEmptyRanges(t *testing.T) {
	tracker := NewTracker(newMemTarget(t, 4096))
	tracker.Add(0, 0)
	tracker.Add(0, -4)
	assert.Equal(t, 0, tracker.Pending())
	assert.Nil(t, tracker.coalesce())
}

func Test_DirtyTracker_FlushInMemoryIsNoop(t *testing.T) {
	tracker := NewTracker(newMemTarget(t, 4096))
	tracker.Add(0, 16)

	require.NoError(t, tracker.Sync(context.Background(), false))
	assert.Equal(t, 0, tracker.Pending())
}

func Test_DirtyTracker_FlushCancelled(t *testing.T) {
	tracker := NewTracker(newMemTarget(t, 4096))
	tracker.Add(0, 16)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := tracker.Flush(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, tracker.Pending(), "cancelled flush keeps ranges")

	tracker.Reset()
	assert.Equal(t, 0, tracker.Pending())
}

func TestClip(t *testing.T) {
	start, end, ok := clip(Range{Off: 4096, Len: 4096}, 6000)
	require.True(t, ok)
	assert.Equal(t, 4096, start)
	assert.Equal(t, 6000, end)

	_, _, ok = clip(Range{Off: 8192, Len: 4096}, 6000)
	assert.False(t, ok)
}
