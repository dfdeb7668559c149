package metrics

import (
	"bytes"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/umheap/heap"
	"github.com/joshuapare/umheap/heap/alloc"
)

func newHeap(t *testing.T) *alloc.Heap {
	t.Helper()
	h, err := alloc.New(heap.NewMem(1 << 20))
	require.NoError(t, err)

	p, err := h.Alloc(64)
	require.NoError(t, err)
	_, err = h.Alloc(8000)
	require.NoError(t, err)
	require.NoError(t, h.Free(p))
	return h
}

func TestCollector_Counters(t *testing.T) {
	c := NewCollector(newHeap(t), "")

	expected := `
# HELP umheap_alloc_calls_total Alloc calls, including zero-size requests and those made by Realloc.
# TYPE umheap_alloc_calls_total counter
umheap_alloc_calls_total 2
# HELP umheap_alloc_served_total Successful allocations by path.
# TYPE umheap_alloc_served_total counter
umheap_alloc_served_total{path="fast"} 1
umheap_alloc_served_total{path="slow"} 1
# HELP umheap_extend_bytes_total Bytes granted by the host.
# TYPE umheap_extend_bytes_total counter
umheap_extend_bytes_total 12104
# HELP umheap_free_calls_total Free calls.
# TYPE umheap_free_calls_total counter
umheap_free_calls_total 1
`
	err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"umheap_alloc_calls_total", "umheap_alloc_served_total",
		"umheap_extend_bytes_total", "umheap_free_calls_total")
	assert.NoError(t, err)
}

func TestCollector_Gauges(t *testing.T) {
	h := newHeap(t)
	c := NewCollector(h, "test")
	u := h.Usage()

	mfs, err := Gather(c)
	require.NoError(t, err)

	got := map[string]float64{}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			name := mf.GetName()
			for _, lp := range m.GetLabel() {
				name += ":" + lp.GetValue()
			}
			if g := m.GetGauge(); g != nil {
				got[name] = g.GetValue()
			}
		}
	}

	assert.Equal(t, float64(u.HeapBytes), got["test_heap_bytes"])
	assert.Equal(t, float64(u.AllocatedBlocks), got["test_blocks:allocated"])
	assert.Equal(t, float64(u.FreeBlocks), got["test_blocks:free"])
	assert.Equal(t, float64(u.FreeBytes), got["test_block_bytes:free"])
	assert.Equal(t, float64(u.LargestFree), got["test_largest_free_block_bytes"])
}

func TestCollector_SeriesCount(t *testing.T) {
	mfs, err := Gather(NewCollector(newHeap(t), ""))
	require.NoError(t, err)

	// 11 counter series and 7 gauge series.
	n := 0
	for _, mf := range mfs {
		n += len(mf.GetMetric())
	}
	assert.Equal(t, 18, n)
	assert.Len(t, mfs, 14)
}

func TestWriteText(t *testing.T) {
	mfs, err := Gather(NewCollector(newHeap(t), "umheap"))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, WriteText(&out, mfs))
	s := out.String()
	assert.Contains(t, s, "# TYPE umheap_heap_bytes gauge")
	assert.Contains(t, s, `umheap_coalesce_total{direction="forward"}`)
}

func TestGather_DuplicateCollector(t *testing.T) {
	h := newHeap(t)
	_, err := Gather(NewCollector(h, ""), NewCollector(h, ""))
	assert.Error(t, err)
}
