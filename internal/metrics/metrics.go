// Package metrics exposes allocator counters and heap usage as Prometheus
// metrics.
//
// The collector reads the heap synchronously on every scrape. The heap is
// single-threaded, so Collect must not run concurrently with heap mutation.
package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/joshuapare/umheap/heap/alloc"
)

// DefaultNamespace prefixes every metric when NewCollector gets "".
const DefaultNamespace = "umheap"

type collector struct {
	h *alloc.Heap

	allocCalls   *prometheus.Desc
	allocPath    *prometheus.Desc
	failedAllocs *prometheus.Desc
	freeCalls    *prometheus.Desc
	reallocCalls *prometheus.Desc
	extendCalls  *prometheus.Desc
	extendBytes  *prometheus.Desc
	splits       *prometheus.Desc
	coalesces    *prometheus.Desc

	heapBytes    *prometheus.Desc
	blocks       *prometheus.Desc
	blockBytes   *prometheus.Desc
	payloadBytes *prometheus.Desc
	largestFree  *prometheus.Desc
}

// NewCollector returns a collector for h.
func NewCollector(h *alloc.Heap, namespace string) prometheus.Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, nil)
	}
	return &collector{
		h: h,

		allocCalls:   desc("alloc_calls_total", "Alloc calls, including zero-size requests and those made by Realloc."),
		allocPath:    desc("alloc_served_total", "Successful allocations by path.", "path"),
		failedAllocs: desc("alloc_failed_total", "Allocations that returned an error."),
		freeCalls:    desc("free_calls_total", "Free calls."),
		reallocCalls: desc("realloc_calls_total", "Realloc calls."),
		extendCalls:  desc("extend_calls_total", "Successful heap extensions."),
		extendBytes:  desc("extend_bytes_total", "Bytes granted by the host."),
		splits:       desc("split_total", "Placements that split off a free remainder."),
		coalesces:    desc("coalesce_total", "Merges of a freed block with a neighbour.", "direction"),

		heapBytes:    desc("heap_bytes", "Heap size, sentinels included."),
		blocks:       desc("blocks", "Blocks by state.", "state"),
		blockBytes:   desc("block_bytes", "Block bytes by state, tags included.", "state"),
		payloadBytes: desc("payload_bytes", "Usable bytes across allocated blocks."),
		largestFree:  desc("largest_free_block_bytes", "Size of the largest free block."),
	}
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.allocCalls, c.allocPath, c.failedAllocs, c.freeCalls, c.reallocCalls,
		c.extendCalls, c.extendBytes, c.splits, c.coalesces,
		c.heapBytes, c.blocks, c.blockBytes, c.payloadBytes, c.largestFree,
	} {
		ch <- d
	}
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	st := c.h.Stats()
	counter := func(d *prometheus.Desc, v int64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), labels...)
	}
	counter(c.allocCalls, int64(st.AllocCalls))
	counter(c.allocPath, int64(st.AllocFastPath), "fast")
	counter(c.allocPath, int64(st.AllocSlowPath), "slow")
	counter(c.failedAllocs, int64(st.FailedAllocs))
	counter(c.freeCalls, int64(st.FreeCalls))
	counter(c.reallocCalls, int64(st.ReallocCalls))
	counter(c.extendCalls, int64(st.ExtendCalls))
	counter(c.extendBytes, st.ExtendBytes)
	counter(c.splits, int64(st.SplitCount))
	counter(c.coalesces, int64(st.CoalesceForward), "forward")
	counter(c.coalesces, int64(st.CoalesceBackward), "backward")

	u := c.h.Usage()
	gauge := func(d *prometheus.Desc, v int, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, float64(v), labels...)
	}
	gauge(c.heapBytes, u.HeapBytes)
	gauge(c.blocks, u.AllocatedBlocks, "allocated")
	gauge(c.blocks, u.FreeBlocks, "free")
	gauge(c.blockBytes, u.AllocatedBytes, "allocated")
	gauge(c.blockBytes, u.FreeBytes, "free")
	gauge(c.payloadBytes, u.PayloadBytes)
	gauge(c.largestFree, u.LargestFree)
}

// Gather registers cs on a fresh registry and gathers them once.
func Gather(cs ...prometheus.Collector) ([]*dto.MetricFamily, error) {
	reg := prometheus.NewPedanticRegistry()
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return reg.Gather()
}

// WriteText writes families in the Prometheus text exposition format.
func WriteText(w io.Writer, mfs []*dto.MetricFamily) error {
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
