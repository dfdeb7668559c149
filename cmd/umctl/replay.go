package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/joshuapare/umheap/heap"
	"github.com/joshuapare/umheap/heap/alloc"
	"github.com/joshuapare/umheap/internal/metrics"
	"github.com/joshuapare/umheap/internal/trace"
)

var (
	replayHost     string
	replayLimit    int
	replayHeapFile string
	replayVerify   bool
	replayMetrics  bool
)

func init() {
	cmd := newReplayCmd()
	cmd.Flags().StringVar(&replayHost, "host", hostMem, "Heap host: mem, mmap or file")
	cmd.Flags().IntVar(&replayLimit, "limit", heap.DefaultLimit, "Maximum heap size in bytes")
	cmd.Flags().StringVar(&replayHeapFile, "heap-file", "", "Backing file for --host file (left on disk for inspect)")
	cmd.Flags().BoolVar(&replayVerify, "verify", false, "Check the whole heap after every operation")
	cmd.Flags().BoolVar(&replayMetrics, "metrics", false, "Print allocator metrics in Prometheus text format")
	rootCmd.AddCommand(cmd)
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <trace>...",
		Short: "Replay allocator traces",
		Long: `The replay command runs each trace against a fresh heap, verifying
every payload before it is freed or moved, and reports peak payload, heap size
and utilization.

Example:
  umctl replay traces/*.rep
  umctl replay short1.rep --verify
  umctl replay short1.rep --host file --heap-file short1.heap
  umctl replay short1.rep --metrics`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), args)
		},
	}
	return cmd
}

type replayReport struct {
	Trace string `json:"trace"`
	Host  string `json:"host"`
	trace.Result
	Metrics string `json:"metrics,omitempty"`
}

func runReplay(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if replayHost == hostFile && len(args) > 1 {
		return fmt.Errorf("--host file replays one trace at a time")
	}

	reports := make([]replayReport, 0, len(args))
	for _, path := range args {
		rep, err := replayOne(ctx, path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		reports = append(reports, rep)
	}

	if jsonOut {
		return printJSON(reports)
	}

	printInfo("%s\n", styled(tableHeaderStyle,
		fmt.Sprintf("%-24s %8s %10s %10s %6s %10s", "TRACE", "OPS", "PEAK", "HEAP", "UTIL", "TIME")))
	var ops int
	var elapsed time.Duration
	for _, r := range reports {
		printInfo("%-24s %8s %10s %10s %5.1f%% %10s\n",
			filepath.Base(r.Trace),
			humanize.Comma(int64(r.Ops)),
			humanize.IBytes(uint64(r.PeakPayload)),
			humanize.IBytes(uint64(r.HeapBytes)),
			r.Utilization*100,
			r.Elapsed.Round(time.Microsecond))
		ops += r.Ops
		elapsed += r.Elapsed
	}
	if len(reports) > 1 {
		printInfo("%s\n", styled(mutedStyle,
			fmt.Sprintf("%-24s %8s %39s", "total", humanize.Comma(int64(ops)), elapsed.Round(time.Microsecond))))
	}

	for _, r := range reports {
		if r.Metrics != "" {
			printInfo("\n# %s\n%s", filepath.Base(r.Trace), r.Metrics)
		}
	}
	return nil
}

func replayOne(ctx context.Context, path string) (replayReport, error) {
	rep := replayReport{Trace: path, Host: replayHost}

	f, err := os.Open(path)
	if err != nil {
		return rep, err
	}
	tr, err := trace.Parse(f)
	f.Close()
	if err != nil {
		return rep, err
	}
	printVerbose("Parsed %s: %d ops, %d ids, suggested heap %s\n",
		path, len(tr.Ops), tr.NumIDs, humanize.IBytes(uint64(tr.HeapSize)))

	r, dt, err := openHost(replayHost, replayLimit, replayHeapFile)
	if err != nil {
		return rep, err
	}
	defer r.Close()

	h, err := alloc.New(r, heapOptions(dt)...)
	if err != nil {
		return rep, err
	}

	var opts []trace.ReplayOption
	if replayVerify {
		opts = append(opts, trace.WithVerify())
	}
	rep.Result, err = trace.Replay(h, tr, opts...)
	if err != nil {
		return rep, err
	}

	if dt != nil {
		printVerbose("Syncing %d dirty ranges to %s\n", dt.Pending(), replayHeapFile)
		if err := dt.Sync(ctx, false); err != nil {
			return rep, fmt.Errorf("sync heap file: %w", err)
		}
	}

	if replayMetrics {
		mfs, err := metrics.Gather(metrics.NewCollector(h, metrics.DefaultNamespace))
		if err != nil {
			return rep, err
		}
		var sb strings.Builder
		if err := metrics.WriteText(&sb, mfs); err != nil {
			return rep, err
		}
		rep.Metrics = sb.String()
	}
	return rep, nil
}
