package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/joshuapare/umheap/heap"
	"github.com/joshuapare/umheap/heap/alloc"
)

var inspectBlocks bool

func init() {
	cmd := newInspectCmd()
	cmd.Flags().BoolVar(&inspectBlocks, "blocks", true, "List every block")
	rootCmd.AddCommand(cmd)
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <heap-file>",
		Short: "Validate and describe a heap file",
		Long: `The inspect command maps a heap image written by a file-backed heap
read-only, validates every boundary tag, and prints usage and the block list.

Example:
  umctl inspect short1.heap
  umctl inspect short1.heap --blocks=false
  umctl inspect short1.heap --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(args)
		},
	}
}

type inspectReport struct {
	Path   string        `json:"path"`
	Usage  alloc.Usage   `json:"usage"`
	Blocks []alloc.Block `json:"blocks,omitempty"`
}

func runInspect(args []string) error {
	path := args[0]

	printVerbose("Mapping heap: %s\n", path)
	r, err := heap.OpenSnapshot(path)
	if err != nil {
		return err
	}
	defer r.Close()

	h, err := alloc.Attach(r)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	u := h.Usage()

	if jsonOut {
		rep := inspectReport{Path: path, Usage: u}
		if inspectBlocks {
			h.Walk(func(b alloc.Block) bool {
				rep.Blocks = append(rep.Blocks, b)
				return true
			})
		}
		return printJSON(rep)
	}

	printInfo("%s\n", styled(titleStyle, "Heap: "+path))
	printInfo("  Size: %s (%s bytes)\n", humanize.IBytes(uint64(u.HeapBytes)), humanize.Comma(int64(u.HeapBytes)))
	printInfo("  Blocks: %d (%d allocated, %d free)\n", u.Blocks, u.AllocatedBlocks, u.FreeBlocks)
	printInfo("  Allocated: %s (payload %s)\n", humanize.IBytes(uint64(u.AllocatedBytes)), humanize.IBytes(uint64(u.PayloadBytes)))
	printInfo("  Free: %s (largest %s)\n", humanize.IBytes(uint64(u.FreeBytes)), humanize.IBytes(uint64(u.LargestFree)))
	printInfo("  Check: %s\n", styled(mutedStyle, "ok"))
	if inspectBlocks && !quiet {
		printInfo("\n")
		h.Dump(os.Stdout)
	}
	return nil
}
