package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/joshuapare/umheap/internal/trace"
)

var (
	genOps     int
	genIDs     int
	genMaxSize int
	genSeed    uint64
	genOutput  string
)

func init() {
	cmd := newGenCmd()
	cmd.Flags().IntVar(&genOps, "ops", 1000, "Number of operations before the closing frees")
	cmd.Flags().IntVar(&genIDs, "ids", 100, "Number of distinct ids")
	cmd.Flags().IntVar(&genMaxSize, "max-size", 4096, "Largest request size in bytes")
	cmd.Flags().Uint64Var(&genSeed, "seed", 1, "Random seed")
	cmd.Flags().StringVarP(&genOutput, "output", "o", "", "Write the trace to a file instead of stdout")
	rootCmd.AddCommand(cmd)
}

func newGenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gen",
		Short: "Generate a random trace",
		Long: `The gen command writes a reproducible random workload in the trace
format accepted by replay. Every id still live at the end is freed.

Example:
  umctl gen --ops 5000 --seed 7 -o random.rep
  umctl gen --max-size 64 | umctl replay /dev/stdin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen()
		},
	}
}

func runGen() error {
	tr := trace.Generate(trace.Config{
		Ops:     genOps,
		IDs:     genIDs,
		MaxSize: genMaxSize,
		Seed:    genSeed,
	})

	var w io.Writer = os.Stdout
	if genOutput != "" {
		f, err := os.Create(genOutput)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	n, err := tr.WriteTo(w)
	if err != nil {
		return fmt.Errorf("write trace: %w", err)
	}

	if genOutput != "" {
		if jsonOut {
			return printJSON(map[string]any{
				"path":      genOutput,
				"ops":       len(tr.Ops),
				"ids":       tr.NumIDs,
				"heap_size": tr.HeapSize,
				"bytes":     n,
			})
		}
		printInfo("Wrote %s ops to %s (%s, peak payload %s)\n",
			humanize.Comma(int64(len(tr.Ops))), genOutput,
			humanize.IBytes(uint64(n)), humanize.IBytes(uint64(tr.HeapSize)))
	}
	return nil
}
