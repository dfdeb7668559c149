package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/umheap/internal/format"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// versionInfo is the version report, including the heap layout this build
// reads and writes.
type versionInfo struct {
	Version      string `json:"version"`
	Commit       string `json:"commit"`
	Built        string `json:"built"`
	Alignment    int    `json:"alignment"`
	WordSize     int    `json:"word_size"`
	MinBlockSize int    `json:"min_block_size"`
	ChunkSize    int    `json:"chunk_size"`
}

func currentVersion() versionInfo {
	return versionInfo{
		Version:      version,
		Commit:       commit,
		Built:        date,
		Alignment:    format.Alignment,
		WordSize:     format.WordSize,
		MinBlockSize: format.MinBlockSize,
		ChunkSize:    format.ChunkSize,
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and heap layout information",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVersion()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion() error {
	v := currentVersion()
	if jsonOut {
		return printJSON(v)
	}
	fmt.Printf("umctl %s\n", v.Version)
	fmt.Printf("  commit: %s\n", v.Commit)
	fmt.Printf("  built: %s\n", v.Built)
	fmt.Printf("  heap: %d-byte tags, %d-byte alignment, %d-byte minimum block, %d-byte chunk\n",
		v.WordSize, v.Alignment, v.MinBlockSize, v.ChunkSize)
	return nil
}
