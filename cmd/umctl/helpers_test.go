package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/umheap/heap"
	"github.com/joshuapare/umheap/internal/trace"
)

// resetFlags restores every command flag to its default.
func resetFlags() {
	verbose, quiet, jsonOut, noColor = false, false, false, true
	replayHost, replayLimit, replayHeapFile = hostMem, heap.DefaultLimit, ""
	replayVerify, replayMetrics = false, false
	genOps, genIDs, genMaxSize, genSeed, genOutput = 1000, 100, 4096, 1, ""
	inspectBlocks = true
}

// writeTrace generates a trace into dir and returns its path.
func writeTrace(t *testing.T, dir, name string, cfg trace.Config) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = trace.Generate(cfg).WriteTo(f)
	require.NoError(t, err)
	return path
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	// Drain concurrently so large outputs cannot fill the pipe.
	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout
	out := <-done
	r.Close()

	return string(out), fnErr
}

// assertJSON checks that output is valid JSON
func assertJSON(t *testing.T, output string) {
	t.Helper()
	var result any
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Errorf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}
