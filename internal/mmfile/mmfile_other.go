//go:build !linux && !darwin

// Package mmfile maps heap images read-only for inspection.
package mmfile

import (
	"fmt"
	"os"
)

// Map reads the whole file where read-only mappings are not wired up.
func Map(path string, maxSize int64) ([]byte, func() error, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, err
	}
	if info.Size() > maxSize {
		return nil, nil, fmt.Errorf("mmfile: %s is %d bytes, limit %d: %w", path, info.Size(), maxSize, ErrTooLarge)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return data, noop, nil
}
