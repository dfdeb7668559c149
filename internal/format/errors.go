package format

import "errors"

var (
	// ErrTruncated indicates the buffer lacked the bytes required for a tag.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrMisaligned indicates a tag carried a size that is not 8-byte aligned.
	ErrMisaligned = errors.New("format: misaligned block size")
)
