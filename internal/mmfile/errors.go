package mmfile

import "errors"

// ErrTooLarge reports a file beyond the caller's size limit.
var ErrTooLarge = errors.New("mmfile: file too large")

func noop() error { return nil }
