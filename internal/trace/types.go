package trace

import (
	"errors"
	"fmt"
)

// OpKind identifies a trace operation.
type OpKind byte

const (
	OpAlloc   OpKind = 'a'
	OpRealloc OpKind = 'r'
	OpFree    OpKind = 'f'
)

func (k OpKind) String() string {
	switch k {
	case OpAlloc:
		return "alloc"
	case OpRealloc:
		return "realloc"
	case OpFree:
		return "free"
	default:
		return fmt.Sprintf("op(%q)", byte(k))
	}
}

// Op is one trace line. Size is unused for OpFree.
type Op struct {
	Kind OpKind
	ID   int
	Size int
}

// MaxIDs bounds the id count a trace header may declare.
const MaxIDs = 1 << 20

// initialOps caps the op slice preallocated from a header count.
const initialOps = 4096

// Trace is a parsed workload.
type Trace struct {
	// HeapSize is the suggested heap size from the header. Replay ignores it.
	HeapSize int
	NumIDs   int
	Weight   int
	Ops      []Op
}

var (
	// ErrSyntax reports a malformed trace file.
	ErrSyntax = errors.New("trace: syntax error")
	// ErrMismatch reports a payload that did not survive until its free or
	// realloc.
	ErrMismatch = errors.New("trace: payload mismatch")
)
