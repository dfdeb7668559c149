package trace

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const headerFields = 4

// Parse reads a trace. Blank lines and lines starting with '#' are skipped.
// The op count in the header must match the number of op lines, the id count
// may not exceed MaxIDs, and every id must be below the declared id count.
func Parse(r io.Reader) (*Trace, error) {
	scanner := bufio.NewScanner(r)
	var (
		header [headerFields]int
		nhdr   int
		tr     Trace
		lineNo int
	)

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if nhdr < headerFields {
			v, err := strconv.Atoi(line)
			if err != nil || v < 0 {
				return nil, fmt.Errorf("line %d: header value %q: %w", lineNo, line, ErrSyntax)
			}
			header[nhdr] = v
			nhdr++
			if nhdr == headerFields {
				if header[1] > MaxIDs {
					return nil, fmt.Errorf("line %d: %d ids exceeds %d: %w", lineNo, header[1], MaxIDs, ErrSyntax)
				}
				tr.HeapSize, tr.NumIDs, tr.Weight = header[0], header[1], header[3]
				tr.Ops = make([]Op, 0, min(header[2], initialOps))
			}
			continue
		}

		op, err := parseOp(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if op.ID >= tr.NumIDs {
			return nil, fmt.Errorf("line %d: id %d outside [0, %d): %w", lineNo, op.ID, tr.NumIDs, ErrSyntax)
		}
		tr.Ops = append(tr.Ops, op)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if nhdr < headerFields {
		return nil, fmt.Errorf("header has %d of %d values: %w", nhdr, headerFields, ErrSyntax)
	}
	if len(tr.Ops) != header[2] {
		return nil, fmt.Errorf("header declares %d ops, found %d: %w", header[2], len(tr.Ops), ErrSyntax)
	}
	return &tr, nil
}

func parseOp(line string) (Op, error) {
	fields := strings.Fields(line)
	if len(fields[0]) != 1 {
		return Op{}, fmt.Errorf("unknown op %q: %w", fields[0], ErrSyntax)
	}
	kind := OpKind(fields[0][0])

	want := 3
	switch kind {
	case OpAlloc, OpRealloc:
	case OpFree:
		want = 2
	default:
		return Op{}, fmt.Errorf("unknown op %q: %w", fields[0], ErrSyntax)
	}
	if len(fields) != want {
		return Op{}, fmt.Errorf("%s takes %d fields, got %d: %w", kind, want-1, len(fields)-1, ErrSyntax)
	}

	id, err := strconv.Atoi(fields[1])
	if err != nil || id < 0 {
		return Op{}, fmt.Errorf("%s: bad id %q: %w", kind, fields[1], ErrSyntax)
	}
	op := Op{Kind: kind, ID: id}
	if want == 3 {
		op.Size, err = strconv.Atoi(fields[2])
		if err != nil || op.Size < 0 {
			return Op{}, fmt.Errorf("%s %d: bad size %q: %w", kind, id, fields[2], ErrSyntax)
		}
	}
	return op, nil
}
