package trace

import (
	"bufio"
	"io"
	"strconv"
)

// WriteTo writes tr in the text format Parse accepts.
func (tr *Trace) WriteTo(w io.Writer) (int64, error) {
	cw := &countWriter{w: w}
	bw := bufio.NewWriter(cw)

	for _, v := range []int{tr.HeapSize, tr.NumIDs, len(tr.Ops), tr.Weight} {
		bw.WriteString(strconv.Itoa(v))
		bw.WriteByte('\n')
	}
	for _, op := range tr.Ops {
		bw.WriteByte(byte(op.Kind))
		bw.WriteByte(' ')
		bw.WriteString(strconv.Itoa(op.ID))
		if op.Kind != OpFree {
			bw.WriteByte(' ')
			bw.WriteString(strconv.Itoa(op.Size))
		}
		bw.WriteByte('\n')
	}
	err := bw.Flush()
	return cw.n, err
}

type countWriter struct {
	w io.Writer
	n int64
}

func (c *countWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
