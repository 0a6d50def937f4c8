package column

import (
	"github.com/cloudflare/ch-native/proto"
)

// readPrimitiveSlab reads rows*width bytes directly into a freshly
// allocated slab. On little-endian hosts (the only hosts this library
// targets, like the teacher's own primitive path) the bytes are the
// values: no per-element conversion happens here, which is the "zero-copy
// primitive path" the component design calls for. The arrow package does
// not wrap the slab: it copies the values into Arrow builders row by row.
func readPrimitiveSlab(r *proto.Reader, rows, width int) ([]byte, error) {
	buf := make([]byte, rows*width)
	if err := r.Raw(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// writePrimitiveSlab writes a slab produced the same way, with one
// syscall-level write for the whole column.
func writePrimitiveSlab(w *proto.Writer, values []byte) error {
	return w.Raw(values)
}
