package column

import (
	"github.com/cloudflare/ch-native/chtype"
	"github.com/cloudflare/ch-native/pool"
	"github.com/cloudflare/ch-native/proto"
)

// readNullable reads the byte-per-row null map first, then the inner
// values for all rows (null slots hold whatever the inner codec wrote,
// per the component design — the wire does not skip them).
func readNullable(r *proto.Reader, elem chtype.Type, rows int, p *pool.Pool) (*Buffer, error) {
	nullMap := make([]byte, rows)
	if err := r.Raw(nullMap); err != nil {
		return nil, err
	}
	child, err := Read(r, elem, rows, p)
	if err != nil {
		return nil, err
	}
	return &Buffer{Validity: nullMap, Child: child, Rows: rows}, nil
}

// writeNullable emits the null map and inner values as two writes; there
// is no vectored single-syscall variant.
func writeNullable(w *proto.Writer, elem chtype.Type, buf *Buffer, p *pool.Pool) error {
	if err := w.Raw(buf.Validity); err != nil {
		return err
	}
	return Write(w, elem, buf.Child, p)
}
