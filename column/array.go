package column

import (
	"github.com/cloudflare/ch-native/chtype"
	"github.com/cloudflare/ch-native/pool"
	"github.com/cloudflare/ch-native/proto"
	"github.com/pkg/errors"
)

// ErrOffsetsNotMonotone is returned when decoded Array/Map offsets
// decrease, violating the "offsets monotone" invariant.
var ErrOffsetsNotMonotone = errors.New("column: array offsets are not non-decreasing")

// readArray reads rows cumulative UInt64 offsets, then the inner elem
// column for offsets[rows-1] total elements. Map(K,V) reuses this against
// an elem type of Tuple(K,V) per the component design.
func readArray(r *proto.Reader, elem chtype.Type, rows int, p *pool.Pool) (*Buffer, error) {
	offsets := make([]uint64, rows)
	var prev uint64
	for i := 0; i < rows; i++ {
		off, err := r.UInt64()
		if err != nil {
			return nil, err
		}
		if off < prev {
			return nil, ErrOffsetsNotMonotone
		}
		offsets[i] = off
		prev = off
	}
	total := 0
	if rows > 0 {
		total = int(offsets[rows-1])
	}
	child, err := Read(r, elem, total, p)
	if err != nil {
		return nil, err
	}
	return &Buffer{Offsets: offsets, Child: child, Rows: rows}, nil
}

func writeArray(w *proto.Writer, elem chtype.Type, buf *Buffer, p *pool.Pool) error {
	for _, off := range buf.Offsets {
		if err := w.UInt64(off); err != nil {
			return err
		}
	}
	return Write(w, elem, buf.Child, p)
}
