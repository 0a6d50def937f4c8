package column

import (
	"github.com/cloudflare/ch-native/chtype"
	"github.com/cloudflare/ch-native/pool"
	"github.com/cloudflare/ch-native/proto"
)

// readTuple reads each inner column in declaration order, each for rows
// rows. Nested is desugared to Array(Tuple(...)) before this is called,
// per the design notes, so this function only ever sees a flat Tuple.
func readTuple(r *proto.Reader, fields []chtype.TupleElem, rows int, p *pool.Pool) (*Buffer, error) {
	out := &Buffer{Fields: make([]*Buffer, len(fields)), Rows: rows}
	for i, f := range fields {
		child, err := Read(r, f.Type, rows, p)
		if err != nil {
			return nil, err
		}
		out.Fields[i] = child
	}
	return out, nil
}

func writeTuple(w *proto.Writer, fields []chtype.TupleElem, buf *Buffer, p *pool.Pool) error {
	for i, f := range fields {
		if err := Write(w, f.Type, buf.Fields[i], p); err != nil {
			return err
		}
	}
	return nil
}
