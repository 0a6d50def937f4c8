// Package block implements the column-count/row-count/BlockInfo header and
// the per-column name/type/payload layout of a ClickHouse native data
// block, driving the column codec once per named column.
package block

import (
	"github.com/cloudflare/ch-native/chtype"
	"github.com/cloudflare/ch-native/column"
	"github.com/cloudflare/ch-native/pool"
	"github.com/cloudflare/ch-native/proto"
)

// Block is one columnar unit of transfer: C named, typed columns of equal
// row count R, plus the aggregation-pipeline passthrough flags in Info.
type Block struct {
	Info    proto.BlockInfo
	Names   []string
	Types   []chtype.Type
	Columns []*column.Buffer
	Rows    int
}

// Empty reports whether b carries zero rows — legal, and used by the
// server for schema-only announcements and by the client as the
// end-of-insert sentinel.
func (b *Block) Empty() bool { return b.Rows == 0 }

// Read decodes one block: header, then C (name, type, payload) triples.
func Read(r *proto.Reader, p *pool.Pool) (*Block, error) {
	colCount, err := r.Uvarint()
	if err != nil {
		return nil, err
	}
	rowCount, err := r.Uvarint()
	if err != nil {
		return nil, err
	}

	var info proto.BlockInfo
	if err := info.Read(r); err != nil {
		return nil, err
	}

	b := &Block{
		Info:    info,
		Names:   make([]string, colCount),
		Types:   make([]chtype.Type, colCount),
		Columns: make([]*column.Buffer, colCount),
		Rows:    int(rowCount),
	}

	for i := uint64(0); i < colCount; i++ {
		name, err := r.String()
		if err != nil {
			return nil, err
		}
		typeStr, err := r.String()
		if err != nil {
			return nil, err
		}
		t, err := chtype.Parse(typeStr)
		if err != nil {
			return nil, err
		}
		col, err := column.Read(r, t, b.Rows, p)
		if err != nil {
			return nil, err
		}
		b.Names[i] = name
		b.Types[i] = t
		b.Columns[i] = col
	}

	return b, nil
}

// Write encodes b in the same layout Read expects.
func Write(w *proto.Writer, b *Block, p *pool.Pool) error {
	if err := w.Uvarint(uint64(len(b.Columns))); err != nil {
		return err
	}
	if err := w.Uvarint(uint64(b.Rows)); err != nil {
		return err
	}
	if err := b.Info.Write(w); err != nil {
		return err
	}
	for i, col := range b.Columns {
		if err := w.String(b.Names[i]); err != nil {
			return err
		}
		if err := w.String(chtype.Print(b.Types[i])); err != nil {
			return err
		}
		if err := column.Write(w, b.Types[i], col, p); err != nil {
			return err
		}
	}
	return nil
}

// Sentinel returns the canonical empty block (R=0, no columns) used as the
// external-tables sentinel on the read path and the end-of-insert marker
// on the write path.
func Sentinel() *Block {
	return &Block{Info: proto.BlockInfo{BucketNum: -1}}
}
