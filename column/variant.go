package column

import (
	"github.com/cloudflare/ch-native/chtype"
	"github.com/cloudflare/ch-native/pool"
	"github.com/cloudflare/ch-native/proto"
)

// readVariant reads the per-row discriminator byte followed by each
// variant's full-width column (ClickHouse serializes Variant as one
// discriminator column plus one column per declared alternative, each
// still holding `rows` logical slots so offsets line up across
// alternatives).
func readVariant(r *proto.Reader, variants []chtype.Type, rows int, p *pool.Pool) (*Buffer, error) {
	disc := make([]byte, rows)
	if err := r.Raw(disc); err != nil {
		return nil, err
	}
	out := &Buffer{Discriminators: disc, Variants: make([]*Buffer, len(variants)), Rows: rows}
	for i, v := range variants {
		child, err := Read(r, v, rows, p)
		if err != nil {
			return nil, err
		}
		out.Variants[i] = child
	}
	return out, nil
}

func writeVariant(w *proto.Writer, variants []chtype.Type, buf *Buffer, p *pool.Pool) error {
	if err := w.Raw(buf.Discriminators); err != nil {
		return err
	}
	for i, v := range variants {
		if err := Write(w, v, buf.Variants[i], p); err != nil {
			return err
		}
	}
	return nil
}

// readDynamic additionally carries a type-name table before the variant
// columns, indexed by the discriminator.
func readDynamic(r *proto.Reader, rows int, p *pool.Pool) (*Buffer, error) {
	n, err := r.Uvarint()
	if err != nil {
		return nil, err
	}
	names := make([]string, n)
	variants := make([]chtype.Type, n)
	for i := range names {
		s, err := r.String()
		if err != nil {
			return nil, err
		}
		names[i] = s
		t, err := chtype.Parse(s)
		if err != nil {
			return nil, err
		}
		variants[i] = t
	}
	buf, err := readVariant(r, variants, rows, p)
	if err != nil {
		return nil, err
	}
	buf.TypeNames = names
	return buf, nil
}

func writeDynamic(w *proto.Writer, buf *Buffer, p *pool.Pool) error {
	if err := w.Uvarint(uint64(len(buf.TypeNames))); err != nil {
		return err
	}
	variants := make([]chtype.Type, len(buf.TypeNames))
	for i, name := range buf.TypeNames {
		if err := w.String(name); err != nil {
			return err
		}
		t, err := chtype.Parse(name)
		if err != nil {
			return err
		}
		variants[i] = t
	}
	return writeVariant(w, variants, buf, p)
}
