package column

import (
	"github.com/cloudflare/ch-native/chtype"
	"github.com/cloudflare/ch-native/pool"
	"github.com/cloudflare/ch-native/proto"
	"github.com/pkg/errors"
)

// MaxRows caps the row count Read will accept for any one column,
// guarding against a corrupt or malicious block header claiming an
// unreasonable row count before any allocation happens. 0 disables the
// cap.
var MaxRows = 0

// Read dispatches on t.Kind to the per-type decoder. It is the single
// entry point the block codec calls once per named column.
func Read(r *proto.Reader, t chtype.Type, rows int, p *pool.Pool) (*Buffer, error) {
	if MaxRows > 0 && rows > MaxRows {
		return nil, errors.Errorf("column: declared row count %d exceeds limit %d", rows, MaxRows)
	}

	if isFixedWidth(t) {
		width := primitiveWidth(t)
		values, err := readPrimitiveSlab(r, rows, width)
		if err != nil {
			return nil, err
		}
		if t.Kind == chtype.KindEnum8 || t.Kind == chtype.KindEnum16 {
			if err := validateEnum(t, values); err != nil {
				return nil, err
			}
		}
		return &Buffer{Values: values, Rows: rows}, nil
	}

	switch t.Kind {
	case chtype.KindUUID:
		return readUUID(r, rows)
	case chtype.KindIPv4:
		return readIPv4(r, rows)
	case chtype.KindIPv6:
		return readIPv6(r, rows)
	case chtype.KindString:
		return readString(r, rows)
	case chtype.KindFixedString:
		return readFixedString(r, rows, t.FixedLen)
	case chtype.KindArray:
		return readArray(r, *t.Elem, rows, p)
	case chtype.KindMap:
		tupleType := chtype.Tuple(chtype.TupleElem{Type: *t.Key}, chtype.TupleElem{Type: *t.Value})
		return readArray(r, tupleType, rows, p)
	case chtype.KindTuple, chtype.KindNested:
		return readTuple(r, t.Fields, rows, p)
	case chtype.KindNullable:
		return readNullable(r, *t.Elem, rows, p)
	case chtype.KindLowCardinality:
		return readLowCardinality(r, *t.Elem, rows, p)
	case chtype.KindVariant:
		return readVariant(r, t.Variants, rows, p)
	case chtype.KindDynamic:
		return readDynamic(r, rows, p)
	default:
		return nil, &ErrSchema{Type: t, Message: "unsupported type for read"}
	}
}

// Write dispatches on t.Kind to the per-type encoder.
func Write(w *proto.Writer, t chtype.Type, buf *Buffer, p *pool.Pool) error {
	if isFixedWidth(t) {
		return writePrimitiveSlab(w, buf.Values)
	}

	switch t.Kind {
	case chtype.KindUUID:
		return writeUUID(w, buf)
	case chtype.KindIPv4:
		return writeIPv4(w, buf)
	case chtype.KindIPv6:
		return writeIPv6(w, buf)
	case chtype.KindString:
		return writeString(w, buf, p)
	case chtype.KindFixedString:
		return writeFixedString(w, buf)
	case chtype.KindArray:
		return writeArray(w, *t.Elem, buf, p)
	case chtype.KindMap:
		tupleType := chtype.Tuple(chtype.TupleElem{Type: *t.Key}, chtype.TupleElem{Type: *t.Value})
		return writeArray(w, tupleType, buf, p)
	case chtype.KindTuple, chtype.KindNested:
		return writeTuple(w, t.Fields, buf, p)
	case chtype.KindNullable:
		return writeNullable(w, *t.Elem, buf, p)
	case chtype.KindLowCardinality:
		return writeLowCardinality(w, *t.Elem, buf, p)
	case chtype.KindVariant:
		return writeVariant(w, t.Variants, buf, p)
	case chtype.KindDynamic:
		return writeDynamic(w, buf, p)
	default:
		return &ErrSchema{Type: t, Message: "unsupported type for write"}
	}
}
