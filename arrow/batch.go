package arrow

import (
	"encoding/binary"

	goarrow "github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/cloudflare/ch-native/bitmap"
	"github.com/cloudflare/ch-native/block"
	"github.com/cloudflare/ch-native/chtype"
	"github.com/cloudflare/ch-native/column"
)

// FromBlock builds an Arrow record batch from a decoded native Block,
// one builder per column, following the canonical mapping of §6.
func FromBlock(b *block.Block, mem memory.Allocator) (goarrow.Record, error) {
	fields := make([]goarrow.Field, len(b.Columns))
	arrays := make([]goarrow.Array, len(b.Columns))

	for i, col := range b.Columns {
		t := b.Types[i]
		dt, meta, err := DataType(t)
		if err != nil {
			return nil, &arrowColumnError{column: b.Names[i], err: err}
		}
		nullable := t.Kind == chtype.KindNullable
		fields[i] = goarrow.Field{Name: b.Names[i], Type: dt, Nullable: nullable, Metadata: meta}

		arr, err := buildArray(mem, t, col)
		if err != nil {
			return nil, &arrowColumnError{column: b.Names[i], err: err}
		}
		arrays[i] = arr
	}

	schema := goarrow.NewSchema(fields, nil)
	rec := array.NewRecord(schema, arrays, int64(b.Rows))
	for _, a := range arrays {
		a.Release()
	}
	return rec, nil
}

type arrowColumnError struct {
	column string
	err    error
}

func (e *arrowColumnError) Error() string { return "arrow: column " + e.column + ": " + e.err.Error() }
func (e *arrowColumnError) Unwrap() error { return e.err }

// buildArray constructs one Arrow array from a column Buffer, dispatching
// on Kind the same way column.Read/Write do.
func buildArray(mem memory.Allocator, t chtype.Type, buf *column.Buffer) (goarrow.Array, error) {
	if t.Kind == chtype.KindNullable {
		return buildNullableArray(mem, *t.Elem, buf)
	}
	if t.Kind == chtype.KindLowCardinality {
		return buildDictionaryArray(mem, *t.Elem, buf)
	}
	if t.Kind == chtype.KindEnum8 || t.Kind == chtype.KindEnum16 {
		return buildEnumArray(mem, t, buf)
	}

	b, err := newBuilder(mem, t)
	if err != nil {
		return nil, err
	}
	defer b.Release()
	for i := 0; i < buf.Rows; i++ {
		if err := appendValue(mem, b, t, buf, i); err != nil {
			return nil, err
		}
	}
	return b.NewArray(), nil
}

func buildNullableArray(mem memory.Allocator, inner chtype.Type, buf *column.Buffer) (goarrow.Array, error) {
	b, err := newBuilder(mem, inner)
	if err != nil {
		return nil, err
	}
	defer b.Release()
	for i := 0; i < buf.Rows; i++ {
		if buf.Validity[i] != 0 {
			b.AppendNull()
			continue
		}
		if err := appendValue(mem, b, inner, buf.Child, i); err != nil {
			return nil, err
		}
	}
	return b.NewArray(), nil
}

func buildDictionaryArray(mem memory.Allocator, elem chtype.Type, buf *column.Buffer) (goarrow.Array, error) {
	inner := elem
	if inner.Kind == chtype.KindNullable {
		inner = *inner.Elem
	}
	dictArr, err := buildArray(mem, inner, buf.Dict)
	if err != nil {
		return nil, err
	}
	defer dictArr.Release()

	idxBuilder := array.NewUint32Builder(mem)
	defer idxBuilder.Release()
	for i := 0; i < buf.Rows; i++ {
		idxBuilder.Append(uint32(keyAtPublic(buf, i)))
	}
	idxArr := idxBuilder.NewArray()
	defer idxArr.Release()

	dt := &goarrow.DictionaryType{IndexType: goarrow.PrimitiveTypes.Uint32, ValueType: dictArr.DataType()}
	return array.NewDictionaryArray(dt, idxArr, dictArr), nil
}

func buildEnumArray(mem memory.Allocator, t chtype.Type, buf *column.Buffer) (goarrow.Array, error) {
	dictBuilder := array.NewStringBuilder(mem)
	defer dictBuilder.Release()
	valueOf := make(map[int16]int)
	for i, v := range t.EnumValues {
		dictBuilder.Append(v.Name)
		valueOf[v.Value] = i
	}
	dictArr := dictBuilder.NewArray()
	defer dictArr.Release()

	width := 1
	if t.Kind == chtype.KindEnum16 {
		width = 2
	}
	idxBuilder := array.NewInt16Builder(mem)
	defer idxBuilder.Release()
	for i := 0; i < buf.Rows; i++ {
		var v int16
		if width == 1 {
			v = int16(int8(buf.Values[i]))
		} else {
			v = int16(binary.LittleEndian.Uint16(buf.Values[i*2 : i*2+2]))
		}
		idxBuilder.Append(int16(valueOf[v]))
	}
	idxArr := idxBuilder.NewArray()
	defer idxArr.Release()

	dt := &goarrow.DictionaryType{IndexType: goarrow.PrimitiveTypes.Int16, ValueType: goarrow.BinaryTypes.String}
	return array.NewDictionaryArray(dt, idxArr, dictArr), nil
}

// keyAtPublic mirrors column's unexported keyAt for the index widths
// LowCardinality stores; duplicated here rather than exported across the
// package boundary since it is a three-line integer widen.
func keyAtPublic(buf *column.Buffer, i int) uint64 {
	switch buf.KeyWidth {
	case 1:
		return uint64(buf.Keys[i])
	case 2:
		return uint64(binary.LittleEndian.Uint16(buf.Keys[i*2 : i*2+2]))
	case 4:
		return uint64(binary.LittleEndian.Uint32(buf.Keys[i*4 : i*4+4]))
	default:
		return binary.LittleEndian.Uint64(buf.Keys[i*8 : i*8+8])
	}
}

func newBuilder(mem memory.Allocator, t chtype.Type) (array.Builder, error) {
	dt, _, err := DataType(t)
	if err != nil {
		return nil, err
	}
	switch t.Kind {
	case chtype.KindArray:
		elemType, _, err := DataType(*t.Elem)
		if err != nil {
			return nil, err
		}
		return array.NewListBuilder(mem, elemType), nil
	case chtype.KindTuple, chtype.KindNested:
		return array.NewStructBuilder(mem, dt.(*goarrow.StructType)), nil
	default:
		return array.NewBuilder(mem, dt), nil
	}
}

func appendValue(mem memory.Allocator, b array.Builder, t chtype.Type, buf *column.Buffer, row int) error {
	switch t.Kind {
	case chtype.KindUInt8:
		b.(*array.Uint8Builder).Append(buf.Values[row])
	case chtype.KindUInt16:
		b.(*array.Uint16Builder).Append(binary.LittleEndian.Uint16(buf.Values[row*2:]))
	case chtype.KindUInt32:
		b.(*array.Uint32Builder).Append(binary.LittleEndian.Uint32(buf.Values[row*4:]))
	case chtype.KindUInt64:
		b.(*array.Uint64Builder).Append(binary.LittleEndian.Uint64(buf.Values[row*8:]))
	case chtype.KindInt8:
		b.(*array.Int8Builder).Append(int8(buf.Values[row]))
	case chtype.KindInt16:
		b.(*array.Int16Builder).Append(int16(binary.LittleEndian.Uint16(buf.Values[row*2:])))
	case chtype.KindInt32:
		b.(*array.Int32Builder).Append(int32(binary.LittleEndian.Uint32(buf.Values[row*4:])))
	case chtype.KindInt64:
		b.(*array.Int64Builder).Append(int64(binary.LittleEndian.Uint64(buf.Values[row*8:])))
	case chtype.KindFloat32:
		bits := binary.LittleEndian.Uint32(buf.Values[row*4:])
		b.(*array.Float32Builder).Append(float32FromBits(bits))
	case chtype.KindFloat64:
		bits := binary.LittleEndian.Uint64(buf.Values[row*8:])
		b.(*array.Float64Builder).Append(float64FromBits(bits))
	case chtype.KindDate:
		days := binary.LittleEndian.Uint16(buf.Values[row*2:])
		b.(*array.Date32Builder).Append(goarrow.Date32(days))
	case chtype.KindDate32:
		days := int32(binary.LittleEndian.Uint32(buf.Values[row*4:]))
		b.(*array.Date32Builder).Append(goarrow.Date32(days))
	case chtype.KindDateTime:
		secs := binary.LittleEndian.Uint32(buf.Values[row*4:])
		b.(*array.TimestampBuilder).Append(goarrow.Timestamp(secs))
	case chtype.KindDateTime64:
		ticks := int64(binary.LittleEndian.Uint64(buf.Values[row*8:]))
		b.(*array.TimestampBuilder).Append(goarrow.Timestamp(ticks))
	case chtype.KindString:
		b.(*array.StringBuilder).AppendString(string(buf.Data[row]))
	case chtype.KindFixedString:
		n := t.FixedLen
		b.(*array.FixedSizeBinaryBuilder).Append(buf.Values[row*n : row*n+n])
	case chtype.KindUUID:
		b.(*array.FixedSizeBinaryBuilder).Append(buf.Values[row*16 : row*16+16])
	case chtype.KindIPv4:
		b.(*array.FixedSizeBinaryBuilder).Append(buf.Values[row*4 : row*4+4])
	case chtype.KindIPv6:
		b.(*array.FixedSizeBinaryBuilder).Append(buf.Values[row*16 : row*16+16])
	case chtype.KindUInt128, chtype.KindInt128:
		b.(*array.FixedSizeBinaryBuilder).Append(buf.Values[row*16 : row*16+16])
	case chtype.KindUInt256, chtype.KindInt256:
		b.(*array.FixedSizeBinaryBuilder).Append(buf.Values[row*32 : row*32+32])
	case chtype.KindArray:
		lb := b.(*array.ListBuilder)
		lb.Append(true)
		start := uint64(0)
		if row > 0 {
			start = buf.Offsets[row-1]
		}
		end := buf.Offsets[row]
		vb := lb.ValueBuilder()
		for j := start; j < end; j++ {
			if err := appendValue(mem, vb, *t.Elem, buf.Child, int(j)); err != nil {
				return err
			}
		}
	case chtype.KindTuple, chtype.KindNested:
		sb := b.(*array.StructBuilder)
		sb.Append(true)
		for fi, f := range t.Fields {
			if err := appendValue(mem, sb.FieldBuilder(fi), f.Type, buf.Fields[fi], row); err != nil {
				return err
			}
		}
	default:
		return &unsupportedTypeError{t}
	}
	return nil
}

func float32FromBits(bits uint32) float32 {
	return goarrow.Float32Traits.CastFromBytes(toBytes4(bits))[0]
}

func float64FromBits(bits uint64) float64 {
	return goarrow.Float64Traits.CastFromBytes(toBytes8(bits))[0]
}

func toBytes4(v uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return buf
}

func toBytes8(v uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	return buf
}

// ToValidityBitmap converts a Buffer's byte-per-row null map into the
// packed bitmap arrow.Array.Data expects.
func ToValidityBitmap(validity []byte) []byte {
	packed := make([]byte, (len(validity)+7)/8)
	bitmap.Pack(packed, validity, 0, len(validity))
	return packed
}

// FromValidityBitmap expands a packed Arrow validity bitmap into the
// byte-per-row null map the column codec writes on the wire.
func FromValidityBitmap(bm []byte, n int) []byte {
	out := make([]byte, n)
	bitmap.Expand(out, bm, 0, n)
	return out
}
