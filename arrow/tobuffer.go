package arrow

import (
	"encoding/binary"
	"fmt"

	goarrow "github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/cloudflare/ch-native/block"
	"github.com/cloudflare/ch-native/chtype"
	"github.com/cloudflare/ch-native/column"
	"github.com/cloudflare/ch-native/proto"
)

// ToBlock converts a caller-supplied record batch into a native Block ready
// for block.Write, the inverse of FromBlock used on the insert path. names
// and types describe the server's schema announcement; rec's column count
// must match. Every conversion below is schema-checked rather than
// type-asserted blindly, so a caller's batch that disagrees with the
// announced schema surfaces as a *column.ErrSchema before block.Write ever runs,
// instead of a panic partway through an insert.
func ToBlock(rec goarrow.Record, names []string, types []chtype.Type) (*block.Block, error) {
	if int(rec.NumCols()) != len(types) {
		return nil, &column.ErrSchema{Message: "record batch column count does not match announced schema"}
	}
	rows := int(rec.NumRows())
	cols := make([]*column.Buffer, len(types))
	for i, t := range types {
		buf, err := bufferFromArray(t, rec.Column(i), rows)
		if err != nil {
			return nil, &arrowColumnError{column: names[i], err: err}
		}
		cols[i] = buf
	}
	return &block.Block{
		Info:    proto.BlockInfo{BucketNum: -1},
		Names:   names,
		Types:   types,
		Columns: cols,
		Rows:    rows,
	}, nil
}

// typeMismatch reports that the Arrow array backing an insert column isn't
// the concrete type the announced ClickHouse type requires.
func typeMismatch(t chtype.Type, want string, arr goarrow.Array) error {
	return &column.ErrSchema{Type: t, Message: fmt.Sprintf("insert column has Arrow type %T, want %s", arr, want)}
}

// bufferFromArray builds a wire-native Buffer from one Arrow array,
// dispatching on Kind the same way buildArray does in reverse.
func bufferFromArray(t chtype.Type, arr goarrow.Array, rows int) (*column.Buffer, error) {
	if t.Kind == chtype.KindNullable {
		return nullableBufferFromArray(*t.Elem, arr, rows)
	}
	if t.Kind == chtype.KindLowCardinality {
		return dictionaryBufferFromArray(*t.Elem, arr, rows)
	}
	if t.Kind == chtype.KindEnum8 || t.Kind == chtype.KindEnum16 {
		return enumBufferFromArray(t, arr, rows)
	}

	switch t.Kind {
	case chtype.KindUInt8:
		a, ok := arr.(*array.Uint8)
		if !ok {
			return nil, typeMismatch(t, "Uint8", arr)
		}
		return &column.Buffer{Values: a.Uint8Values(), Rows: rows}, nil
	case chtype.KindUInt16:
		a, ok := arr.(*array.Uint16)
		if !ok {
			return nil, typeMismatch(t, "Uint16", arr)
		}
		return &column.Buffer{Values: slabUint16(a.Uint16Values()), Rows: rows}, nil
	case chtype.KindUInt32:
		a, ok := arr.(*array.Uint32)
		if !ok {
			return nil, typeMismatch(t, "Uint32", arr)
		}
		return &column.Buffer{Values: slabUint32(a.Uint32Values()), Rows: rows}, nil
	case chtype.KindUInt64:
		a, ok := arr.(*array.Uint64)
		if !ok {
			return nil, typeMismatch(t, "Uint64", arr)
		}
		return &column.Buffer{Values: slabUint64(a.Uint64Values()), Rows: rows}, nil
	case chtype.KindInt8:
		a, ok := arr.(*array.Int8)
		if !ok {
			return nil, typeMismatch(t, "Int8", arr)
		}
		out := make([]byte, rows)
		for i, v := range a.Int8Values() {
			out[i] = byte(v)
		}
		return &column.Buffer{Values: out, Rows: rows}, nil
	case chtype.KindInt16:
		a, ok := arr.(*array.Int16)
		if !ok {
			return nil, typeMismatch(t, "Int16", arr)
		}
		vals := a.Int16Values()
		u := make([]uint16, len(vals))
		for i, v := range vals {
			u[i] = uint16(v)
		}
		return &column.Buffer{Values: slabUint16(u), Rows: rows}, nil
	case chtype.KindInt32:
		a, ok := arr.(*array.Int32)
		if !ok {
			return nil, typeMismatch(t, "Int32", arr)
		}
		vals := a.Int32Values()
		u := make([]uint32, len(vals))
		for i, v := range vals {
			u[i] = uint32(v)
		}
		return &column.Buffer{Values: slabUint32(u), Rows: rows}, nil
	case chtype.KindInt64:
		a, ok := arr.(*array.Int64)
		if !ok {
			return nil, typeMismatch(t, "Int64", arr)
		}
		vals := a.Int64Values()
		u := make([]uint64, len(vals))
		for i, v := range vals {
			u[i] = uint64(v)
		}
		return &column.Buffer{Values: slabUint64(u), Rows: rows}, nil
	case chtype.KindFloat32:
		a, ok := arr.(*array.Float32)
		if !ok {
			return nil, typeMismatch(t, "Float32", arr)
		}
		vals := a.Float32Values()
		out := make([]byte, rows*4)
		for i, v := range vals {
			binary.LittleEndian.PutUint32(out[i*4:], float32Bits(v))
		}
		return &column.Buffer{Values: out, Rows: rows}, nil
	case chtype.KindFloat64:
		a, ok := arr.(*array.Float64)
		if !ok {
			return nil, typeMismatch(t, "Float64", arr)
		}
		vals := a.Float64Values()
		out := make([]byte, rows*8)
		for i, v := range vals {
			binary.LittleEndian.PutUint64(out[i*8:], float64Bits(v))
		}
		return &column.Buffer{Values: out, Rows: rows}, nil
	case chtype.KindDate:
		a, ok := arr.(*array.Date32)
		if !ok {
			return nil, typeMismatch(t, "Date32", arr)
		}
		out := make([]byte, rows*2)
		for i, v := range a.Date32Values() {
			binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
		}
		return &column.Buffer{Values: out, Rows: rows}, nil
	case chtype.KindDate32:
		a, ok := arr.(*array.Date32)
		if !ok {
			return nil, typeMismatch(t, "Date32", arr)
		}
		out := make([]byte, rows*4)
		for i, v := range a.Date32Values() {
			binary.LittleEndian.PutUint32(out[i*4:], uint32(v))
		}
		return &column.Buffer{Values: out, Rows: rows}, nil
	case chtype.KindDateTime:
		a, ok := arr.(*array.Timestamp)
		if !ok {
			return nil, typeMismatch(t, "Timestamp", arr)
		}
		out := make([]byte, rows*4)
		for i, v := range a.TimestampValues() {
			binary.LittleEndian.PutUint32(out[i*4:], uint32(v))
		}
		return &column.Buffer{Values: out, Rows: rows}, nil
	case chtype.KindDateTime64:
		a, ok := arr.(*array.Timestamp)
		if !ok {
			return nil, typeMismatch(t, "Timestamp", arr)
		}
		out := make([]byte, rows*8)
		for i, v := range a.TimestampValues() {
			binary.LittleEndian.PutUint64(out[i*8:], uint64(v))
		}
		return &column.Buffer{Values: out, Rows: rows}, nil
	case chtype.KindString:
		a, ok := arr.(*array.String)
		if !ok {
			return nil, typeMismatch(t, "String", arr)
		}
		data := make([][]byte, rows)
		for i := 0; i < rows; i++ {
			data[i] = []byte(a.Value(i))
		}
		return &column.Buffer{Data: data, Rows: rows}, nil
	case chtype.KindFixedString, chtype.KindUUID, chtype.KindIPv4, chtype.KindIPv6,
		chtype.KindUInt128, chtype.KindInt128, chtype.KindUInt256, chtype.KindInt256:
		a, ok := arr.(*array.FixedSizeBinary)
		if !ok {
			return nil, typeMismatch(t, "FixedSizeBinary", arr)
		}
		width := a.DataType().(*goarrow.FixedSizeBinaryType).ByteWidth
		out := make([]byte, rows*width)
		for i := 0; i < rows; i++ {
			copy(out[i*width:], a.Value(i))
		}
		return &column.Buffer{Values: out, Rows: rows}, nil
	case chtype.KindArray:
		la, ok := arr.(*array.List)
		if !ok {
			return nil, typeMismatch(t, "List", arr)
		}
		return arrayBufferFromArray(*t.Elem, la, rows)
	case chtype.KindTuple, chtype.KindNested:
		sa, ok := arr.(*array.Struct)
		if !ok {
			return nil, typeMismatch(t, "Struct", arr)
		}
		return tupleBufferFromArray(t.Fields, sa, rows)
	default:
		return nil, &unsupportedTypeError{t}
	}
}

func nullableBufferFromArray(inner chtype.Type, arr goarrow.Array, rows int) (*column.Buffer, error) {
	child, err := bufferFromArray(inner, arr, rows)
	if err != nil {
		return nil, err
	}
	validity := make([]byte, rows)
	for i := 0; i < rows; i++ {
		if arr.IsNull(i) {
			validity[i] = 1
		}
	}
	return &column.Buffer{Validity: validity, Child: child, Rows: rows}, nil
}

func dictionaryBufferFromArray(elem chtype.Type, arr goarrow.Array, rows int) (*column.Buffer, error) {
	da, ok := arr.(*array.Dictionary)
	if !ok {
		return nil, typeMismatch(chtype.LowCardinality(elem), "Dictionary", arr)
	}
	inner := elem
	if inner.Kind == chtype.KindNullable {
		inner = *inner.Elem
	}
	dict, err := bufferFromArray(inner, da.Dictionary(), da.Dictionary().Len())
	if err != nil {
		return nil, err
	}
	indices, ok := da.Indices().(*array.Uint32)
	if !ok {
		return nil, typeMismatch(chtype.LowCardinality(elem), "Dictionary<Uint32 indices>", arr)
	}
	keys := make([]byte, rows*4)
	for i := 0; i < rows; i++ {
		binary.LittleEndian.PutUint32(keys[i*4:], indices.Value(i))
	}
	return &column.Buffer{Dict: dict, Keys: keys, KeyWidth: 4, Rows: rows}, nil
}

func enumBufferFromArray(t chtype.Type, arr goarrow.Array, rows int) (*column.Buffer, error) {
	da, ok := arr.(*array.Dictionary)
	if !ok {
		return nil, typeMismatch(t, "Dictionary", arr)
	}
	dict, ok := da.Dictionary().(*array.String)
	if !ok {
		return nil, typeMismatch(t, "Dictionary<String values>", arr)
	}
	indices, ok := da.Indices().(*array.Int16)
	if !ok {
		return nil, typeMismatch(t, "Dictionary<Int16 indices>", arr)
	}
	valueOf := make(map[string]int16, len(t.EnumValues))
	for _, v := range t.EnumValues {
		valueOf[v.Name] = v.Value
	}
	width := 1
	if t.Kind == chtype.KindEnum16 {
		width = 2
	}
	out := make([]byte, rows*width)
	for i := 0; i < rows; i++ {
		name := dict.Value(int(indices.Value(i)))
		v, known := valueOf[name]
		if !known {
			return nil, &column.ErrSchema{Type: t, Message: fmt.Sprintf("insert column enum value %q not in announced mapping", name)}
		}
		if width == 1 {
			out[i] = byte(v)
		} else {
			binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
		}
	}
	return &column.Buffer{Values: out, Rows: rows}, nil
}

func arrayBufferFromArray(elem chtype.Type, la *array.List, rows int) (*column.Buffer, error) {
	offsets := make([]uint64, rows)
	for i := 0; i < rows; i++ {
		_, end := la.ValueOffsets(i)
		offsets[i] = uint64(end)
	}
	childRows := la.ListValues().Len()
	child, err := bufferFromArray(elem, la.ListValues(), childRows)
	if err != nil {
		return nil, err
	}
	return &column.Buffer{Offsets: offsets, Child: child, Rows: rows}, nil
}

func tupleBufferFromArray(fields []chtype.TupleElem, sa *array.Struct, rows int) (*column.Buffer, error) {
	if sa.NumField() != len(fields) {
		return nil, &column.ErrSchema{Message: "insert column struct field count does not match announced tuple"}
	}
	out := make([]*column.Buffer, len(fields))
	for i, f := range fields {
		buf, err := bufferFromArray(f.Type, sa.Field(i), rows)
		if err != nil {
			return nil, err
		}
		out[i] = buf
	}
	return &column.Buffer{Fields: out, Rows: rows}, nil
}

func slabUint16(vals []uint16) []byte {
	out := make([]byte, len(vals)*2)
	for i, v := range vals {
		binary.LittleEndian.PutUint16(out[i*2:], v)
	}
	return out
}

func slabUint32(vals []uint32) []byte {
	out := make([]byte, len(vals)*4)
	for i, v := range vals {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return out
}

func slabUint64(vals []uint64) []byte {
	out := make([]byte, len(vals)*8)
	for i, v := range vals {
		binary.LittleEndian.PutUint64(out[i*8:], v)
	}
	return out
}

func float32Bits(v float32) uint32 {
	b := goarrow.Float32Traits.CastToBytes([]float32{v})
	return binary.LittleEndian.Uint32(b)
}

func float64Bits(v float64) uint64 {
	b := goarrow.Float64Traits.CastToBytes([]float64{v})
	return binary.LittleEndian.Uint64(b)
}
