// Package arrow maps ClickHouseType to Arrow's logical type system and
// converts between the column package's wire-native Buffer representation
// and apache/arrow-go record batches. No teacher or pack file builds Arrow
// batches from a ClickHouse wire format; this package is grounded directly
// on the mapping table and on apache/arrow-go's own array.Builder/
// arrow.Schema surface, the way the retrieval pack's own Arrow producers
// (e.g. the backtest pipeline's ConvertToArrow) build schemas and records.
package arrow

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/cloudflare/ch-native/chtype"
)

// chTypeMetaKey is the field-metadata key under which DataType records the
// printed ClickHouse type, which is what marks a FixedSizeBinary field as a
// UUID/IPv6/wide-integer value rather than an opaque byte string.
const (
	chTypeMetaKey = "clickhouse.type"
)

// DataType returns the Arrow logical type canonically paired with t, and
// the field metadata that preserves information Arrow's type system alone
// cannot carry (enum name/value mapping, the original printed type for
// round-tripping unsupported edge cases).
func DataType(t chtype.Type) (arrow.DataType, arrow.Metadata, error) {
	meta := arrow.NewMetadata([]string{chTypeMetaKey}, []string{chtype.Print(t)})

	switch t.Kind {
	case chtype.KindUInt8:
		return arrow.PrimitiveTypes.Uint8, meta, nil
	case chtype.KindUInt16:
		return arrow.PrimitiveTypes.Uint16, meta, nil
	case chtype.KindUInt32:
		return arrow.PrimitiveTypes.Uint32, meta, nil
	case chtype.KindUInt64:
		return arrow.PrimitiveTypes.Uint64, meta, nil
	case chtype.KindInt8:
		return arrow.PrimitiveTypes.Int8, meta, nil
	case chtype.KindInt16:
		return arrow.PrimitiveTypes.Int16, meta, nil
	case chtype.KindInt32:
		return arrow.PrimitiveTypes.Int32, meta, nil
	case chtype.KindInt64:
		return arrow.PrimitiveTypes.Int64, meta, nil
	case chtype.KindFloat32:
		return arrow.PrimitiveTypes.Float32, meta, nil
	case chtype.KindFloat64:
		return arrow.PrimitiveTypes.Float64, meta, nil
	case chtype.KindUInt128, chtype.KindInt128:
		return &arrow.FixedSizeBinaryType{ByteWidth: 16}, meta, nil
	case chtype.KindUInt256, chtype.KindInt256:
		return &arrow.FixedSizeBinaryType{ByteWidth: 32}, meta, nil
	case chtype.KindString:
		return arrow.BinaryTypes.String, meta, nil
	case chtype.KindFixedString:
		return &arrow.FixedSizeBinaryType{ByteWidth: t.FixedLen}, meta, nil
	case chtype.KindDate, chtype.KindDate32:
		return arrow.FixedWidthTypes.Date32, meta, nil
	case chtype.KindDateTime:
		return &arrow.TimestampType{Unit: arrow.Second, TimeZone: t.Timezone}, meta, nil
	case chtype.KindDateTime64:
		return &arrow.TimestampType{Unit: timeUnitForPrecision(t.DateTimePrecision), TimeZone: t.Timezone}, meta, nil
	case chtype.KindDecimal32, chtype.KindDecimal64:
		return &arrow.Decimal128Type{Precision: int32(t.Precision), Scale: int32(t.Scale)}, meta, nil
	case chtype.KindDecimal128:
		return &arrow.Decimal128Type{Precision: int32(t.Precision), Scale: int32(t.Scale)}, meta, nil
	case chtype.KindDecimal256:
		return &arrow.Decimal256Type{Precision: int32(t.Precision), Scale: int32(t.Scale)}, meta, nil
	case chtype.KindUUID:
		return &arrow.FixedSizeBinaryType{ByteWidth: 16}, meta, nil
	case chtype.KindIPv4:
		return &arrow.FixedSizeBinaryType{ByteWidth: 4}, meta, nil
	case chtype.KindIPv6:
		return &arrow.FixedSizeBinaryType{ByteWidth: 16}, meta, nil
	case chtype.KindEnum8, chtype.KindEnum16:
		return &arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Int16, ValueType: arrow.BinaryTypes.String}, enumMetadata(t), nil
	case chtype.KindArray:
		elemType, _, err := DataType(*t.Elem)
		if err != nil {
			return nil, meta, err
		}
		return arrow.ListOf(elemType), meta, nil
	case chtype.KindNullable:
		return DataType(*t.Elem)
	case chtype.KindLowCardinality:
		inner := *t.Elem
		if inner.Kind == chtype.KindNullable {
			inner = *inner.Elem
		}
		innerType, _, err := DataType(inner)
		if err != nil {
			return nil, meta, err
		}
		return &arrow.DictionaryType{IndexType: arrow.PrimitiveTypes.Uint32, ValueType: innerType}, meta, nil
	case chtype.KindMap:
		keyType, _, err := DataType(*t.Key)
		if err != nil {
			return nil, meta, err
		}
		valType, _, err := DataType(*t.Value)
		if err != nil {
			return nil, meta, err
		}
		return arrow.MapOf(keyType, valType), meta, nil
	case chtype.KindTuple, chtype.KindNested:
		fields := make([]arrow.Field, len(t.Fields))
		for i, f := range t.Fields {
			ft, _, err := DataType(f.Type)
			if err != nil {
				return nil, meta, err
			}
			name := f.Name
			if name == "" {
				name = fieldName(i)
			}
			fields[i] = arrow.Field{Name: name, Type: ft, Nullable: f.Type.Kind == chtype.KindNullable}
		}
		return arrow.StructOf(fields...), meta, nil
	case chtype.KindVariant, chtype.KindDynamic:
		variants := t.Variants
		fields := make([]arrow.Field, len(variants))
		typeCodes := make([]arrow.UnionTypeCode, len(variants))
		for i, v := range variants {
			vt, _, err := DataType(v)
			if err != nil {
				return nil, meta, err
			}
			fields[i] = arrow.Field{Name: fieldName(i), Type: vt}
			typeCodes[i] = arrow.UnionTypeCode(i)
		}
		return arrow.DenseUnionOf(fields, typeCodes), meta, nil
	default:
		return nil, meta, &unsupportedTypeError{t}
	}
}

func timeUnitForPrecision(p int) arrow.TimeUnit {
	switch {
	case p <= 0:
		return arrow.Second
	case p <= 3:
		return arrow.Millisecond
	case p <= 6:
		return arrow.Microsecond
	default:
		return arrow.Nanosecond
	}
}

func enumMetadata(t chtype.Type) arrow.Metadata {
	keys := []string{chTypeMetaKey}
	values := []string{chtype.Print(t)}
	for _, v := range t.EnumValues {
		keys = append(keys, "clickhouse.enum."+v.Name)
		values = append(values, intToString(int(v.Value)))
	}
	return arrow.NewMetadata(keys, values)
}

func fieldName(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	if i < len(letters) {
		return string(letters[i])
	}
	return "f" + intToString(i)
}

func intToString(v int) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [12]byte
	pos := len(buf)
	for v > 0 {
		pos--
		buf[pos] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

// unsupportedTypeError reports a ClickHouseType with no Arrow mapping.
type unsupportedTypeError struct{ t chtype.Type }

func (e *unsupportedTypeError) Error() string {
	return "arrow: no Arrow mapping for " + chtype.Print(e.t)
}
