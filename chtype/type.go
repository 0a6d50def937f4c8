// Package chtype implements the ClickHouse type grammar: a parser and
// printer for the printed type syntax, and the canonical in-memory
// representation the column and arrow packages key their codecs on.
package chtype

// Kind tags a ClickHouseType's variant. Dispatch on Kind, never on a
// type-switch over concrete Go types, to keep the hot primitive column
// path free of interface indirection.
type Kind uint8

const (
	KindUInt8 Kind = iota
	KindUInt16
	KindUInt32
	KindUInt64
	KindUInt128
	KindUInt256
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindInt128
	KindInt256
	KindFloat32
	KindFloat64
	KindBFloat16
	KindDecimal32
	KindDecimal64
	KindDecimal128
	KindDecimal256
	KindString
	KindFixedString
	KindDate
	KindDate32
	KindDateTime
	KindDateTime64
	KindUUID
	KindIPv4
	KindIPv6
	KindEnum8
	KindEnum16
	KindArray
	KindNullable
	KindLowCardinality
	KindMap
	KindTuple
	KindNested
	KindVariant
	KindDynamic
)

// EnumValue is one name/value pair of an Enum8/Enum16 mapping.
type EnumValue struct {
	Name  string
	Value int16
}

// TupleElem is one element of a Tuple, optionally named.
type TupleElem struct {
	Name string // empty for unnamed tuple elements
	Type Type
}

// Type is the tagged-union representation of a ClickHouse type. Only the
// fields relevant to Kind are populated; the zero value of the others is
// ignored by every codec.
type Type struct {
	Kind Kind

	// FixedString(n)
	FixedLen int

	// Decimal(P, S)
	Precision int
	Scale     int

	// DateTime(tz?) / DateTime64(p, tz?)
	DateTimePrecision int
	Timezone          string

	// Enum8/Enum16
	EnumValues []EnumValue

	// Array(T) / Nullable(T) / LowCardinality(T)
	Elem *Type

	// Map(K, V)
	Key   *Type
	Value *Type

	// Tuple(...) / Nested(...)
	Fields []TupleElem

	// Variant(...)
	Variants []Type
}

func ptr(t Type) *Type { return &t }

func Array(elem Type) Type          { return Type{Kind: KindArray, Elem: ptr(elem)} }
func Nullable(elem Type) Type       { return Type{Kind: KindNullable, Elem: ptr(elem)} }
func LowCardinality(elem Type) Type { return Type{Kind: KindLowCardinality, Elem: ptr(elem)} }
func Map(key, val Type) Type        { return Type{Kind: KindMap, Key: ptr(key), Value: ptr(val)} }
func Tuple(fields ...TupleElem) Type {
	return Type{Kind: KindTuple, Fields: fields}
}
func FixedString(n int) Type { return Type{Kind: KindFixedString, FixedLen: n} }
func Decimal(kind Kind, p, s int) Type {
	return Type{Kind: kind, Precision: p, Scale: s}
}
func DateTime(tz string) Type { return Type{Kind: KindDateTime, Timezone: tz} }
func DateTime64(precision int, tz string) Type {
	return Type{Kind: KindDateTime64, DateTimePrecision: precision, Timezone: tz}
}
func Enum(kind Kind, values []EnumValue) Type {
	return Type{Kind: kind, EnumValues: values}
}

var (
	UInt8   = Type{Kind: KindUInt8}
	UInt16  = Type{Kind: KindUInt16}
	UInt32  = Type{Kind: KindUInt32}
	UInt64  = Type{Kind: KindUInt64}
	UInt128 = Type{Kind: KindUInt128}
	UInt256 = Type{Kind: KindUInt256}
	Int8    = Type{Kind: KindInt8}
	Int16   = Type{Kind: KindInt16}
	Int32   = Type{Kind: KindInt32}
	Int64   = Type{Kind: KindInt64}
	Int128  = Type{Kind: KindInt128}
	Int256  = Type{Kind: KindInt256}
	Float32 = Type{Kind: KindFloat32}
	Float64 = Type{Kind: KindFloat64}
	String  = Type{Kind: KindString}
	Date    = Type{Kind: KindDate}
	Date32  = Type{Kind: KindDate32}
	UUID    = Type{Kind: KindUUID}
	IPv4    = Type{Kind: KindIPv4}
	IPv6    = Type{Kind: KindIPv6}
	Dynamic = Type{Kind: KindDynamic}
)

// Equal reports structural equality between two types, ignoring nothing —
// used by the type round-trip invariant (parse(print(t)) == t).
func Equal(a, b Type) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindFixedString:
		return a.FixedLen == b.FixedLen
	case KindDecimal32, KindDecimal64, KindDecimal128, KindDecimal256:
		return a.Precision == b.Precision && a.Scale == b.Scale
	case KindDateTime:
		return a.Timezone == b.Timezone
	case KindDateTime64:
		return a.DateTimePrecision == b.DateTimePrecision && a.Timezone == b.Timezone
	case KindEnum8, KindEnum16:
		return equalEnumValues(a.EnumValues, b.EnumValues)
	case KindArray, KindNullable, KindLowCardinality:
		return Equal(*a.Elem, *b.Elem)
	case KindMap:
		return Equal(*a.Key, *b.Key) && Equal(*a.Value, *b.Value)
	case KindTuple, KindNested:
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if a.Fields[i].Name != b.Fields[i].Name || !Equal(a.Fields[i].Type, b.Fields[i].Type) {
				return false
			}
		}
		return true
	case KindVariant:
		if len(a.Variants) != len(b.Variants) {
			return false
		}
		for i := range a.Variants {
			if !Equal(a.Variants[i], b.Variants[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func equalEnumValues(a, b []EnumValue) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
