package chtype

import (
	"fmt"
	"strings"
)

// Print renders t in the canonical ClickHouse type syntax. print(parse(s))
// == canonicalize(s) for every server-produced string.
func Print(t Type) string {
	switch t.Kind {
	case KindUInt8:
		return "UInt8"
	case KindUInt16:
		return "UInt16"
	case KindUInt32:
		return "UInt32"
	case KindUInt64:
		return "UInt64"
	case KindUInt128:
		return "UInt128"
	case KindUInt256:
		return "UInt256"
	case KindInt8:
		return "Int8"
	case KindInt16:
		return "Int16"
	case KindInt32:
		return "Int32"
	case KindInt64:
		return "Int64"
	case KindInt128:
		return "Int128"
	case KindInt256:
		return "Int256"
	case KindFloat32:
		return "Float32"
	case KindFloat64:
		return "Float64"
	case KindBFloat16:
		return "BFloat16"
	case KindString:
		return "String"
	case KindDate:
		return "Date"
	case KindDate32:
		return "Date32"
	case KindUUID:
		return "UUID"
	case KindIPv4:
		return "IPv4"
	case KindIPv6:
		return "IPv6"
	case KindDynamic:
		return "Dynamic"
	case KindFixedString:
		return fmt.Sprintf("FixedString(%d)", t.FixedLen)
	case KindDateTime:
		if t.Timezone == "" {
			return "DateTime"
		}
		return fmt.Sprintf("DateTime('%s')", t.Timezone)
	case KindDateTime64:
		if t.Timezone == "" {
			return fmt.Sprintf("DateTime64(%d)", t.DateTimePrecision)
		}
		return fmt.Sprintf("DateTime64(%d, '%s')", t.DateTimePrecision, t.Timezone)
	case KindDecimal32, KindDecimal64, KindDecimal128, KindDecimal256:
		return fmt.Sprintf("Decimal(%d, %d)", t.Precision, t.Scale)
	case KindEnum8, KindEnum16:
		name := "Enum8"
		if t.Kind == KindEnum16 {
			name = "Enum16"
		}
		parts := make([]string, len(t.EnumValues))
		for i, v := range t.EnumValues {
			parts[i] = fmt.Sprintf("'%s' = %d", escapeEnumLabel(v.Name), v.Value)
		}
		return fmt.Sprintf("%s(%s)", name, strings.Join(parts, ", "))
	case KindArray:
		return fmt.Sprintf("Array(%s)", Print(*t.Elem))
	case KindNullable:
		return fmt.Sprintf("Nullable(%s)", Print(*t.Elem))
	case KindLowCardinality:
		return fmt.Sprintf("LowCardinality(%s)", Print(*t.Elem))
	case KindMap:
		return fmt.Sprintf("Map(%s, %s)", Print(*t.Key), Print(*t.Value))
	case KindTuple:
		return fmt.Sprintf("Tuple(%s)", printFields(t.Fields))
	case KindNested:
		return fmt.Sprintf("Nested(%s)", printFields(t.Fields))
	case KindVariant:
		parts := make([]string, len(t.Variants))
		for i, v := range t.Variants {
			parts[i] = Print(v)
		}
		return fmt.Sprintf("Variant(%s)", strings.Join(parts, ", "))
	default:
		return "Unknown"
	}
}

func printFields(fields []TupleElem) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		if f.Name == "" {
			parts[i] = Print(f.Type)
		} else {
			parts[i] = f.Name + " " + Print(f.Type)
		}
	}
	return strings.Join(parts, ", ")
}

func escapeEnumLabel(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}

// DecimalIntWidth returns the bit width of the signed integer backing a
// Decimal(P,S) value for the smallest width holding P decimal digits.
func DecimalIntWidth(precision int) int {
	switch {
	case precision <= 9:
		return 32
	case precision <= 18:
		return 64
	case precision <= 38:
		return 128
	default:
		return 256
	}
}
