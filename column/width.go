package column

import "github.com/cloudflare/ch-native/chtype"

// primitiveWidth returns the wire width in bytes of a fixed-width scalar
// type's Values slab element, or 0 if t is not a fixed-width primitive
// this function handles directly (composite, variable-width, and
// dedicated-codec types — UUID, IPv4, IPv6 — have their own codecs and
// are never passed here; see isFixedWidth).
func primitiveWidth(t chtype.Type) int {
	switch t.Kind {
	case chtype.KindUInt8, chtype.KindInt8:
		return 1
	case chtype.KindUInt16, chtype.KindInt16, chtype.KindDate:
		return 2
	case chtype.KindUInt32, chtype.KindInt32, chtype.KindFloat32, chtype.KindDate32, chtype.KindDateTime:
		return 4
	case chtype.KindUInt64, chtype.KindInt64, chtype.KindFloat64, chtype.KindDateTime64:
		return 8
	case chtype.KindUInt128, chtype.KindInt128:
		return 16
	case chtype.KindUInt256, chtype.KindInt256:
		return 32
	case chtype.KindBFloat16:
		return 2
	case chtype.KindDecimal32:
		return 4
	case chtype.KindDecimal64:
		return 8
	case chtype.KindDecimal128:
		return 16
	case chtype.KindDecimal256:
		return 32
	case chtype.KindEnum8:
		return 1
	case chtype.KindEnum16:
		return 2
	default:
		return 0
	}
}

// isFixedWidth reports whether t is handled by the zero-copy primitive
// slab path (readPrimitiveSlab/writePrimitiveSlab) rather than a dedicated codec.
func isFixedWidth(t chtype.Type) bool {
	switch t.Kind {
	case chtype.KindUInt8, chtype.KindUInt16, chtype.KindUInt32, chtype.KindUInt64,
		chtype.KindUInt128, chtype.KindUInt256,
		chtype.KindInt8, chtype.KindInt16, chtype.KindInt32, chtype.KindInt64,
		chtype.KindInt128, chtype.KindInt256,
		chtype.KindFloat32, chtype.KindFloat64, chtype.KindBFloat16,
		chtype.KindDecimal32, chtype.KindDecimal64, chtype.KindDecimal128, chtype.KindDecimal256,
		chtype.KindDate, chtype.KindDate32, chtype.KindDateTime, chtype.KindDateTime64,
		chtype.KindEnum8, chtype.KindEnum16:
		return true
	default:
		return false
	}
}
