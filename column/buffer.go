// Package column implements the per-type column codec: readers and
// writers that serialize and deserialize ClickHouse column payloads
// against the framed wire stream, independent of any particular target
// representation (the arrow package maps Buffer to/from Arrow arrays).
package column

import (
	"github.com/cloudflare/ch-native/chtype"
)

// Buffer is the generic (values, validity?, offsets?) triple the data
// model describes, specialized just enough per type to avoid boxing
// every row as an interface{}.
type Buffer struct {
	// Values holds the raw little-endian slab for primitive/date/decimal
	// types: len(Values) == Rows * sizeof(T). Nil for variable-width and
	// composite types.
	Values []byte

	// Validity is the byte-per-row null map (0 = valid, 1 = null) read
	// directly off the wire for a Nullable column, length Rows. Nil for
	// non-nullable columns.
	Validity []byte

	// Offsets holds the cumulative row-count offsets for Array/Map
	// columns, length Rows, offsets[-1] implicitly 0.
	Offsets []uint64

	// Data holds per-row byte slices for String columns, length Rows.
	Data [][]byte

	// Child is the inner column storage for Array, Map (as
	// Array(Tuple(K,V))), and Nullable. LowCardinality uses Dict instead.
	Child *Buffer

	// Fields holds one Buffer per tuple/nested element, in declaration
	// order.
	Fields []*Buffer

	// Dict is the dictionary buffer for LowCardinality; Keys holds the
	// raw little-endian key-index slab (width chosen by dictionary size).
	Dict     *Buffer
	Keys     []byte
	KeyWidth int // 1, 2, 4, or 8 bytes per index

	// Discriminators holds the per-row variant tag for Variant/Dynamic
	// columns; Variants holds one Buffer per declared variant.
	Discriminators []byte
	Variants       []*Buffer
	// TypeNames is the Dynamic type-name table, index-aligned with
	// Variants.
	TypeNames []string

	Rows int
}

// ErrSchema is returned by the codec for conditions the caller's schema
// (not the wire data) got wrong — unsupported types, mismatched shapes.
type ErrSchema struct {
	Type    chtype.Type
	Message string
}

func (e *ErrSchema) Error() string {
	return "column: " + e.Message + ": " + chtype.Print(e.Type)
}
