package column

import (
	"encoding/binary"

	"github.com/cloudflare/ch-native/chtype"
	"github.com/cloudflare/ch-native/pool"
	"github.com/cloudflare/ch-native/proto"
	"github.com/pkg/errors"
)

// LowCardinality index-type flags, packed into the low byte of the
// per-block header UInt64 the way the native format's dictionary state
// reports the key width and per-block dictionary shape.
const (
	lcIndexUInt8  = 0
	lcIndexUInt16 = 1
	lcIndexUInt32 = 2
	lcIndexUInt64 = 3

	lcHasAdditionalKeysBit = 1 << 9
	lcNeedUpdateDictionary = 1 << 10
)

// ErrLowCardinalityInconsistent flags a key-width/dictionary-size
// mismatch the component design calls out as a reader error condition.
var ErrLowCardinalityInconsistent = errors.New("column: LowCardinality flags inconsistent with dictionary size")

func keyWidthForDictSize(n int) (width int, indexType uint64) {
	switch {
	case n <= 1<<8:
		return 1, lcIndexUInt8
	case n <= 1<<16:
		return 2, lcIndexUInt16
	case n <= 1<<32:
		return 4, lcIndexUInt32
	default:
		return 8, lcIndexUInt64
	}
}

// readLowCardinality decodes a per-block dictionary header, the
// dictionary itself, and the key index array. Index 0 of the dictionary
// is reserved for null when elem is itself Nullable(T) -- the inner
// column read here is the non-nullable T, per the component design's
// rule that nullability is encoded by the reserved dictionary slot
// rather than a separate null map.
func readLowCardinality(r *proto.Reader, elem chtype.Type, rows int, p *pool.Pool) (*Buffer, error) {
	flags, err := r.UInt64()
	if err != nil {
		return nil, err
	}
	indexType := flags & 0xff
	width, ok := map[uint64]int{lcIndexUInt8: 1, lcIndexUInt16: 2, lcIndexUInt32: 4, lcIndexUInt64: 8}[indexType]
	if !ok {
		return nil, ErrLowCardinalityInconsistent
	}

	dictSize, err := r.UInt64()
	if err != nil {
		return nil, err
	}

	innerElem := elem
	if elem.Kind == chtype.KindNullable {
		innerElem = *elem.Elem
	}
	dict, err := Read(r, innerElem, int(dictSize), p)
	if err != nil {
		return nil, err
	}

	keyRows, err := r.UInt64()
	if err != nil {
		return nil, err
	}
	if int(keyRows) != rows {
		return nil, ErrLowCardinalityInconsistent
	}
	wantWidth, _ := keyWidthForDictSize(int(dictSize))
	if width < wantWidth {
		return nil, ErrLowCardinalityInconsistent
	}

	keys := make([]byte, rows*width)
	if err := r.Raw(keys); err != nil {
		return nil, err
	}

	return &Buffer{Dict: dict, Keys: keys, KeyWidth: width, Rows: rows}, nil
}

func writeLowCardinality(w *proto.Writer, elem chtype.Type, buf *Buffer, p *pool.Pool) error {
	dictRows := buf.Dict.Rows
	width, indexType := keyWidthForDictSize(dictRows)
	keys := buf.Keys
	if buf.KeyWidth != width {
		// Re-encode the keys at the width the flags announce. Each key is
		// put as 8 little-endian bytes at its slot; the next key overwrites
		// the excess high bytes.
		wide := make([]byte, buf.Rows*8)
		for i := 0; i < buf.Rows; i++ {
			binary.LittleEndian.PutUint64(wide[i*width:], keyAt(buf, i))
		}
		keys = wide[:buf.Rows*width]
	}

	flags := indexType | lcHasAdditionalKeysBit
	if err := w.UInt64(flags); err != nil {
		return err
	}
	if err := w.UInt64(uint64(dictRows)); err != nil {
		return err
	}

	innerElem := elem
	if elem.Kind == chtype.KindNullable {
		innerElem = *elem.Elem
	}
	if err := Write(w, innerElem, buf.Dict, p); err != nil {
		return err
	}

	if err := w.UInt64(uint64(buf.Rows)); err != nil {
		return err
	}
	return w.Raw(keys)
}

// keyAt returns the dictionary index of row i, widened to uint64
// regardless of the on-wire key width.
func keyAt(buf *Buffer, i int) uint64 {
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
