// Package proto implements the varint/primitive wire codec and the packet
// and structural types of ClickHouse's native protocol.
package proto

import (
	"encoding/binary"
	"io"
	"math"
)

// Writer encodes the primitive wire types onto an underlying io.Writer. A
// Writer is not safe for concurrent use; the session serializes access to
// it per the state machine's single-threaded-per-connection model.
type Writer struct {
	w       io.Writer
	scratch [binary.MaxVarintLen64]byte
}

// NewWriter wraps w. The Writer is unbuffered: each call writes straight to
// w. The chnative session passes its net.Conn here directly; no compress
// framing is layered in between.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Reset rebinds the Writer to a new underlying io.Writer, allowing reuse
// across connections without reallocating the scratch buffer.
func (w *Writer) Reset(dst io.Writer) {
	w.w = dst
}

func (w *Writer) Uvarint(v uint64) error {
	n := binary.PutUvarint(w.scratch[:], v)
	_, err := w.w.Write(w.scratch[:n])
	return err
}

func (w *Writer) Bool(v bool) error {
	if v {
		return w.UInt8(1)
	}
	return w.UInt8(0)
}

func (w *Writer) Int8(v int8) error  { return w.UInt8(uint8(v)) }
func (w *Writer) Int16(v int16) error { return w.UInt16(uint16(v)) }
func (w *Writer) Int32(v int32) error { return w.UInt32(uint32(v)) }
func (w *Writer) Int64(v int64) error { return w.UInt64(uint64(v)) }

func (w *Writer) UInt8(v uint8) error {
	w.scratch[0] = v
	_, err := w.w.Write(w.scratch[:1])
	return err
}

func (w *Writer) UInt16(v uint16) error {
	binary.LittleEndian.PutUint16(w.scratch[:2], v)
	_, err := w.w.Write(w.scratch[:2])
	return err
}

func (w *Writer) UInt32(v uint32) error {
	binary.LittleEndian.PutUint32(w.scratch[:4], v)
	_, err := w.w.Write(w.scratch[:4])
	return err
}

func (w *Writer) UInt64(v uint64) error {
	binary.LittleEndian.PutUint64(w.scratch[:8], v)
	_, err := w.w.Write(w.scratch[:8])
	return err
}

// UInt128 writes two little-endian 64-bit limbs, low limb first.
func (w *Writer) UInt128(lo, hi uint64) error {
	if err := w.UInt64(lo); err != nil {
		return err
	}
	return w.UInt64(hi)
}

// UInt256 writes four little-endian 64-bit limbs, lowest first.
func (w *Writer) UInt256(limbs [4]uint64) error {
	for _, l := range limbs {
		if err := w.UInt64(l); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) Float32(v float32) error { return w.UInt32(math.Float32bits(v)) }
func (w *Writer) Float64(v float64) error { return w.UInt64(math.Float64bits(v)) }

// String writes a length-prefixed string: varint(len) || bytes.
func (w *Writer) String(v string) error {
	if err := w.Uvarint(uint64(len(v))); err != nil {
		return err
	}
	_, err := io.WriteString(w.w, v)
	return err
}

// Bytes writes a length-prefixed byte slice.
func (w *Writer) Bytes(b []byte) error {
	if err := w.Uvarint(uint64(len(b))); err != nil {
		return err
	}
	_, err := w.w.Write(b)
	return err
}

// Raw writes b with no length prefix, for fixed-width column payloads. An
// empty b issues no Write on the underlying writer.
func (w *Writer) Raw(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	_, err := w.w.Write(b)
	return err
}
