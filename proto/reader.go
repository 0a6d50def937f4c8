package proto

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

// ErrVarintTooLong is returned when a varint exceeds the 10-byte limit for
// a 64-bit LEB128 value.
var ErrVarintTooLong = errors.New("proto: varint exceeds 10 bytes")

// Reader decodes the primitive wire types from an underlying io.Reader.
// Like Writer, a Reader is not safe for concurrent use.
type Reader struct {
	r       io.Reader
	scratch [binary.MaxVarintLen64]byte
	maxStr  int // 0 means unbounded
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Reset rebinds the Reader to a new underlying io.Reader.
func (r *Reader) Reset(src io.Reader) {
	r.r = src
}

// SetMaxStringLen caps the length accepted by String/Bytes; 0 disables the
// cap. Callers reading from an untrusted or misbehaving server should set
// this.
func (r *Reader) SetMaxStringLen(n int) {
	r.maxStr = n
}

func (r *Reader) readFull(n int) ([]byte, error) {
	buf := r.scratch[:n]
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (r *Reader) Uvarint() (uint64, error) {
	var x uint64
	var s uint
	for i := 0; i < binary.MaxVarintLen64; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if b < 0x80 {
			if i == binary.MaxVarintLen64-1 && b > 1 {
				return 0, ErrVarintTooLong
			}
			return x | uint64(b)<<s, nil
		}
		x |= uint64(b&0x7f) << s
		s += 7
	}
	return 0, ErrVarintTooLong
}

func (r *Reader) Bool() (bool, error) {
	v, err := r.UInt8()
	return v == 1, err
}

func (r *Reader) Int8() (int8, error) {
	v, err := r.UInt8()
	return int8(v), err
}

func (r *Reader) Int16() (int16, error) {
	v, err := r.UInt16()
	return int16(v), err
}

func (r *Reader) Int32() (int32, error) {
	v, err := r.UInt32()
	return int32(v), err
}

func (r *Reader) Int64() (int64, error) {
	v, err := r.UInt64()
	return int64(v), err
}

func (r *Reader) ReadByte() (byte, error) {
	buf, err := r.readFull(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (r *Reader) UInt8() (uint8, error) {
	b, err := r.ReadByte()
	return b, err
}

func (r *Reader) UInt16() (uint16, error) {
	buf, err := r.readFull(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf), nil
}

func (r *Reader) UInt32() (uint32, error) {
	buf, err := r.readFull(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

func (r *Reader) UInt64() (uint64, error) {
	buf, err := r.readFull(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf), nil
}

// UInt128 reads two little-endian 64-bit limbs, low limb first.
func (r *Reader) UInt128() (lo, hi uint64, err error) {
	if lo, err = r.UInt64(); err != nil {
		return 0, 0, err
	}
	hi, err = r.UInt64()
	return lo, hi, err
}

// UInt256 reads four little-endian 64-bit limbs, lowest first.
func (r *Reader) UInt256() (limbs [4]uint64, err error) {
	for i := range limbs {
		if limbs[i], err = r.UInt64(); err != nil {
			return limbs, err
		}
	}
	return limbs, nil
}

func (r *Reader) Float32() (float32, error) {
	v, err := r.UInt32()
	return math.Float32frombits(v), err
}

func (r *Reader) Float64() (float64, error) {
	v, err := r.UInt64()
	return math.Float64frombits(v), err
}

// String reads a length-prefixed string.
func (r *Reader) String() (string, error) {
	n, err := r.Uvarint()
	if err != nil {
		return "", err
	}
	if r.maxStr > 0 && int(n) > r.maxStr {
		return "", errors.Errorf("proto: string length %d exceeds max %d", n, r.maxStr)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// Bytes reads a length-prefixed byte slice.
func (r *Reader) Bytes() ([]byte, error) {
	n, err := r.Uvarint()
	if err != nil {
		return nil, err
	}
	if r.maxStr > 0 && int(n) > r.maxStr {
		return nil, errors.Errorf("proto: byte slice length %d exceeds max %d", n, r.maxStr)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Raw reads exactly len(b) bytes with no length prefix, for fixed-width
// column payloads.
func (r *Reader) Raw(b []byte) error {
	_, err := io.ReadFull(r.r, b)
	return err
}

// Underlying exposes the wrapped reader so the block/column codecs can
// read large slabs directly without going through the scratch buffer.
func (r *Reader) Underlying() io.Reader { return r.r }
