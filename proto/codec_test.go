package proto

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUvarintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 255, 300, math.MaxUint32, math.MaxUint64}
	for _, v := range cases {
		var buf bytes.Buffer
		w := NewWriter(&buf)
		require.NoError(t, w.Uvarint(v))
		assert.LessOrEqual(t, buf.Len(), 10)

		r := NewReader(&buf)
		got, err := r.Uvarint()
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestVarintTooLong(t *testing.T) {
	// 9 continuation bytes followed by a 10th byte with more than bit 0
	// set is not a valid 64-bit varint encoding.
	raw := bytes.Repeat([]byte{0x80}, 9)
	raw = append(raw, 0x02)
	r := NewReader(bytes.NewReader(raw))
	_, err := r.Uvarint()
	assert.ErrorIs(t, err, ErrVarintTooLong)
}

func TestPrimitiveRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Int8(-5))
	require.NoError(t, w.UInt16(1000))
	require.NoError(t, w.Int32(-70000))
	require.NoError(t, w.UInt64(1 << 40))
	require.NoError(t, w.Float32(3.5))
	require.NoError(t, w.Float64(2.718281828))
	require.NoError(t, w.String("hello"))
	require.NoError(t, w.UInt128(0x0102030405060708, 0x1112131415161718))

	r := NewReader(&buf)
	i8, err := r.Int8()
	require.NoError(t, err)
	assert.Equal(t, int8(-5), i8)

	u16, err := r.UInt16()
	require.NoError(t, err)
	assert.Equal(t, uint16(1000), u16)

	i32, err := r.Int32()
	require.NoError(t, err)
	assert.Equal(t, int32(-70000), i32)

	u64, err := r.UInt64()
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<40), u64)

	f32, err := r.Float32()
	require.NoError(t, err)
	assert.Equal(t, float32(3.5), f32)

	f64, err := r.Float64()
	require.NoError(t, err)
	assert.Equal(t, 2.718281828, f64)

	s, err := r.String()
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	lo, hi, err := r.UInt128()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0102030405060708), lo)
	assert.Equal(t, uint64(0x1112131415161718), hi)
}

func TestStringMaxLenEnforced(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.String("way too long for the cap"))

	r := NewReader(&buf)
	r.SetMaxStringLen(4)
	_, err := r.String()
	assert.Error(t, err)
}

func TestBlockInfoRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	info := BlockInfo{IsOverflows: true, BucketNum: 7}
	require.NoError(t, info.Write(w))

	r := NewReader(&buf)
	var got BlockInfo
	require.NoError(t, got.Read(r))
	assert.Equal(t, info, got)
}
