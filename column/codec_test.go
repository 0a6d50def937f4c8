package column

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/cloudflare/ch-native/chtype"
	"github.com/cloudflare/ch-native/pool"
	"github.com/cloudflare/ch-native/proto"
	"github.com/stretchr/testify/require"
)

func roundTripColumn(t *testing.T, typ chtype.Type, buf *Buffer) *Buffer {
	t.Helper()
	p := pool.NewDefault()

	var out bytes.Buffer
	w := proto.NewWriter(&out)
	require.NoError(t, Write(w, typ, buf, p))

	r := proto.NewReader(&out)
	got, err := Read(r, typ, buf.Rows, p)
	require.NoError(t, err)
	return got
}

func TestArrayNullableUInt32RoundTrip(t *testing.T) {
	typ := chtype.Array(chtype.Nullable(chtype.UInt32))

	// two rows: [10, null] and [null, 20, 30]
	offsets := []uint64{2, 5}
	validity := []byte{0, 1, 1, 0, 0}
	values := make([]byte, 5*4)
	values[0], values[4] = 10, 0
	values[12] = 20
	values[16] = 30

	inner := &Buffer{Validity: validity, Child: &Buffer{Values: values, Rows: 5}, Rows: 5}
	buf := &Buffer{Offsets: offsets, Child: inner, Rows: 2}

	got := roundTripColumn(t, typ, buf)
	require.Equal(t, offsets, got.Offsets)
	require.Equal(t, validity, got.Child.Validity)
	require.Equal(t, values, got.Child.Child.Values)
}

func TestMapStringUInt64RoundTrip(t *testing.T) {
	typ := chtype.Map(chtype.String, chtype.UInt64)

	keyBuf := &Buffer{Data: [][]byte{[]byte("a"), []byte("b")}, Rows: 2}
	valValues := make([]byte, 16)
	valValues[0] = 1
	valValues[8] = 2
	valBuf := &Buffer{Values: valValues, Rows: 2}
	tupleBuf := &Buffer{Fields: []*Buffer{keyBuf, valBuf}, Rows: 2}
	buf := &Buffer{Offsets: []uint64{2}, Child: tupleBuf, Rows: 1}

	got := roundTripColumn(t, typ, buf)
	require.Equal(t, [][]byte{[]byte("a"), []byte("b")}, got.Child.Fields[0].Data)
	require.Equal(t, valValues, got.Child.Fields[1].Values)
}

func TestLowCardinalityNullableStringRoundTrip(t *testing.T) {
	typ := chtype.LowCardinality(chtype.Nullable(chtype.String))

	dict := &Buffer{Data: [][]byte{[]byte(""), []byte("x"), []byte("y")}, Rows: 3}
	keys := []byte{0, 1, 2, 1}
	buf := &Buffer{Dict: dict, Keys: keys, KeyWidth: 1, Rows: 4}

	got := roundTripColumn(t, typ, buf)
	require.Equal(t, keys, got.Keys)
	require.Equal(t, 1, got.KeyWidth)
	require.Equal(t, dict.Data, got.Dict.Data)
}

func TestTupleRoundTrip(t *testing.T) {
	typ := chtype.Tuple(
		chtype.TupleElem{Name: "id", Type: chtype.UInt32},
		chtype.TupleElem{Name: "name", Type: chtype.String},
	)

	idValues := make([]byte, 8)
	idValues[0], idValues[4] = 7, 8
	buf := &Buffer{
		Fields: []*Buffer{
			{Values: idValues, Rows: 2},
			{Data: [][]byte{[]byte("foo"), []byte("bar")}, Rows: 2},
		},
		Rows: 2,
	}

	got := roundTripColumn(t, typ, buf)
	require.Equal(t, idValues, got.Fields[0].Values)
	require.Equal(t, [][]byte{[]byte("foo"), []byte("bar")}, got.Fields[1].Data)
}

func TestVariantRoundTrip(t *testing.T) {
	typ := chtype.Type{Kind: chtype.KindVariant, Variants: []chtype.Type{chtype.UInt32, chtype.String}}

	intValues := make([]byte, 8) // 2 rows * 4 bytes
	intValues[0] = 5
	buf := &Buffer{
		Discriminators: []byte{0, 1},
		Variants: []*Buffer{
			{Values: intValues, Rows: 2},
			{Data: [][]byte{nil, []byte("hi")}, Rows: 2},
		},
		Rows: 2,
	}

	got := roundTripColumn(t, typ, buf)
	require.Equal(t, buf.Discriminators, got.Discriminators)
	require.Equal(t, intValues, got.Variants[0].Values)
	require.Equal(t, [][]byte{nil, []byte("hi")}, got.Variants[1].Data)
}

func TestEnum8RoundTripValidates(t *testing.T) {
	typ := chtype.Enum(chtype.KindEnum8, []chtype.EnumValue{{Name: "a", Value: 1}, {Name: "b", Value: 2}})
	buf := &Buffer{Values: []byte{1, 2, 1}, Rows: 3}

	got := roundTripColumn(t, typ, buf)
	require.Equal(t, buf.Values, got.Values)
}

func TestUUIDRoundTripPreservesWireOrdering(t *testing.T) {
	wire, err := hex.DecodeString("d4419be200840e5500004455664416a7")
	require.NoError(t, err)

	buf := &Buffer{Values: wire, Rows: 1}
	got := roundTripColumn(t, chtype.UUID, buf)
	require.Equal(t, wire, got.Values)
}

func TestIPv4RoundTripConvertsByteOrder(t *testing.T) {
	// 192.168.1.1 big-endian, as Arrow/network convention expects.
	bigEndian := []byte{192, 168, 1, 1}
	buf := &Buffer{Values: bigEndian, Rows: 1}

	got := roundTripColumn(t, chtype.IPv4, buf)
	require.Equal(t, bigEndian, got.Values)
}

func TestIPv6RoundTripIsByteIdentical(t *testing.T) {
	addr := make([]byte, 16)
	for i := range addr {
		addr[i] = byte(i)
	}
	buf := &Buffer{Values: addr, Rows: 1}

	got := roundTripColumn(t, chtype.IPv6, buf)
	require.Equal(t, addr, got.Values)
}

func TestEnum8UnknownValueRejected(t *testing.T) {
	typ := chtype.Enum(chtype.KindEnum8, []chtype.EnumValue{{Name: "a", Value: 1}})
	p := pool.NewDefault()

	var out bytes.Buffer
	w := proto.NewWriter(&out)
	require.NoError(t, writePrimitiveSlab(w, []byte{9}))

	r := proto.NewReader(&out)
	_, err := Read(r, typ, 1, p)
	require.Error(t, err)
}
