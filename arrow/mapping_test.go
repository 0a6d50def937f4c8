package arrow

import (
	"testing"

	goarrow "github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudflare/ch-native/chtype"
)

func TestDataTypePrimitives(t *testing.T) {
	cases := []struct {
		t    chtype.Type
		want goarrow.DataType
	}{
		{chtype.UInt8, goarrow.PrimitiveTypes.Uint8},
		{chtype.UInt32, goarrow.PrimitiveTypes.Uint32},
		{chtype.Int64, goarrow.PrimitiveTypes.Int64},
		{chtype.Float64, goarrow.PrimitiveTypes.Float64},
		{chtype.String, goarrow.BinaryTypes.String},
		{chtype.Date, goarrow.FixedWidthTypes.Date32},
	}
	for _, c := range cases {
		dt, _, err := DataType(c.t)
		require.NoError(t, err)
		assert.Equal(t, c.want, dt)
	}
}

func TestDataTypeFixedSizeBinary(t *testing.T) {
	dt, _, err := DataType(chtype.UUID)
	require.NoError(t, err)
	fsb, ok := dt.(*goarrow.FixedSizeBinaryType)
	require.True(t, ok)
	assert.Equal(t, 16, fsb.ByteWidth)

	dt, _, err = DataType(chtype.FixedString(20))
	require.NoError(t, err)
	fsb, ok = dt.(*goarrow.FixedSizeBinaryType)
	require.True(t, ok)
	assert.Equal(t, 20, fsb.ByteWidth)
}

func TestDataTypeNullableUnwrapsInner(t *testing.T) {
	dt, _, err := DataType(chtype.Nullable(chtype.UInt32))
	require.NoError(t, err)
	assert.Equal(t, goarrow.PrimitiveTypes.Uint32, dt)
}

func TestDataTypeArray(t *testing.T) {
	dt, _, err := DataType(chtype.Array(chtype.String))
	require.NoError(t, err)
	lt, ok := dt.(*goarrow.ListType)
	require.True(t, ok)
	assert.Equal(t, goarrow.BinaryTypes.String, lt.Elem())
}

func TestDataTypeLowCardinalityIsDictionary(t *testing.T) {
	dt, _, err := DataType(chtype.LowCardinality(chtype.String))
	require.NoError(t, err)
	dict, ok := dt.(*goarrow.DictionaryType)
	require.True(t, ok)
	assert.Equal(t, goarrow.PrimitiveTypes.Uint32, dict.IndexType)
	assert.Equal(t, goarrow.BinaryTypes.String, dict.ValueType)
}

func TestDataTypeDecimal(t *testing.T) {
	dt, _, err := DataType(chtype.Decimal(chtype.KindDecimal128, 38, 9))
	require.NoError(t, err)
	dec, ok := dt.(*goarrow.Decimal128Type)
	require.True(t, ok)
	assert.EqualValues(t, 38, dec.Precision)
	assert.EqualValues(t, 9, dec.Scale)
}

func TestDataTypeEnumCarriesMetadata(t *testing.T) {
	t8 := chtype.Enum(chtype.KindEnum8, []chtype.EnumValue{{Name: "a", Value: 1}, {Name: "b", Value: 2}})
	_, meta, err := DataType(t8)
	require.NoError(t, err)
	idx := meta.FindKey("clickhouse.enum.a")
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, "1", meta.Values()[idx])
}

func TestDataTypeTupleFieldNames(t *testing.T) {
	tt := chtype.Tuple(
		chtype.TupleElem{Name: "x", Type: chtype.UInt32},
		chtype.TupleElem{Type: chtype.String},
	)
	dt, _, err := DataType(tt)
	require.NoError(t, err)
	st, ok := dt.(*goarrow.StructType)
	require.True(t, ok)
	assert.Equal(t, "x", st.Field(0).Name)
	assert.Equal(t, "b", st.Field(1).Name)
}

func TestDataTypeUnsupportedKindErrors(t *testing.T) {
	_, _, err := DataType(chtype.Type{Kind: chtype.KindBFloat16})
	require.Error(t, err)
}
