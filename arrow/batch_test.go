package arrow

import (
	"encoding/binary"
	"testing"

	goarrow "github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudflare/ch-native/block"
	"github.com/cloudflare/ch-native/chtype"
	"github.com/cloudflare/ch-native/column"
	"github.com/cloudflare/ch-native/proto"
)

func uint32Slab(values ...uint32) []byte {
	out := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return out
}

func TestFromBlockPrimitiveColumns(t *testing.T) {
	b := &block.Block{
		Info:  proto.BlockInfo{BucketNum: -1},
		Names: []string{"id", "name"},
		Types: []chtype.Type{chtype.UInt32, chtype.String},
		Columns: []*column.Buffer{
			{Values: uint32Slab(1, 2, 3), Rows: 3},
			{Data: [][]byte{[]byte("a"), []byte("b"), []byte("c")}, Rows: 3},
		},
		Rows: 3,
	}

	rec, err := FromBlock(b, memory.NewGoAllocator())
	require.NoError(t, err)
	defer rec.Release()

	assert.EqualValues(t, 3, rec.NumRows())
	assert.EqualValues(t, 2, rec.NumCols())
	idCol := rec.Column(0).(*array.Uint32)
	assert.Equal(t, []uint32{1, 2, 3}, idCol.Uint32Values())
	nameCol := rec.Column(1).(*array.String)
	assert.Equal(t, "b", nameCol.Value(1))
}

func TestFromBlockNullableColumn(t *testing.T) {
	b := &block.Block{
		Info:  proto.BlockInfo{BucketNum: -1},
		Names: []string{"n"},
		Types: []chtype.Type{chtype.Nullable(chtype.UInt32)},
		Columns: []*column.Buffer{
			{
				Validity: []byte{0, 1, 0},
				Child:    &column.Buffer{Values: uint32Slab(10, 0, 30), Rows: 3},
				Rows:     3,
			},
		},
		Rows: 3,
	}

	rec, err := FromBlock(b, memory.NewGoAllocator())
	require.NoError(t, err)
	defer rec.Release()

	col := rec.Column(0).(*array.Uint32)
	assert.False(t, col.IsNull(0))
	assert.True(t, col.IsNull(1))
	assert.Equal(t, uint32(10), col.Value(0))
	assert.Equal(t, uint32(30), col.Value(2))
}

func TestToBlockRoundTripsFromBlock(t *testing.T) {
	names := []string{"id"}
	types := []chtype.Type{chtype.UInt32}
	orig := &block.Block{
		Info:    proto.BlockInfo{BucketNum: -1},
		Names:   names,
		Types:   types,
		Columns: []*column.Buffer{{Values: uint32Slab(7, 8, 9), Rows: 3}},
		Rows:    3,
	}

	rec, err := FromBlock(orig, memory.NewGoAllocator())
	require.NoError(t, err)
	defer rec.Release()

	back, err := ToBlock(rec, names, types)
	require.NoError(t, err)
	assert.Equal(t, orig.Columns[0].Values, back.Columns[0].Values)
	assert.Equal(t, 3, back.Rows)
}

func TestToBlockRejectsArrowTypeMismatchWithoutPanicking(t *testing.T) {
	mem := memory.NewGoAllocator()
	schema := goarrow.NewSchema([]goarrow.Field{{Name: "id", Type: goarrow.BinaryTypes.String}}, nil)
	b := array.NewStringBuilder(mem)
	b.AppendValues([]string{"not", "a", "number"}, nil)
	arr := b.NewArray()
	defer arr.Release()
	rec := array.NewRecord(schema, []goarrow.Array{arr}, 3)
	defer rec.Release()

	_, err := ToBlock(rec, []string{"id"}, []chtype.Type{chtype.UInt32})
	require.Error(t, err)
	var schemaErr *column.ErrSchema
	require.ErrorAs(t, err, &schemaErr)
}

func TestToBlockRejectsColumnCountMismatch(t *testing.T) {
	b := &block.Block{
		Info:    proto.BlockInfo{BucketNum: -1},
		Names:   []string{"id"},
		Types:   []chtype.Type{chtype.UInt32},
		Columns: []*column.Buffer{{Values: uint32Slab(1), Rows: 1}},
		Rows:    1,
	}
	rec, err := FromBlock(b, memory.NewGoAllocator())
	require.NoError(t, err)
	defer rec.Release()

	_, err = ToBlock(rec, []string{"id", "extra"}, []chtype.Type{chtype.UInt32, chtype.UInt32})
	require.Error(t, err)
}

func TestFromBlockIPv4ColumnUsesFixedSizeBinary(t *testing.T) {
	b := &block.Block{
		Info:    proto.BlockInfo{BucketNum: -1},
		Names:   []string{"addr"},
		Types:   []chtype.Type{chtype.IPv4},
		Columns: []*column.Buffer{{Values: []byte{192, 168, 1, 1}, Rows: 1}},
		Rows:    1,
	}

	rec, err := FromBlock(b, memory.NewGoAllocator())
	require.NoError(t, err)
	defer rec.Release()

	col := rec.Column(0).(*array.FixedSizeBinary)
	assert.Equal(t, []byte{192, 168, 1, 1}, col.Value(0))
}

func TestFromBlockArrayColumn(t *testing.T) {
	b := &block.Block{
		Info:  proto.BlockInfo{BucketNum: -1},
		Names: []string{"xs"},
		Types: []chtype.Type{chtype.Array(chtype.UInt32)},
		Columns: []*column.Buffer{
			{
				Offsets: []uint64{2, 3},
				Child:   &column.Buffer{Values: uint32Slab(1, 2, 3), Rows: 3},
				Rows:    2,
			},
		},
		Rows: 2,
	}

	rec, err := FromBlock(b, memory.NewGoAllocator())
	require.NoError(t, err)
	defer rec.Release()

	la := rec.Column(0).(*array.List)
	assert.EqualValues(t, 2, la.Len())
	start, end := la.ValueOffsets(0)
	assert.Equal(t, int64(0), start)
	assert.Equal(t, int64(2), end)
}
