package builder

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loicalleyne/quiver/layout"
)

func TestBitBufferLayout(t *testing.T) {
	var b bitBuffer
	for _, v := range []bool{true, false, true, true} {
		b.push(v)
	}
	// LSB-first: bits 0,2,3 set
	assert.Equal(t, []byte{0b1101}, b.bytes())
	assert.Equal(t, 4, b.len)
}

func TestIntBuilderRange(t *testing.T) {
	b, err := New(arrow.Field{Name: "x", Type: arrow.PrimitiveTypes.Int8}, "$")
	require.NoError(t, err)

	require.NoError(t, b.Int64(127))
	err = b.Int64(128)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not representable")
	assert.Contains(t, err.Error(), "field=$")
}

func TestUintBuilderRejectsNegative(t *testing.T) {
	b, err := New(arrow.Field{Name: "x", Type: arrow.PrimitiveTypes.Uint32}, "$")
	require.NoError(t, err)

	err = b.Int64(-1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not representable")
}

func TestNonNullableRejectsNull(t *testing.T) {
	b, err := New(arrow.Field{Name: "x", Type: arrow.PrimitiveTypes.Int64}, "$")
	require.NoError(t, err)

	err = b.Null()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot push null for non-nullable array")
}

func TestNullablePushesValidity(t *testing.T) {
	b, err := New(arrow.Field{Name: "x", Type: arrow.PrimitiveTypes.Int64, Nullable: true}, "$")
	require.NoError(t, err)

	require.NoError(t, b.Null())
	require.NoError(t, b.Int64(7))
	arr, err := b.ToArray()
	require.NoError(t, err)

	assert.Equal(t, 2, arr.Len)
	assert.Equal(t, []int64{0, 7}, arr.I64)
	require.NotNil(t, arr.Validity)
	assert.True(t, arr.IsNull(0))
	assert.False(t, arr.IsNull(1))
}

func TestUtf8BuilderOffsets(t *testing.T) {
	b, err := New(arrow.Field{Name: "x", Type: arrow.BinaryTypes.LargeString, Nullable: true}, "$")
	require.NoError(t, err)

	require.NoError(t, b.Str("foo"))
	require.NoError(t, b.Null())
	require.NoError(t, b.Str("ba"))
	arr, err := b.ToArray()
	require.NoError(t, err)

	assert.Equal(t, []int64{0, 3, 3, 5}, arr.Offsets64)
	assert.Equal(t, []byte("fooba"), arr.Data)
	// null rows keep a zero-length run
	assert.Equal(t, arr.Offsets64[1], arr.Offsets64[2])
}

func TestFixedSizeBinaryLength(t *testing.T) {
	b, err := New(arrow.Field{Name: "x", Type: &arrow.FixedSizeBinaryType{ByteWidth: 4}}, "$")
	require.NoError(t, err)

	require.NoError(t, b.Bytes([]byte{1, 2, 3, 4}))
	err = b.Bytes([]byte{1, 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid length")
}

func TestFixedSizeListArity(t *testing.T) {
	dt := arrow.FixedSizeListOf(2, arrow.PrimitiveTypes.Int64)
	b, err := New(arrow.Field{Name: "x", Type: dt}, "$")
	require.NoError(t, err)

	require.NoError(t, b.SeqStart(2))
	for _, v := range []int64{1, 2} {
		er, err := b.Element()
		require.NoError(t, err)
		require.NoError(t, er.Int64(v))
	}
	require.NoError(t, b.SeqEnd())

	require.NoError(t, b.SeqStart(1))
	er, err := b.Element()
	require.NoError(t, err)
	require.NoError(t, er.Int64(3))
	err = b.SeqEnd()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid number of elements for FixedSizedList")
}

func TestStructBuilderDefaultsUnseenFields(t *testing.T) {
	dt := arrow.StructOf(
		arrow.Field{Name: "a", Type: arrow.PrimitiveTypes.Int64},
		arrow.Field{Name: "b", Type: arrow.BinaryTypes.LargeString, Nullable: true},
	)
	b, err := New(arrow.Field{Name: "x", Type: dt}, "$")
	require.NoError(t, err)

	require.NoError(t, b.StructStart())
	fr, err := b.Field("a")
	require.NoError(t, err)
	require.NoError(t, fr.Int64(1))
	require.NoError(t, b.StructEnd())

	arr, err := b.ToArray()
	require.NoError(t, err)
	require.Len(t, arr.Children, 2)
	assert.Equal(t, 1, arr.Children[0].Len)
	assert.Equal(t, 1, arr.Children[1].Len)
	assert.True(t, arr.Children[1].IsNull(0))
}

func TestStructBuilderUnknownField(t *testing.T) {
	dt := arrow.StructOf(arrow.Field{Name: "a", Type: arrow.PrimitiveTypes.Int64})
	b, err := New(arrow.Field{Name: "x", Type: dt}, "$")
	require.NoError(t, err)

	require.NoError(t, b.StructStart())
	_, err = b.Field("bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field")
}

func TestDenseUnionTypeIDsMustBeConsecutive(t *testing.T) {
	dt := arrow.DenseUnionOf(
		[]arrow.Field{{Name: "a", Type: arrow.PrimitiveTypes.Int64}},
		[]arrow.UnionTypeCode{5},
	)
	_, err := New(arrow.Field{Name: "x", Type: dt}, "$")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "consecutive")
}

func TestDenseUnionBuilder(t *testing.T) {
	dt := arrow.DenseUnionOf(
		[]arrow.Field{
			{Name: "i", Type: arrow.PrimitiveTypes.Int64},
			{Name: "s", Type: arrow.BinaryTypes.LargeString},
		},
		[]arrow.UnionTypeCode{0, 1},
	)
	b, err := New(arrow.Field{Name: "x", Type: dt}, "$")
	require.NoError(t, err)

	vr, err := b.Variant(0, "i")
	require.NoError(t, err)
	require.NoError(t, vr.Int64(1))
	vr, err = b.Variant(1, "s")
	require.NoError(t, err)
	require.NoError(t, vr.Str("x"))
	vr, err = b.Variant(0, "i")
	require.NoError(t, err)
	require.NoError(t, vr.Int64(2))

	arr, err := b.ToArray()
	require.NoError(t, err)
	assert.Equal(t, []int8{0, 1, 0}, arr.TypeIDs)
	assert.Equal(t, []int32{0, 0, 1}, arr.Offsets32)
	assert.Equal(t, []int64{1, 2}, arr.Children[0].I64)
}

func TestDictionaryBuilderDeduplicates(t *testing.T) {
	dt := &arrow.DictionaryType{
		IndexType: arrow.PrimitiveTypes.Uint32,
		ValueType: arrow.BinaryTypes.LargeString,
	}
	b, err := New(arrow.Field{Name: "x", Type: dt, Nullable: true}, "$")
	require.NoError(t, err)

	for _, s := range []string{"red", "green", "red"} {
		require.NoError(t, b.Str(s))
	}
	require.NoError(t, b.Null())

	arr, err := b.ToArray()
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 0, 0}, arr.U32)
	assert.True(t, arr.IsNull(3))
	require.Len(t, arr.Children, 1)
	assert.Equal(t, 2, arr.Children[0].Len)
}

func TestDate64BuilderStrategies(t *testing.T) {
	f := arrow.Field{
		Name:     "d",
		Type:     arrow.FixedWidthTypes.Date64,
		Metadata: layout.WithStrategy(layout.StrategyNaiveStrAsDate64, nil, nil),
	}
	b, err := New(f, "$")
	require.NoError(t, err)
	require.NoError(t, b.Str("2015-09-18T12:00:00"))
	arr, err := b.ToArray()
	require.NoError(t, err)
	assert.Equal(t, []int64{1442577600000}, arr.I64)

	// without a strategy, strings are rejected
	b, err = New(arrow.Field{Name: "d", Type: arrow.FixedWidthTypes.Date64}, "$")
	require.NoError(t, err)
	require.NoError(t, b.Int64(1000))
	err = b.Str("2015-09-18T12:00:00")
	require.Error(t, err)
}

func TestListBuilderNullRun(t *testing.T) {
	dt := arrow.LargeListOf(arrow.PrimitiveTypes.Int64)
	b, err := New(arrow.Field{Name: "x", Type: dt, Nullable: true}, "$")
	require.NoError(t, err)

	require.NoError(t, b.SeqStart(1))
	er, err := b.Element()
	require.NoError(t, err)
	require.NoError(t, er.Int64(1))
	require.NoError(t, b.SeqEnd())
	require.NoError(t, b.Null())

	arr, err := b.ToArray()
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1, 1}, arr.Offsets64)
	assert.True(t, arr.IsNull(1))
	// a null row covers a zero-length child segment
	assert.Equal(t, arr.Offsets64[1], arr.Offsets64[2])
}

func TestUnknownStrategyFailsAtConstruction(t *testing.T) {
	f := arrow.Field{
		Name:     "x",
		Type:     arrow.PrimitiveTypes.Int64,
		Metadata: arrow.NewMetadata([]string{layout.StrategyKey}, []string{"Bogus"}),
	}
	_, err := New(f, "$")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown strategy")
}
