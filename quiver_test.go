package quiver

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loicalleyne/quiver/layout"
	"github.com/loicalleyne/quiver/records"
)

func TestToArraysOffsets(t *testing.T) {
	f, err := FieldFromSamples([]any{
		[]float32{1.0, 2.0},
		[]float32{3.0},
		[]float32{},
	})
	require.NoError(t, err)

	arr, err := ToArray(f, []any{[]float32{1.0, 2.0}, []float32{3.0}, []float32{}})
	require.NoError(t, err)

	assert.Equal(t, 3, arr.Len)
	assert.Equal(t, []int64{0, 2, 3, 3}, arr.Offsets64)
	require.Len(t, arr.Children, 1)
	assert.Equal(t, []float32{1.0, 2.0, 3.0}, arr.Children[0].F32)
}

func TestRoundTripScalars(t *testing.T) {
	recs := []any{
		map[string]any{"a": int64(1), "b": "x", "c": true},
		map[string]any{"a": int64(2), "b": "y", "c": false},
	}
	schema, err := SchemaFromSamples(recs)
	require.NoError(t, err)

	arrays, err := ToArrays(schema, recs)
	require.NoError(t, err)

	views := make([]layout.ArrayView, len(arrays))
	for i := range arrays {
		views[i] = arrays[i].View()
	}
	back, err := FromArrays(schema, views)
	require.NoError(t, err)
	assert.Equal(t, recs, back)
}

func TestRoundTripNullable(t *testing.T) {
	recs := []any{
		map[string]any{"a": nil},
		map[string]any{"a": int64(42)},
	}
	schema, err := SchemaFromSamples(recs)
	require.NoError(t, err)

	arrays, err := ToArrays(schema, recs)
	require.NoError(t, err)
	require.Len(t, arrays, 1)
	assert.NotNil(t, arrays[0].Validity)
	assert.True(t, arrays[0].IsNull(0))
	assert.False(t, arrays[0].IsNull(1))

	back, err := FromArrays(schema, []layout.ArrayView{arrays[0].View()})
	require.NoError(t, err)
	assert.Equal(t, recs, back)
}

func TestRoundTripNested(t *testing.T) {
	recs := []any{
		map[string]any{
			"name": "alice",
			"tags": []any{"x", "y"},
			"pos":  map[string]any{"lat": 1.5, "lon": 2.5},
		},
		map[string]any{
			"name": "bob",
			"tags": []any{},
			"pos":  map[string]any{"lat": 3.5, "lon": 4.5},
		},
	}
	schema, err := SchemaFromSamples(recs)
	require.NoError(t, err)

	arrays, err := ToArrays(schema, recs)
	require.NoError(t, err)

	views := make([]layout.ArrayView, len(arrays))
	for i := range arrays {
		views[i] = arrays[i].View()
	}
	back, err := FromArrays(schema, views)
	require.NoError(t, err)
	assert.Equal(t, recs, back)
}

func TestRoundTripTuple(t *testing.T) {
	recs := []any{
		map[string]any{"t": records.Tuple{2.0, "hello world"}},
	}
	schema, err := SchemaFromSamples(recs)
	require.NoError(t, err)

	arrays, err := ToArrays(schema, recs)
	require.NoError(t, err)

	back, err := FromArrays(schema, []layout.ArrayView{arrays[0].View()})
	require.NoError(t, err)
	assert.Equal(t, recs, back)
}

func TestRoundTripUnion(t *testing.T) {
	recs := []any{
		map[string]any{"v": records.Variant{Idx: 0, Name: "Int", Value: int64(7)}},
		map[string]any{"v": records.Variant{Idx: 1, Name: "Str", Value: "x"}},
		map[string]any{"v": records.Variant{Idx: 0, Name: "Int", Value: int64(9)}},
	}
	schema, err := SchemaFromSamples(recs)
	require.NoError(t, err)

	arrays, err := ToArrays(schema, recs)
	require.NoError(t, err)
	require.Len(t, arrays, 1)
	assert.Equal(t, []int8{0, 1, 0}, arrays[0].TypeIDs)
	assert.Equal(t, []int32{0, 0, 1}, arrays[0].Offsets32)

	back, err := FromArrays(schema, []layout.ArrayView{arrays[0].View()})
	require.NoError(t, err)
	assert.Equal(t, recs, back)
}

func TestRoundTripDictionary(t *testing.T) {
	recs := []any{
		map[string]any{"s": "red"},
		map[string]any{"s": "green"},
		map[string]any{"s": "red"},
	}
	schema, err := SchemaFromSamples(recs, WithStringDictionaryEncoding())
	require.NoError(t, err)

	arrays, err := ToArrays(schema, recs)
	require.NoError(t, err)
	require.Len(t, arrays, 1)
	// values deduplicated per batch, indices reference them
	require.Len(t, arrays[0].Children, 1)
	assert.Equal(t, 2, arrays[0].Children[0].Len)
	assert.Equal(t, []uint32{0, 1, 0}, arrays[0].U32)

	back, err := FromArrays(schema, []layout.ArrayView{arrays[0].View()})
	require.NoError(t, err)
	assert.Equal(t, recs, back)
}

func TestRoundTripMap(t *testing.T) {
	recs := []any{
		map[string]any{"m": map[int64]string{1: "a", 2: "b"}},
		map[string]any{"m": map[int64]string{}},
	}
	schema, err := SchemaFromSamples(recs)
	require.NoError(t, err)

	arrays, err := ToArrays(schema, recs)
	require.NoError(t, err)

	back, err := FromArrays(schema, []layout.ArrayView{arrays[0].View()})
	require.NoError(t, err)

	m0 := back[0].(map[string]any)["m"].(map[any]any)
	assert.Equal(t, "a", m0[int64(1)])
	assert.Equal(t, "b", m0[int64(2)])
	m1 := back[1].(map[string]any)["m"].(map[any]any)
	assert.Empty(t, m1)
}

func TestRoundTripDateStrategy(t *testing.T) {
	recs := []any{
		map[string]any{"d": "2015-09-18T12:00:00Z"},
	}
	schema, err := SchemaFromSamples(recs, WithGuessDates())
	require.NoError(t, err)

	arrays, err := ToArrays(schema, recs)
	require.NoError(t, err)
	require.Len(t, arrays, 1)
	// stored as milliseconds since epoch
	require.Len(t, arrays[0].I64, 1)
	assert.Equal(t, int64(1442577600000), arrays[0].I64[0])

	back, err := FromArrays(schema, []layout.ArrayView{arrays[0].View()})
	require.NoError(t, err)
	assert.Equal(t, recs, back)
}

func TestStructChildrenEquiLength(t *testing.T) {
	recs := []any{
		map[string]any{"a": int64(1)},
		map[string]any{"a": int64(2), "b": "x"},
	}
	schema, err := SchemaFromSamples(recs)
	require.NoError(t, err)

	arrays, err := ToArrays(schema, recs)
	require.NoError(t, err)
	for _, a := range arrays {
		assert.Equal(t, 2, a.Len)
	}
}

func TestFromArraysLengthMismatch(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "a", Type: arrow.PrimitiveTypes.Int64},
	}, nil)
	_, err := FromArrays(schema, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 1 arrays")
}
