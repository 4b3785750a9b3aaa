package quiver

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loicalleyne/quiver/layout"
	"github.com/loicalleyne/quiver/records"
)

func TestTracePrimitiveInt64(t *testing.T) {
	f, err := FieldFromSamples([]any{13, 21, 42})
	require.NoError(t, err)

	assert.Equal(t, "$", f.Name)
	assert.Equal(t, arrow.PrimitiveTypes.Int64, f.Type)
	assert.False(t, f.Nullable)

	doc, err := MarshalField(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"$","data_type":"I64"}`, string(doc))
}

func TestTraceNullableInt32(t *testing.T) {
	f, err := FieldFromSamples([]any{nil, int32(42)})
	require.NoError(t, err)

	assert.Equal(t, arrow.PrimitiveTypes.Int32, f.Type)
	assert.True(t, f.Nullable)
}

func TestTraceStructUnification(t *testing.T) {
	type rec struct {
		A uint32 `json:"a"`
		B bool   `json:"b"`
	}
	f, err := FieldFromSamples([]any{rec{A: 1, B: false}, rec{A: 1, B: true}})
	require.NoError(t, err)

	expected := arrow.StructOf(
		arrow.Field{Name: "a", Type: arrow.PrimitiveTypes.Uint32},
		arrow.Field{Name: "b", Type: arrow.FixedWidthTypes.Boolean},
	)
	assert.True(t, arrow.TypeEqual(expected, f.Type), "got %s", f.Type)
}

func TestTraceNewFieldsBecomeNullable(t *testing.T) {
	samples := []any{
		map[string]any{"a": int64(1)},
		map[string]any{"a": int64(2), "b": "x"},
	}
	f, err := FieldFromSamples(samples)
	require.NoError(t, err)

	st := f.Type.(*arrow.StructType)
	a, ok := st.FieldByName("a")
	require.True(t, ok)
	assert.False(t, a.Nullable)
	b, ok := st.FieldByName("b")
	require.True(t, ok)
	assert.True(t, b.Nullable, "fields first seen after the first sample must be nullable")
}

func TestTraceMissingFieldsBecomeNullable(t *testing.T) {
	samples := []any{
		map[string]any{"a": int64(1), "b": "x"},
		map[string]any{"a": int64(2)},
	}
	f, err := FieldFromSamples(samples)
	require.NoError(t, err)

	st := f.Type.(*arrow.StructType)
	b, ok := st.FieldByName("b")
	require.True(t, ok)
	assert.True(t, b.Nullable)
}

func TestTraceListOfFloat32(t *testing.T) {
	f, err := FieldFromSamples([]any{
		[]float32{1.0, 2.0},
		[]float32{3.0},
		[]float32{},
	})
	require.NoError(t, err)

	lt, ok := f.Type.(*arrow.LargeListType)
	require.True(t, ok, "lists trace to LargeList, got %s", f.Type)
	assert.Equal(t, arrow.PrimitiveTypes.Float32, lt.Elem())
}

func TestTraceTupleAsStruct(t *testing.T) {
	f, err := FieldFromSamples([]any{records.Tuple{2.0, "hello world"}})
	require.NoError(t, err)

	strategy, err := layout.StrategyOf(f)
	require.NoError(t, err)
	assert.Equal(t, layout.StrategyTupleAsStruct, strategy)

	st := f.Type.(*arrow.StructType)
	require.Equal(t, 2, st.NumFields())
	assert.Equal(t, "0", st.Field(0).Name)
	assert.Equal(t, arrow.PrimitiveTypes.Float64, st.Field(0).Type)
	assert.Equal(t, "1", st.Field(1).Name)
	assert.Equal(t, arrow.BinaryTypes.LargeString, st.Field(1).Type)
}

func TestTraceNumericWidening(t *testing.T) {
	f, err := FieldFromSamples([]any{int8(1), int32(2)})
	require.NoError(t, err)
	assert.Equal(t, arrow.PrimitiveTypes.Int32, f.Type)

	f, err = FieldFromSamples([]any{int8(1), float32(2.5)})
	require.NoError(t, err)
	assert.Equal(t, arrow.PrimitiveTypes.Float32, f.Type)

	f, err = FieldFromSamples([]any{int64(1), float32(2.5)})
	require.NoError(t, err)
	assert.Equal(t, arrow.PrimitiveTypes.Float64, f.Type)
}

func TestTraceSignednessConflict(t *testing.T) {
	_, err := FieldFromSamples([]any{int32(-1), uint32(1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incompatible observations")
	assert.Contains(t, err.Error(), "field=$")

	f, err := FieldFromSamples([]any{int32(-1), uint32(1)}, WithCoerceNumbers())
	require.NoError(t, err)
	assert.Equal(t, arrow.PrimitiveTypes.Int64, f.Type)
}

func TestTraceCrossFamilyConflictCarriesPath(t *testing.T) {
	samples := []any{
		map[string]any{"a": []any{int64(1)}},
		map[string]any{"a": map[string]any{"b": int64(1)}},
	}
	_, err := FieldFromSamples(samples)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field=$.a")
}

func TestTraceGuessDates(t *testing.T) {
	f, err := FieldFromSamples([]any{"2015-09-18T12:00:00"}, WithGuessDates())
	require.NoError(t, err)
	assert.Equal(t, arrow.FixedWidthTypes.Date64, f.Type)
	strategy, _ := layout.StrategyOf(f)
	assert.Equal(t, layout.StrategyNaiveStrAsDate64, strategy)

	f, err = FieldFromSamples([]any{"2015-09-18T12:00:00Z"}, WithGuessDates())
	require.NoError(t, err)
	strategy, _ = layout.StrategyOf(f)
	assert.Equal(t, layout.StrategyUtcStrAsDate64, strategy)

	// a conflicting mix degrades to plain strings
	f, err = FieldFromSamples([]any{"2015-09-18T12:00:00", "2015-09-18T12:00:00Z"}, WithGuessDates())
	require.NoError(t, err)
	assert.Equal(t, arrow.BinaryTypes.LargeString, f.Type)
	strategy, _ = layout.StrategyOf(f)
	assert.Equal(t, layout.StrategyNone, strategy)

	f, err = FieldFromSamples([]any{"not a date"}, WithGuessDates())
	require.NoError(t, err)
	assert.Equal(t, arrow.BinaryTypes.LargeString, f.Type)
}

func TestTraceStringDictionaryEncoding(t *testing.T) {
	f, err := FieldFromSamples([]any{"a", "b", "a"}, WithStringDictionaryEncoding())
	require.NoError(t, err)

	dt, ok := f.Type.(*arrow.DictionaryType)
	require.True(t, ok)
	assert.Equal(t, arrow.PrimitiveTypes.Uint32, dt.IndexType)
	assert.Equal(t, arrow.BinaryTypes.LargeString, dt.ValueType)
}

func TestTraceUnion(t *testing.T) {
	samples := []any{
		records.Variant{Idx: 0, Name: "Int", Value: int64(1)},
		records.Variant{Idx: 1, Name: "Str", Value: "x"},
	}
	f, err := FieldFromSamples(samples)
	require.NoError(t, err)

	ut, ok := f.Type.(*arrow.DenseUnionType)
	require.True(t, ok)
	require.Equal(t, 2, len(ut.Fields()))
	assert.Equal(t, "Int", ut.Fields()[0].Name)
	assert.Equal(t, "Str", ut.Fields()[1].Name)
}

func TestTraceUnionVariantNameConflict(t *testing.T) {
	samples := []any{
		records.Variant{Idx: 0, Name: "Int", Value: int64(1)},
		records.Variant{Idx: 0, Name: "Other", Value: int64(2)},
	}
	_, err := FieldFromSamples(samples)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "variant")
}

func TestTraceEnumsWithoutDataAsStrings(t *testing.T) {
	samples := []any{
		records.Variant{Idx: 0, Name: "Red"},
		records.Variant{Idx: 1, Name: "Green"},
	}
	f, err := FieldFromSamples(samples, WithEnumsWithoutDataAsStrings())
	require.NoError(t, err)
	assert.Equal(t, arrow.BinaryTypes.LargeString, f.Type)
}

func TestTraceMap(t *testing.T) {
	samples := []any{
		map[int64]string{1: "a"},
	}
	f, err := FieldFromSamples(samples)
	require.NoError(t, err)

	mt, ok := f.Type.(*arrow.MapType)
	require.True(t, ok)
	assert.Equal(t, arrow.PrimitiveTypes.Int64, mt.KeyType())
	assert.Equal(t, arrow.BinaryTypes.LargeString, mt.ItemType())
}

func TestTraceUnknownFieldFails(t *testing.T) {
	_, err := FieldFromSamples([]any{map[string]any{"a": nil}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not determine type of unpopulated field")
	assert.Contains(t, err.Error(), "field=$.a")

	f, err := FieldFromSamples([]any{map[string]any{"a": nil}}, WithAllowNullFields())
	require.NoError(t, err)
	st := f.Type.(*arrow.StructType)
	assert.Equal(t, arrow.NULL, st.Field(0).Type.ID())
}

func TestTraceNonSequenceFails(t *testing.T) {
	_, err := FieldFromSamples(map[string]any{"a": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wrapping the argument in a slice")
}

func TestTraceOverwrite(t *testing.T) {
	samples := []any{map[string]any{"a": int64(1), "b": "x"}}
	f, err := FieldFromSamples(samples,
		WithOverwrite("$.a", `{"name":"a","data_type":"U16"}`))
	require.NoError(t, err)

	st := f.Type.(*arrow.StructType)
	a, ok := st.FieldByName("a")
	require.True(t, ok)
	assert.Equal(t, arrow.PrimitiveTypes.Uint16, a.Type)
}

func TestSchemaFromSamples(t *testing.T) {
	samples := []any{
		map[string]any{"a": int64(1), "b": "x"},
	}
	schema, err := SchemaFromSamples(samples)
	require.NoError(t, err)
	require.Equal(t, 2, schema.NumFields())

	_, err = SchemaFromSamples([]any{int64(1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must trace to a struct")
}
