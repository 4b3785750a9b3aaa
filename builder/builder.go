// Package builder contains the per-type columnar builders. A builder tree is
// created from an Arrow field, driven through the record event protocol once
// per record, and finalized into an owning layout.Array.
package builder

import (
	"math"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/loicalleyne/quiver/errs"
	"github.com/loicalleyne/quiver/events"
	"github.com/loicalleyne/quiver/layout"
)

// Builder consumes record events and accumulates column buffers.
type Builder interface {
	events.Receiver
	// Len is the number of rows appended so far.
	Len() int
	// ToArray consumes the accumulated buffers into an owning array.
	ToArray() (layout.Array, error)
}

// New constructs the builder tree for a field. The path locates the field in
// error messages; the root field uses "$".
func New(field arrow.Field, path string) (Builder, error) {
	strategy, err := layout.StrategyOf(field)
	if err != nil {
		return nil, errs.WithField(err, path)
	}
	u := events.Unsupported{Name: field.Type.Name(), Path: path}
	var validity *bitBuffer
	if field.Nullable {
		validity = &bitBuffer{}
	}

	switch dt := field.Type.(type) {
	case *arrow.NullType:
		return &nullBuilder{Unsupported: u, field: field}, nil
	case *arrow.BooleanType:
		return &boolBuilder{Unsupported: u, field: field, validity: validity}, nil
	case *arrow.Int8Type:
		return newIntBuilder[int8](u, field, validity, math.MinInt8, math.MaxInt8,
			func(a *layout.Array, v []int8) { a.I8 = v }), nil
	case *arrow.Int16Type:
		return newIntBuilder[int16](u, field, validity, math.MinInt16, math.MaxInt16,
			func(a *layout.Array, v []int16) { a.I16 = v }), nil
	case *arrow.Int32Type:
		return newIntBuilder[int32](u, field, validity, math.MinInt32, math.MaxInt32,
			func(a *layout.Array, v []int32) { a.I32 = v }), nil
	case *arrow.Int64Type:
		return newIntBuilder[int64](u, field, validity, math.MinInt64, math.MaxInt64,
			func(a *layout.Array, v []int64) { a.I64 = v }), nil
	case *arrow.Uint8Type:
		return newUintBuilder[uint8](u, field, validity, math.MaxUint8,
			func(a *layout.Array, v []uint8) { a.U8 = v }), nil
	case *arrow.Uint16Type:
		return newUintBuilder[uint16](u, field, validity, math.MaxUint16,
			func(a *layout.Array, v []uint16) { a.U16 = v }), nil
	case *arrow.Uint32Type:
		return newUintBuilder[uint32](u, field, validity, math.MaxUint32,
			func(a *layout.Array, v []uint32) { a.U32 = v }), nil
	case *arrow.Uint64Type:
		return newUintBuilder[uint64](u, field, validity, math.MaxUint64,
			func(a *layout.Array, v []uint64) { a.U64 = v }), nil
	case *arrow.Float16Type:
		return &float16Builder{Unsupported: u, field: field, validity: validity}, nil
	case *arrow.Float32Type:
		return newFloatBuilder[float32](u, field, validity, math.MaxFloat32,
			func(a *layout.Array, v []float32) { a.F32 = v }), nil
	case *arrow.Float64Type:
		return newFloatBuilder[float64](u, field, validity, math.MaxFloat64,
			func(a *layout.Array, v []float64) { a.F64 = v }), nil
	case *arrow.Decimal128Type:
		return newDecimal128Builder(u, field, validity, dt)
	case *arrow.StringType:
		return newUtf8Builder[int32](u, field, validity, true), nil
	case *arrow.LargeStringType:
		return newUtf8Builder[int64](u, field, validity, true), nil
	case *arrow.BinaryType:
		return newUtf8Builder[int32](u, field, validity, false), nil
	case *arrow.LargeBinaryType:
		return newUtf8Builder[int64](u, field, validity, false), nil
	case *arrow.FixedSizeBinaryType:
		return &fixedSizeBinaryBuilder{Unsupported: u, field: field, validity: validity, n: dt.ByteWidth}, nil
	case *arrow.Date32Type:
		return newDate32Builder(u, field, validity), nil
	case *arrow.Date64Type:
		return newDate64Builder(u, field, validity, strategy), nil
	case *arrow.Time32Type:
		return newTime32Builder(u, field, validity, dt), nil
	case *arrow.Time64Type:
		return newTime64Builder(u, field, validity, dt), nil
	case *arrow.TimestampType:
		return newTimestampBuilder(u, field, validity, dt), nil
	case *arrow.DurationType:
		return newDurationBuilder(u, field, validity), nil
	case *arrow.ListType:
		return newListBuilder[int32](u, field, validity, dt.ElemField())
	case *arrow.LargeListType:
		return newListBuilder[int64](u, field, validity, dt.ElemField())
	case *arrow.FixedSizeListType:
		return newFixedSizeListBuilder(u, field, validity, dt)
	case *arrow.StructType:
		return newStructBuilder(u, field, validity, dt.Fields())
	case *arrow.MapType:
		return newMapBuilder(u, field, validity, dt)
	case *arrow.DenseUnionType:
		return newDenseUnionBuilder(u, field, dt)
	case *arrow.DictionaryType:
		return newDictBuilder(u, field, validity, dt)
	}
	return nil, errs.WithField(
		errs.New(errs.Unsupported, "cannot build arrays of type %s", field.Type), path)
}
