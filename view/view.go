// Package view contains the per-type deserializers. A deserializer tree is
// constructed over a borrowed layout.ArrayView, validated against the
// supported buffer layouts, and then drives a record event receiver once per
// row.
package view

import (
	"strings"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/loicalleyne/quiver/errs"
	"github.com/loicalleyne/quiver/events"
	"github.com/loicalleyne/quiver/layout"
)

// Deserializer walks an array view and emits each row's events.
type Deserializer interface {
	// Next emits the events of the next row to r and advances.
	Next(r events.Receiver) error
	// Skip advances past the next row without emitting events.
	Skip() error
}

// New constructs the deserializer tree for a view. Layout invariants are
// checked here; construction fails on unsupported layouts.
func New(v layout.ArrayView, path string) (Deserializer, error) {
	strategy, err := layout.StrategyOf(v.Field)
	if err != nil {
		return nil, errs.WithField(err, path)
	}
	if err := validityCovers(v.Validity, v.Len, path); err != nil {
		return nil, err
	}

	switch dt := v.Field.Type.(type) {
	case *arrow.NullType:
		return &nullView{path: path, remaining: v.Len}, nil
	case *arrow.BooleanType:
		return newBoolView(v, path)
	case *arrow.Int8Type:
		return newPrimitiveView(v.I8, v, path, func(r events.Receiver, x int8) error { return r.Int8(x) }), nil
	case *arrow.Int16Type:
		return newPrimitiveView(v.I16, v, path, func(r events.Receiver, x int16) error { return r.Int16(x) }), nil
	case *arrow.Int32Type:
		return newPrimitiveView(v.I32, v, path, func(r events.Receiver, x int32) error { return r.Int32(x) }), nil
	case *arrow.Int64Type:
		return newPrimitiveView(v.I64, v, path, func(r events.Receiver, x int64) error { return r.Int64(x) }), nil
	case *arrow.Uint8Type:
		return newPrimitiveView(v.U8, v, path, func(r events.Receiver, x uint8) error { return r.Uint8(x) }), nil
	case *arrow.Uint16Type:
		return newPrimitiveView(v.U16, v, path, func(r events.Receiver, x uint16) error { return r.Uint16(x) }), nil
	case *arrow.Uint32Type:
		return newPrimitiveView(v.U32, v, path, func(r events.Receiver, x uint32) error { return r.Uint32(x) }), nil
	case *arrow.Uint64Type:
		return newPrimitiveView(v.U64, v, path, func(r events.Receiver, x uint64) error { return r.Uint64(x) }), nil
	case *arrow.Float16Type:
		return newFloat16View(v, path), nil
	case *arrow.Float32Type:
		return newPrimitiveView(v.F32, v, path, func(r events.Receiver, x float32) error { return r.Float32(x) }), nil
	case *arrow.Float64Type:
		return newPrimitiveView(v.F64, v, path, func(r events.Receiver, x float64) error { return r.Float64(x) }), nil
	case *arrow.Decimal128Type:
		return newDecimal128View(v, path, dt), nil
	case *arrow.StringType:
		return newUtf8View[int32](v, v.Offsets32, path, true)
	case *arrow.LargeStringType:
		return newUtf8View[int64](v, v.Offsets64, path, true)
	case *arrow.BinaryType:
		return newUtf8View[int32](v, v.Offsets32, path, false)
	case *arrow.LargeBinaryType:
		return newUtf8View[int64](v, v.Offsets64, path, false)
	case *arrow.FixedSizeBinaryType:
		return newFixedSizeBinaryView(v, path, dt.ByteWidth), nil
	case *arrow.Date32Type:
		return newPrimitiveView(v.I32, v, path, func(r events.Receiver, x int32) error { return r.Int32(x) }), nil
	case *arrow.Date64Type:
		return newDate64View(v, path, strategy), nil
	case *arrow.Time32Type:
		return newPrimitiveView(v.I32, v, path, func(r events.Receiver, x int32) error { return r.Int32(x) }), nil
	case *arrow.Time64Type:
		return newPrimitiveView(v.I64, v, path, func(r events.Receiver, x int64) error { return r.Int64(x) }), nil
	case *arrow.TimestampType:
		if tz := dt.TimeZone; tz != "" && strings.ToLower(tz) != "utc" {
			err := errs.New(errs.Invalid, "timezone %q is not supported for timestamp field", tz)
			return nil, errs.WithField(err, path)
		}
		return newPrimitiveView(v.I64, v, path, func(r events.Receiver, x int64) error { return r.Int64(x) }), nil
	case *arrow.DurationType:
		return newPrimitiveView(v.I64, v, path, func(r events.Receiver, x int64) error { return r.Int64(x) }), nil
	case *arrow.ListType:
		return newListView[int32](v, v.Offsets32, path)
	case *arrow.LargeListType:
		return newListView[int64](v, v.Offsets64, path)
	case *arrow.FixedSizeListType:
		return newFixedSizeListView(v, path, int(dt.Len()))
	case *arrow.StructType:
		return newStructView(v, path, strategy)
	case *arrow.MapType:
		return newMapView(v, path)
	case *arrow.DenseUnionType:
		return newDenseUnionView(v, path, dt)
	case *arrow.DictionaryType:
		return newDictView(v, path, dt)
	}
	return nil, errs.WithField(
		errs.New(errs.Unsupported, "cannot deserialize arrays of type %s", v.Field.Type), path)
}
