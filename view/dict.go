package view

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/loicalleyne/quiver/errs"
	"github.com/loicalleyne/quiver/events"
	"github.com/loicalleyne/quiver/layout"
)

// dictView walks Dictionary arrays. The supported combinations are
// enumerated: integer index types crossed with Utf8/LargeUtf8 values; other
// pairs are rejected at construction. Values are materialized once so row
// lookup stays a plain index.
type dictView struct {
	path     string
	index    func(i int) int64
	validity *layout.Bitmap
	values   []string
	len      int
	next     int
}

func newDictView(v layout.ArrayView, path string, dt *arrow.DictionaryType) (Deserializer, error) {
	var index func(i int) int64
	switch dt.IndexType.ID() {
	case arrow.INT8:
		index = func(i int) int64 { return int64(v.I8[i]) }
	case arrow.INT16:
		index = func(i int) int64 { return int64(v.I16[i]) }
	case arrow.INT32:
		index = func(i int) int64 { return int64(v.I32[i]) }
	case arrow.INT64:
		index = func(i int) int64 { return v.I64[i] }
	case arrow.UINT8:
		index = func(i int) int64 { return int64(v.U8[i]) }
	case arrow.UINT16:
		index = func(i int) int64 { return int64(v.U16[i]) }
	case arrow.UINT32:
		index = func(i int) int64 { return int64(v.U32[i]) }
	case arrow.UINT64:
		index = func(i int) int64 { return int64(v.U64[i]) }
	default:
		return nil, errs.WithField(errs.New(errs.Unsupported,
			"dictionary index type %s is not supported", dt.IndexType), path)
	}
	if len(v.Children) != 1 {
		return nil, errs.WithField(errs.New(errs.Shape,
			"dictionary arrays need exactly one child, got %d", len(v.Children)), path)
	}
	vals := v.Children[0]
	var values []string
	switch dt.ValueType.ID() {
	case arrow.STRING:
		if len(vals.Offsets32) != vals.Len+1 {
			return nil, errs.WithField(errs.New(errs.Shape,
				"expected %d offsets, got %d", vals.Len+1, len(vals.Offsets32)), path)
		}
		for i := 0; i < vals.Len; i++ {
			values = append(values, string(vals.Data[vals.Offsets32[i]:vals.Offsets32[i+1]]))
		}
	case arrow.LARGE_STRING:
		if len(vals.Offsets64) != vals.Len+1 {
			return nil, errs.WithField(errs.New(errs.Shape,
				"expected %d offsets, got %d", vals.Len+1, len(vals.Offsets64)), path)
		}
		for i := 0; i < vals.Len; i++ {
			values = append(values, string(vals.Data[vals.Offsets64[i]:vals.Offsets64[i+1]]))
		}
	default:
		return nil, errs.WithField(errs.New(errs.Unsupported,
			"dictionary value type %s is not supported", dt.ValueType), path)
	}
	return &dictView{path: path, index: index, validity: v.Validity, values: values, len: v.Len}, nil
}

func (d *dictView) Next(r events.Receiver) error {
	if d.next >= d.len {
		return errs.WithField(errs.New(errs.Exhausted, "Exhausted deserializer"), d.path)
	}
	i := d.next
	d.next++
	if d.validity != nil && !d.validity.Bit(i) {
		return r.Null()
	}
	idx := d.index(i)
	if idx < 0 || idx >= int64(len(d.values)) {
		return errs.WithField(errs.New(errs.OutOfRange,
			"dictionary index %d out of range, have %d values", idx, len(d.values)), d.path)
	}
	return r.Str(d.values[idx])
}

func (d *dictView) Skip() error {
	if d.next >= d.len {
		return errs.WithField(errs.New(errs.Exhausted, "Exhausted deserializer"), d.path)
	}
	d.next++
	return nil
}
