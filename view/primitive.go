package view

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/apache/arrow-go/v18/arrow/float16"

	"github.com/loicalleyne/quiver/errs"
	"github.com/loicalleyne/quiver/events"
	"github.com/loicalleyne/quiver/layout"
)

// nullView emits Null for each of its rows.
type nullView struct {
	path      string
	remaining int
}

func (d *nullView) Next(r events.Receiver) error {
	if err := d.Skip(); err != nil {
		return err
	}
	return r.Null()
}

func (d *nullView) Skip() error {
	if d.remaining == 0 {
		return errs.WithField(errs.New(errs.Exhausted, "Exhausted deserializer"), d.path)
	}
	d.remaining--
	return nil
}

// primitiveView emits the event most natural for the underlying buffer.
type primitiveView[T any] struct {
	it   bufferIterator[T]
	emit func(events.Receiver, T) error
}

func newPrimitiveView[T any](buf []T, v layout.ArrayView, path string, emit func(events.Receiver, T) error) *primitiveView[T] {
	return &primitiveView[T]{
		it:   bufferIterator[T]{buf: buf, validity: v.Validity, path: path},
		emit: emit,
	}
}

func (d *primitiveView[T]) Next(r events.Receiver) error {
	v, ok, err := d.it.nextValue()
	if err != nil {
		return err
	}
	if !ok {
		return r.Null()
	}
	return d.emit(r, v)
}

func (d *primitiveView[T]) Skip() error { return d.it.consumeNext() }

// boolView reads bit-packed boolean values.
type boolView struct {
	path     string
	bits     *layout.Bitmap
	validity *layout.Bitmap
	len      int
	next     int
}

func newBoolView(v layout.ArrayView, path string) (Deserializer, error) {
	if v.Bits == nil && v.Len > 0 {
		return nil, errs.WithField(errs.New(errs.Shape, "boolean array has no value bitmap"), path)
	}
	return &boolView{path: path, bits: v.Bits, validity: v.Validity, len: v.Len}, nil
}

func (d *boolView) Next(r events.Receiver) error {
	if d.next >= d.len {
		return errs.WithField(errs.New(errs.Exhausted, "Exhausted deserializer"), d.path)
	}
	i := d.next
	d.next++
	if d.validity != nil && !d.validity.Bit(i) {
		return r.Null()
	}
	return r.Bool(d.bits.Bit(i))
}

func (d *boolView) Skip() error {
	if d.next >= d.len {
		return errs.WithField(errs.New(errs.Exhausted, "Exhausted deserializer"), d.path)
	}
	d.next++
	return nil
}

func newFloat16View(v layout.ArrayView, path string) Deserializer {
	return newPrimitiveView(v.F16, v, path, func(r events.Receiver, x float16.Num) error {
		return r.Float32(x.Float32())
	})
}

// newDecimal128View emits decimal values as their string form so no
// precision is lost crossing the event stream.
func newDecimal128View(v layout.ArrayView, path string, dt *arrow.Decimal128Type) Deserializer {
	return newPrimitiveView(v.D128, v, path, func(r events.Receiver, x decimal128.Num) error {
		return r.Str(x.ToString(dt.Scale))
	})
}
