package view

import (
	"time"

	"github.com/loicalleyne/quiver/errs"
	"github.com/loicalleyne/quiver/events"
	"github.com/loicalleyne/quiver/layout"
)

// utf8View reads Utf8/Binary and their Large variants: one offset pair per
// row delimits the value bytes.
type utf8View[O int32 | int64] struct {
	path     string
	data     []byte
	offsets  []O
	validity *layout.Bitmap
	utf8     bool
	len      int
	next     int
}

func newUtf8View[O int32 | int64](v layout.ArrayView, offsets []O, path string, utf8 bool) (Deserializer, error) {
	if len(offsets) != v.Len+1 {
		return nil, errs.WithField(errs.New(errs.Shape,
			"expected %d offsets, got %d", v.Len+1, len(offsets)), path)
	}
	if err := checkSupportedListLayout(v.Validity, offsets, path); err != nil {
		return nil, err
	}
	return &utf8View[O]{path: path, data: v.Data, offsets: offsets, validity: v.Validity, utf8: utf8, len: v.Len}, nil
}

func (d *utf8View[O]) Next(r events.Receiver) error {
	if d.next >= d.len {
		return errs.WithField(errs.New(errs.Exhausted, "Exhausted deserializer"), d.path)
	}
	i := d.next
	d.next++
	if d.validity != nil && !d.validity.Bit(i) {
		return r.Null()
	}
	v := d.data[d.offsets[i]:d.offsets[i+1]]
	if d.utf8 {
		return r.Str(string(v))
	}
	return r.Bytes(v)
}

func (d *utf8View[O]) Skip() error {
	if d.next >= d.len {
		return errs.WithField(errs.New(errs.Exhausted, "Exhausted deserializer"), d.path)
	}
	d.next++
	return nil
}

type fixedSizeBinaryView struct {
	path     string
	data     []byte
	n        int
	validity *layout.Bitmap
	len      int
	next     int
}

func newFixedSizeBinaryView(v layout.ArrayView, path string, n int) Deserializer {
	return &fixedSizeBinaryView{path: path, data: v.Data, n: n, validity: v.Validity, len: v.Len}
}

func (d *fixedSizeBinaryView) Next(r events.Receiver) error {
	if d.next >= d.len {
		return errs.WithField(errs.New(errs.Exhausted, "Exhausted deserializer"), d.path)
	}
	i := d.next
	d.next++
	if d.validity != nil && !d.validity.Bit(i) {
		return r.Null()
	}
	return r.Bytes(d.data[i*d.n : (i+1)*d.n])
}

func (d *fixedSizeBinaryView) Skip() error {
	if d.next >= d.len {
		return errs.WithField(errs.New(errs.Exhausted, "Exhausted deserializer"), d.path)
	}
	d.next++
	return nil
}

// date64View emits milliseconds since epoch, or the ISO string form when the
// field carries one of the date string strategies.
type date64View struct {
	it       bufferIterator[int64]
	strategy layout.Strategy
}

func newDate64View(v layout.ArrayView, path string, strategy layout.Strategy) Deserializer {
	return &date64View{
		it:       bufferIterator[int64]{buf: v.I64, validity: v.Validity, path: path},
		strategy: strategy,
	}
}

func (d *date64View) Next(r events.Receiver) error {
	v, ok, err := d.it.nextValue()
	if err != nil {
		return err
	}
	if !ok {
		return r.Null()
	}
	switch d.strategy {
	case layout.StrategyNaiveStrAsDate64:
		return r.Str(formatDatetime(v, false))
	case layout.StrategyUtcStrAsDate64:
		return r.Str(formatDatetime(v, true))
	}
	return r.Int64(v)
}

func (d *date64View) Skip() error { return d.it.consumeNext() }

func formatDatetime(ms int64, utc bool) string {
	t := time.UnixMilli(ms).UTC()
	layoutStr := "2006-01-02T15:04:05"
	if ms%1000 != 0 {
		layoutStr = "2006-01-02T15:04:05.000"
	}
	s := t.Format(layoutStr)
	if utc {
		s += "Z"
	}
	return s
}
