package view

import (
	"github.com/loicalleyne/quiver/errs"
	"github.com/loicalleyne/quiver/events"
	"github.com/loicalleyne/quiver/layout"
)

// listView walks List/LargeList arrays. The item deserializer advances
// sequentially; sliced views skip the leading child rows at construction.
type listView[O int32 | int64] struct {
	path     string
	offsets  []O
	validity *layout.Bitmap
	item     Deserializer
	len      int
	next     int
}

func newListView[O int32 | int64](v layout.ArrayView, offsets []O, path string) (Deserializer, error) {
	if len(offsets) != v.Len+1 {
		return nil, errs.WithField(errs.New(errs.Shape,
			"expected %d offsets, got %d", v.Len+1, len(offsets)), path)
	}
	if err := checkSupportedListLayout(v.Validity, offsets, path); err != nil {
		return nil, err
	}
	if len(v.Children) != 1 {
		return nil, errs.WithField(errs.New(errs.Shape,
			"list arrays need exactly one child, got %d", len(v.Children)), path)
	}
	item, err := New(v.Children[0], layout.ChildPath(path, v.Children[0].Field.Name))
	if err != nil {
		return nil, err
	}
	for i := O(0); i < offsets[0]; i++ {
		if err := item.Skip(); err != nil {
			return nil, err
		}
	}
	return &listView[O]{path: path, offsets: offsets, validity: v.Validity, item: item, len: v.Len}, nil
}

func (d *listView[O]) Next(r events.Receiver) error {
	if d.next >= d.len {
		return errs.WithField(errs.New(errs.Exhausted, "Exhausted deserializer"), d.path)
	}
	i := d.next
	d.next++
	if d.validity != nil && !d.validity.Bit(i) {
		return r.Null()
	}
	n := int(d.offsets[i+1] - d.offsets[i])
	if err := r.SeqStart(n); err != nil {
		return err
	}
	for j := 0; j < n; j++ {
		er, err := r.Element()
		if err != nil {
			return err
		}
		if err := d.item.Next(er); err != nil {
			return err
		}
	}
	return r.SeqEnd()
}

func (d *listView[O]) Skip() error {
	if d.next >= d.len {
		return errs.WithField(errs.New(errs.Exhausted, "Exhausted deserializer"), d.path)
	}
	i := d.next
	d.next++
	for j := d.offsets[i]; j < d.offsets[i+1]; j++ {
		if err := d.item.Skip(); err != nil {
			return err
		}
	}
	return nil
}

type fixedSizeListView struct {
	path     string
	n        int
	validity *layout.Bitmap
	item     Deserializer
	len      int
	next     int
}

func newFixedSizeListView(v layout.ArrayView, path string, n int) (Deserializer, error) {
	if len(v.Children) != 1 {
		return nil, errs.WithField(errs.New(errs.Shape,
			"list arrays need exactly one child, got %d", len(v.Children)), path)
	}
	if v.Children[0].Len != v.Len*n {
		return nil, errs.WithField(errs.New(errs.Shape,
			"FixedSizeList(%d) child length %d does not match %d rows", n, v.Children[0].Len, v.Len), path)
	}
	item, err := New(v.Children[0], layout.ChildPath(path, v.Children[0].Field.Name))
	if err != nil {
		return nil, err
	}
	return &fixedSizeListView{path: path, n: n, validity: v.Validity, item: item, len: v.Len}, nil
}

func (d *fixedSizeListView) Next(r events.Receiver) error {
	if d.next >= d.len {
		return errs.WithField(errs.New(errs.Exhausted, "Exhausted deserializer"), d.path)
	}
	i := d.next
	d.next++
	if d.validity != nil && !d.validity.Bit(i) {
		for j := 0; j < d.n; j++ {
			if err := d.item.Skip(); err != nil {
				return err
			}
		}
		return r.Null()
	}
	if err := r.SeqStart(d.n); err != nil {
		return err
	}
	for j := 0; j < d.n; j++ {
		er, err := r.Element()
		if err != nil {
			return err
		}
		if err := d.item.Next(er); err != nil {
			return err
		}
	}
	return r.SeqEnd()
}

func (d *fixedSizeListView) Skip() error {
	if d.next >= d.len {
		return errs.WithField(errs.New(errs.Exhausted, "Exhausted deserializer"), d.path)
	}
	d.next++
	for j := 0; j < d.n; j++ {
		if err := d.item.Skip(); err != nil {
			return err
		}
	}
	return nil
}
