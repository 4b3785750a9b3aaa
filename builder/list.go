package builder

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/loicalleyne/quiver/errs"
	"github.com/loicalleyne/quiver/events"
	"github.com/loicalleyne/quiver/layout"
)

// listBuilder accumulates List/LargeList arrays. Offsets are materialized
// lazily: elements bump the running count, closing the row pushes it.
type listBuilder[O int32 | int64] struct {
	events.Unsupported
	field    arrow.Field
	validity *bitBuffer
	offsets  *offsetBuffer[O]
	item     Builder
}

func newListBuilder[O int32 | int64](u events.Unsupported, field arrow.Field, validity *bitBuffer, elem arrow.Field) (Builder, error) {
	item, err := New(elem, layout.ChildPath(u.Path, elem.Name))
	if err != nil {
		return nil, err
	}
	return &listBuilder[O]{Unsupported: u, field: field, validity: validity, offsets: newOffsetBuffer[O](), item: item}, nil
}

func (b *listBuilder[O]) Len() int { return b.offsets.rows() }

func (b *listBuilder[O]) SeqStart(int) error   { return nil }
func (b *listBuilder[O]) TupleStart(int) error { return nil }

func (b *listBuilder[O]) Element() (events.Receiver, error) {
	b.offsets.inc()
	return b.item, nil
}

func (b *listBuilder[O]) SeqEnd() error {
	if err := pushValidity(b.validity, true, b.Path); err != nil {
		return err
	}
	b.offsets.closeRow()
	return nil
}

func (b *listBuilder[O]) TupleEnd() error { return b.SeqEnd() }

// Null records a zero-length run: the offset is unchanged and the validity
// bit cleared.
func (b *listBuilder[O]) Null() error {
	if err := pushValidity(b.validity, false, b.Path); err != nil {
		return err
	}
	b.offsets.closeRow()
	return nil
}

func (b *listBuilder[O]) Unit() error { return b.Null() }

func (b *listBuilder[O]) Default() error {
	pushValidityDefault(b.validity)
	b.offsets.closeRow()
	return nil
}

func (b *listBuilder[O]) ToArray() (layout.Array, error) {
	child, err := b.item.ToArray()
	if err != nil {
		return layout.Array{}, err
	}
	a := layout.Array{Field: b.field, Len: b.offsets.rows(), Children: []layout.Array{child}}
	if b.validity != nil {
		a.Validity = b.validity.bytes()
	}
	switch offs := any(b.offsets.offsets).(type) {
	case []int32:
		a.Offsets32 = offs
	case []int64:
		a.Offsets64 = offs
	}
	return a, nil
}

type fixedSizeListBuilder struct {
	events.Unsupported
	field        arrow.Field
	validity     *bitBuffer
	n            int
	currentCount int
	len          int
	item         Builder
}

func newFixedSizeListBuilder(u events.Unsupported, field arrow.Field, validity *bitBuffer, dt *arrow.FixedSizeListType) (Builder, error) {
	elem := dt.ElemField()
	item, err := New(elem, layout.ChildPath(u.Path, elem.Name))
	if err != nil {
		return nil, err
	}
	return &fixedSizeListBuilder{Unsupported: u, field: field, validity: validity, n: int(dt.Len()), item: item}, nil
}

func (b *fixedSizeListBuilder) Len() int { return b.len }

func (b *fixedSizeListBuilder) SeqStart(int) error {
	b.currentCount = 0
	return nil
}

func (b *fixedSizeListBuilder) TupleStart(n int) error { return b.SeqStart(n) }

func (b *fixedSizeListBuilder) Element() (events.Receiver, error) {
	b.currentCount++
	return b.item, nil
}

func (b *fixedSizeListBuilder) SeqEnd() error {
	if b.currentCount != b.n {
		err := errs.New(errs.Shape,
			"Invalid number of elements for FixedSizedList(%d). Expected %d, got %d",
			b.n, b.n, b.currentCount)
		return errs.WithField(err, b.Path)
	}
	if err := pushValidity(b.validity, true, b.Path); err != nil {
		return err
	}
	b.len++
	return nil
}

func (b *fixedSizeListBuilder) TupleEnd() error { return b.SeqEnd() }

// Null keeps the child aligned by appending n default values.
func (b *fixedSizeListBuilder) Null() error {
	if err := pushValidity(b.validity, false, b.Path); err != nil {
		return err
	}
	for i := 0; i < b.n; i++ {
		if err := b.item.Default(); err != nil {
			return err
		}
	}
	b.len++
	return nil
}

func (b *fixedSizeListBuilder) Unit() error { return b.Null() }

func (b *fixedSizeListBuilder) Default() error {
	pushValidityDefault(b.validity)
	for i := 0; i < b.n; i++ {
		if err := b.item.Default(); err != nil {
			return err
		}
	}
	b.len++
	return nil
}

func (b *fixedSizeListBuilder) ToArray() (layout.Array, error) {
	child, err := b.item.ToArray()
	if err != nil {
		return layout.Array{}, err
	}
	if child.Len != b.len*b.n {
		err := errs.New(errs.Shape, "FixedSizeList(%d) child length %d does not match %d rows", b.n, child.Len, b.len)
		return layout.Array{}, errs.WithField(err, b.Path)
	}
	a := layout.Array{Field: b.field, Len: b.len, Children: []layout.Array{child}}
	if b.validity != nil {
		a.Validity = b.validity.bytes()
	}
	return a, nil
}
