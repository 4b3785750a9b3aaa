package builder

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/loicalleyne/quiver/errs"
	"github.com/loicalleyne/quiver/events"
	"github.com/loicalleyne/quiver/layout"
)

// denseUnionBuilder accumulates DenseUnion arrays: an i8 type id and an i32
// child offset per row, with values stored only in the selected child.
// Union type ids are required to be consecutive starting at 0.
type denseUnionBuilder struct {
	events.Unsupported
	field    arrow.Field
	typeIDs  []int8
	offsets  []int32
	names    []string
	children []Builder
}

func newDenseUnionBuilder(u events.Unsupported, field arrow.Field, dt *arrow.DenseUnionType) (Builder, error) {
	for i, code := range dt.TypeCodes() {
		if int(code) != i {
			err := errs.New(errs.Unsupported, "union type ids must be consecutive starting at 0, got %v", dt.TypeCodes())
			return nil, errs.WithField(err, u.Path)
		}
	}
	b := &denseUnionBuilder{Unsupported: u, field: field}
	for _, f := range dt.Fields() {
		child, err := New(f, layout.ChildPath(u.Path, f.Name))
		if err != nil {
			return nil, err
		}
		b.names = append(b.names, f.Name)
		b.children = append(b.children, child)
	}
	return b, nil
}

func (b *denseUnionBuilder) Len() int { return len(b.typeIDs) }

func (b *denseUnionBuilder) selectVariant(idx int, name string) (Builder, error) {
	if idx < 0 || idx >= len(b.children) {
		err := errs.New(errs.Shape, "variant index %d out of range, union has %d variants", idx, len(b.children))
		return nil, errs.WithField(err, b.Path)
	}
	if name != "" && b.names[idx] != name {
		err := errs.New(errs.Conflict, "variant %d is named %q, got %q", idx, b.names[idx], name)
		return nil, errs.WithField(err, b.Path)
	}
	child := b.children[idx]
	b.typeIDs = append(b.typeIDs, int8(idx))
	b.offsets = append(b.offsets, int32(child.Len()))
	return child, nil
}

func (b *denseUnionBuilder) UnitVariant(idx int, name string) error {
	child, err := b.selectVariant(idx, name)
	if err != nil {
		return err
	}
	return child.Unit()
}

func (b *denseUnionBuilder) Variant(idx int, name string) (events.Receiver, error) {
	return b.selectVariant(idx, name)
}

func (b *denseUnionBuilder) ToArray() (layout.Array, error) {
	a := layout.Array{
		Field:     b.field,
		Len:       len(b.typeIDs),
		TypeIDs:   b.typeIDs,
		Offsets32: b.offsets,
	}
	for _, c := range b.children {
		child, err := c.ToArray()
		if err != nil {
			return layout.Array{}, err
		}
		a.Children = append(a.Children, child)
	}
	return a, nil
}
