package view

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/loicalleyne/quiver/errs"
	"github.com/loicalleyne/quiver/events"
	"github.com/loicalleyne/quiver/layout"
)

// denseUnionView walks DenseUnion arrays. Child rows are consumed
// sequentially per variant; each row's offset must match the variant's
// cursor, which holds for arrays produced by the builders.
type denseUnionView struct {
	path     string
	typeIDs  []int8
	offsets  []int32
	names    []string
	children []Deserializer
	isNull   []bool
	cursors  []int32
	len      int
	next     int
}

func newDenseUnionView(v layout.ArrayView, path string, dt *arrow.DenseUnionType) (Deserializer, error) {
	for i, code := range dt.TypeCodes() {
		if int(code) != i {
			return nil, errs.WithField(errs.New(errs.Unsupported,
				"union type ids must be consecutive starting at 0, got %v", dt.TypeCodes()), path)
		}
	}
	if len(v.TypeIDs) != v.Len || len(v.Offsets32) != v.Len {
		return nil, errs.WithField(errs.New(errs.Shape,
			"dense union needs %d type ids and offsets, got %d and %d",
			v.Len, len(v.TypeIDs), len(v.Offsets32)), path)
	}
	if len(v.Children) != len(dt.Fields()) {
		return nil, errs.WithField(errs.New(errs.Shape,
			"dense union needs %d children, got %d", len(dt.Fields()), len(v.Children)), path)
	}
	u := &denseUnionView{
		path:    path,
		typeIDs: v.TypeIDs,
		offsets: v.Offsets32,
		cursors: make([]int32, len(v.Children)),
		len:     v.Len,
	}
	for i := range v.Children {
		c := v.Children[i]
		child, err := New(c, layout.ChildPath(path, c.Field.Name))
		if err != nil {
			return nil, err
		}
		u.names = append(u.names, c.Field.Name)
		u.children = append(u.children, child)
		_, isNull := c.Field.Type.(*arrow.NullType)
		u.isNull = append(u.isNull, isNull)
	}
	return u, nil
}

func (d *denseUnionView) row() (int, error) {
	if d.next >= d.len {
		return 0, errs.WithField(errs.New(errs.Exhausted, "Exhausted deserializer"), d.path)
	}
	i := d.next
	d.next++
	id := int(d.typeIDs[i])
	if id < 0 || id >= len(d.children) {
		return 0, errs.WithField(errs.New(errs.Shape, "invalid union type id %d", id), d.path)
	}
	if d.offsets[i] != d.cursors[id] {
		return 0, errs.WithField(errs.New(errs.Unsupported,
			"dense union offsets must be consecutive per variant"), d.path)
	}
	d.cursors[id]++
	return id, nil
}

func (d *denseUnionView) Next(r events.Receiver) error {
	id, err := d.row()
	if err != nil {
		return err
	}
	if d.isNull[id] {
		if err := d.children[id].Skip(); err != nil {
			return err
		}
		return r.UnitVariant(id, d.names[id])
	}
	vr, err := r.Variant(id, d.names[id])
	if err != nil {
		return err
	}
	return d.children[id].Next(vr)
}

func (d *denseUnionView) Skip() error {
	id, err := d.row()
	if err != nil {
		return err
	}
	return d.children[id].Skip()
}
