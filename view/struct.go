package view

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/loicalleyne/quiver/errs"
	"github.com/loicalleyne/quiver/events"
	"github.com/loicalleyne/quiver/layout"
)

// structView walks Struct arrays, emitting fields in declaration order.
// Fields annotated TupleAsStruct emit tuple events instead so tuple sources
// round-trip.
type structView struct {
	path     string
	validity *layout.Bitmap
	names    []string
	children []Deserializer
	tuple    bool
	len      int
	next     int
}

func newStructView(v layout.ArrayView, path string, strategy layout.Strategy) (Deserializer, error) {
	sv := &structView{
		path:     path,
		validity: v.Validity,
		tuple:    strategy == layout.StrategyTupleAsStruct,
		len:      v.Len,
	}
	for i := range v.Children {
		c := v.Children[i]
		if c.Len != v.Len {
			return nil, errs.WithField(errs.New(errs.Shape,
				"struct child %s has length %d, expected %d", c.Field.Name, c.Len, v.Len), path)
		}
		child, err := New(c, layout.ChildPath(path, c.Field.Name))
		if err != nil {
			return nil, err
		}
		sv.names = append(sv.names, c.Field.Name)
		sv.children = append(sv.children, child)
	}
	return sv, nil
}

func (d *structView) Next(r events.Receiver) error {
	if d.next >= d.len {
		return errs.WithField(errs.New(errs.Exhausted, "Exhausted deserializer"), d.path)
	}
	i := d.next
	d.next++
	if d.validity != nil && !d.validity.Bit(i) {
		for _, c := range d.children {
			if err := c.Skip(); err != nil {
				return err
			}
		}
		return r.Null()
	}
	if d.tuple {
		if err := r.TupleStart(len(d.children)); err != nil {
			return err
		}
		for _, c := range d.children {
			er, err := r.Element()
			if err != nil {
				return err
			}
			if err := c.Next(er); err != nil {
				return err
			}
		}
		return r.TupleEnd()
	}
	if err := r.StructStart(); err != nil {
		return err
	}
	for j, c := range d.children {
		fr, err := r.Field(d.names[j])
		if err != nil {
			return err
		}
		if err := c.Next(fr); err != nil {
			return err
		}
	}
	return r.StructEnd()
}

func (d *structView) Skip() error {
	if d.next >= d.len {
		return errs.WithField(errs.New(errs.Exhausted, "Exhausted deserializer"), d.path)
	}
	d.next++
	for _, c := range d.children {
		if err := c.Skip(); err != nil {
			return err
		}
	}
	return nil
}

// mapView walks Map arrays: the single child is a two-field entries struct
// whose keys child is non-nullable. Entries are consumed sequentially; sliced
// views skip the leading child rows at construction.
type mapView struct {
	path     string
	offsets  []int32
	validity *layout.Bitmap
	key      Deserializer
	value    Deserializer
	len      int
	next     int
}

func newMapView(v layout.ArrayView, path string) (Deserializer, error) {
	if len(v.Offsets32) != v.Len+1 {
		return nil, errs.WithField(errs.New(errs.Shape,
			"expected %d offsets, got %d", v.Len+1, len(v.Offsets32)), path)
	}
	if err := checkSupportedListLayout(v.Validity, v.Offsets32, path); err != nil {
		return nil, err
	}
	if len(v.Children) != 1 {
		return nil, errs.WithField(errs.New(errs.Shape,
			"map arrays need exactly one child, got %d", len(v.Children)), path)
	}
	entries := v.Children[0]
	if _, ok := entries.Field.Type.(*arrow.StructType); !ok || len(entries.Children) != 2 {
		return nil, errs.WithField(errs.New(errs.Shape,
			"map entries must be a struct with exactly two fields"), path)
	}
	if entries.Children[0].Field.Nullable {
		return nil, errs.WithField(errs.New(errs.Shape, "map keys must be non-nullable"), path)
	}
	key, err := New(entries.Children[0], layout.ChildPath(path, "key"))
	if err != nil {
		return nil, err
	}
	value, err := New(entries.Children[1], layout.ChildPath(path, "value"))
	if err != nil {
		return nil, err
	}
	for i := int32(0); i < v.Offsets32[0]; i++ {
		if err := key.Skip(); err != nil {
			return nil, err
		}
		if err := value.Skip(); err != nil {
			return nil, err
		}
	}
	return &mapView{path: path, offsets: v.Offsets32, validity: v.Validity, key: key, value: value, len: v.Len}, nil
}

func (d *mapView) Next(r events.Receiver) error {
	if d.next >= d.len {
		return errs.WithField(errs.New(errs.Exhausted, "Exhausted deserializer"), d.path)
	}
	i := d.next
	d.next++
	if d.validity != nil && !d.validity.Bit(i) {
		return r.Null()
	}
	n := int(d.offsets[i+1] - d.offsets[i])
	if err := r.MapStart(n); err != nil {
		return err
	}
	for j := 0; j < n; j++ {
		kr, err := r.Key()
		if err != nil {
			return err
		}
		if err := d.key.Next(kr); err != nil {
			return err
		}
		vr, err := r.Item()
		if err != nil {
			return err
		}
		if err := d.value.Next(vr); err != nil {
			return err
		}
	}
	return r.MapEnd()
}

func (d *mapView) Skip() error {
	if d.next >= d.len {
		return errs.WithField(errs.New(errs.Exhausted, "Exhausted deserializer"), d.path)
	}
	i := d.next
	d.next++
	for j := d.offsets[i]; j < d.offsets[i+1]; j++ {
		if err := d.key.Skip(); err != nil {
			return err
		}
		if err := d.value.Skip(); err != nil {
			return err
		}
	}
	return nil
}
