package builder

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/loicalleyne/quiver/errs"
	"github.com/loicalleyne/quiver/events"
	"github.com/loicalleyne/quiver/layout"
)

// structBuilder accumulates Struct arrays. A per-record seen bitmap tracks
// which fields were driven; unseen fields receive a default value when the
// record closes. Tuple events are accepted positionally, which also covers
// fields annotated with the TupleAsStruct strategy.
type structBuilder struct {
	events.Unsupported
	field    arrow.Field
	validity *bitBuffer
	names    []string
	index    map[string]int
	children []Builder
	seen     []bool
	pos      int
	len      int
}

func newStructBuilder(u events.Unsupported, field arrow.Field, validity *bitBuffer, fields []arrow.Field) (Builder, error) {
	b := &structBuilder{
		Unsupported: u,
		field:       field,
		validity:    validity,
		index:       make(map[string]int, len(fields)),
		seen:        make([]bool, len(fields)),
	}
	for i, f := range fields {
		child, err := New(f, layout.ChildPath(u.Path, f.Name))
		if err != nil {
			return nil, err
		}
		b.names = append(b.names, f.Name)
		b.children = append(b.children, child)
		b.index[f.Name] = i
	}
	return b, nil
}

func (b *structBuilder) Len() int { return b.len }

func (b *structBuilder) start() error {
	for i := range b.seen {
		b.seen[i] = false
	}
	b.pos = 0
	return nil
}

func (b *structBuilder) StructStart() error { return b.start() }

func (b *structBuilder) Field(name string) (events.Receiver, error) {
	i, ok := b.index[name]
	if !ok {
		err := errs.New(errs.Shape, "unknown field %q", name)
		return nil, errs.WithField(err, b.Path)
	}
	if b.seen[i] {
		err := errs.New(errs.Shape, "duplicate field %q in record", name)
		return nil, errs.WithField(err, b.Path)
	}
	b.seen[i] = true
	return b.children[i], nil
}

func (b *structBuilder) StructEnd() error { return b.end() }

func (b *structBuilder) end() error {
	for i, seen := range b.seen {
		if !seen {
			if err := b.children[i].Default(); err != nil {
				return err
			}
		}
	}
	if err := pushValidity(b.validity, true, b.Path); err != nil {
		return err
	}
	b.len++
	return nil
}

func (b *structBuilder) TupleStart(int) error { return b.start() }

func (b *structBuilder) Element() (events.Receiver, error) {
	if b.pos >= len(b.children) {
		err := errs.New(errs.Shape, "too many tuple elements, struct has %d fields", len(b.children))
		return nil, errs.WithField(err, b.Path)
	}
	i := b.pos
	b.pos++
	b.seen[i] = true
	return b.children[i], nil
}

func (b *structBuilder) TupleEnd() error { return b.end() }

func (b *structBuilder) Null() error {
	if err := pushValidity(b.validity, false, b.Path); err != nil {
		return err
	}
	return b.defaultChildren()
}

func (b *structBuilder) Unit() error { return b.Null() }

func (b *structBuilder) Default() error {
	pushValidityDefault(b.validity)
	return b.defaultChildren()
}

func (b *structBuilder) defaultChildren() error {
	for _, c := range b.children {
		if err := c.Default(); err != nil {
			return err
		}
	}
	b.len++
	return nil
}

func (b *structBuilder) ToArray() (layout.Array, error) {
	a := layout.Array{Field: b.field, Len: b.len}
	if b.validity != nil {
		a.Validity = b.validity.bytes()
	}
	for _, c := range b.children {
		child, err := c.ToArray()
		if err != nil {
			return layout.Array{}, err
		}
		if child.Len != b.len {
			err := errs.New(errs.Shape, "struct child %s has length %d, expected %d", child.Field.Name, child.Len, b.len)
			return layout.Array{}, errs.WithField(err, b.Path)
		}
		a.Children = append(a.Children, child)
	}
	return a, nil
}

// mapBuilder accumulates Map arrays: offsets over a non-nullable entries
// struct holding the key and value children.
type mapBuilder struct {
	events.Unsupported
	field    arrow.Field
	validity *bitBuffer
	offsets  *offsetBuffer[int32]
	entries  arrow.Field
	key      Builder
	value    Builder
}

func newMapBuilder(u events.Unsupported, field arrow.Field, validity *bitBuffer, dt *arrow.MapType) (Builder, error) {
	entries := dt.ElemField()
	if dt.KeyField().Nullable {
		err := errs.New(errs.Shape, "map keys must be non-nullable")
		return nil, errs.WithField(err, u.Path)
	}
	key, err := New(dt.KeyField(), layout.ChildPath(u.Path, dt.KeyField().Name))
	if err != nil {
		return nil, err
	}
	value, err := New(dt.ItemField(), layout.ChildPath(u.Path, dt.ItemField().Name))
	if err != nil {
		return nil, err
	}
	return &mapBuilder{
		Unsupported: u, field: field, validity: validity,
		offsets: newOffsetBuffer[int32](), entries: entries, key: key, value: value,
	}, nil
}

func (b *mapBuilder) Len() int { return b.offsets.rows() }

func (b *mapBuilder) MapStart(int) error { return nil }

func (b *mapBuilder) Key() (events.Receiver, error) {
	b.offsets.inc()
	return b.key, nil
}

func (b *mapBuilder) Item() (events.Receiver, error) { return b.value, nil }

func (b *mapBuilder) MapEnd() error {
	if err := pushValidity(b.validity, true, b.Path); err != nil {
		return err
	}
	b.offsets.closeRow()
	return nil
}

func (b *mapBuilder) Null() error {
	if err := pushValidity(b.validity, false, b.Path); err != nil {
		return err
	}
	b.offsets.closeRow()
	return nil
}

func (b *mapBuilder) Unit() error { return b.Null() }

func (b *mapBuilder) Default() error {
	pushValidityDefault(b.validity)
	b.offsets.closeRow()
	return nil
}

func (b *mapBuilder) ToArray() (layout.Array, error) {
	keys, err := b.key.ToArray()
	if err != nil {
		return layout.Array{}, err
	}
	values, err := b.value.ToArray()
	if err != nil {
		return layout.Array{}, err
	}
	if keys.Len != values.Len {
		err := errs.New(errs.Shape, "map keys length %d does not match values length %d", keys.Len, values.Len)
		return layout.Array{}, errs.WithField(err, b.Path)
	}
	entries := layout.Array{
		Field:    b.entries,
		Len:      keys.Len,
		Children: []layout.Array{keys, values},
	}
	a := layout.Array{
		Field:     b.field,
		Len:       b.offsets.rows(),
		Offsets32: b.offsets.offsets,
		Children:  []layout.Array{entries},
	}
	if b.validity != nil {
		a.Validity = b.validity.bytes()
	}
	return a, nil
}
