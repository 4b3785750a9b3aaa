package quiver

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/loicalleyne/quiver/builder"
	"github.com/loicalleyne/quiver/errs"
	"github.com/loicalleyne/quiver/layout"
	"github.com/loicalleyne/quiver/records"
	"github.com/loicalleyne/quiver/view"
)

// ToArrays transcribes records into one column array per schema field. Each
// record must be a struct-shaped value (a Go struct, map[string]any, or JSON
// decoded to one). A failed record leaves the builder tree half-written; the
// whole batch is discarded.
func ToArrays(schema *arrow.Schema, recs []any) ([]layout.Array, error) {
	root := arrow.Field{Name: "$", Type: arrow.StructOf(schema.Fields()...)}
	b, err := builder.New(root, "$")
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		if err := records.Drive(rec, b); err != nil {
			return nil, err
		}
	}
	arr, err := b.ToArray()
	if err != nil {
		return nil, err
	}
	return arr.Children, nil
}

// ToArray transcribes a sequence of values into a single array of the given
// field.
func ToArray(field arrow.Field, values []any) (layout.Array, error) {
	b, err := builder.New(field, "$")
	if err != nil {
		return layout.Array{}, err
	}
	for _, v := range values {
		if err := records.Drive(v, b); err != nil {
			return layout.Array{}, err
		}
	}
	return b.ToArray()
}

// FromArrays deserializes one record per row from the column views. Rows
// come back as map[string]any records, with nested values materialized the
// way the value sink builds them.
func FromArrays(schema *arrow.Schema, views []layout.ArrayView) ([]any, error) {
	fields := schema.Fields()
	if len(views) != len(fields) {
		return nil, errs.New(errs.Shape, "expected %d arrays, got %d", len(fields), len(views))
	}
	n := 0
	var desers []view.Deserializer
	for i, v := range views {
		if i == 0 {
			n = v.Len
		} else if v.Len != n {
			return nil, errs.New(errs.Shape,
				"array %s has length %d, expected %d", fields[i].Name, v.Len, n)
		}
		d, err := view.New(v, layout.ChildPath("$", fields[i].Name))
		if err != nil {
			return nil, err
		}
		desers = append(desers, d)
	}

	out := make([]any, 0, n)
	for row := 0; row < n; row++ {
		sink := records.NewValueSink()
		if err := sink.StructStart(); err != nil {
			return nil, err
		}
		for i, d := range desers {
			fr, err := sink.Field(fields[i].Name)
			if err != nil {
				return nil, err
			}
			if err := d.Next(fr); err != nil {
				return nil, err
			}
		}
		if err := sink.StructEnd(); err != nil {
			return nil, err
		}
		out = append(out, sink.Value())
	}
	return out, nil
}

// FromArray deserializes every row of a single array view.
func FromArray(v layout.ArrayView) ([]any, error) {
	d, err := view.New(v, "$")
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, v.Len)
	for row := 0; row < v.Len; row++ {
		sink := records.NewValueSink()
		if err := d.Next(sink); err != nil {
			return nil, err
		}
		out = append(out, sink.Value())
	}
	return out, nil
}
