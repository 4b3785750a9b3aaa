package builder

import (
	"github.com/apache/arrow-go/v18/arrow"
	omap "github.com/wk8/go-ordered-map/v2"

	"github.com/loicalleyne/quiver/errs"
	"github.com/loicalleyne/quiver/events"
	"github.com/loicalleyne/quiver/layout"
)

// dictBuilder accumulates Dictionary arrays: string values are deduplicated
// per batch through an ordered index so the values child keeps insertion
// order, and each row stores the value's index.
type dictBuilder struct {
	events.Unsupported
	field   arrow.Field
	indices Builder
	values  Builder
	index   *omap.OrderedMap[string, int64]
}

func newDictBuilder(u events.Unsupported, field arrow.Field, validity *bitBuffer, dt *arrow.DictionaryType) (Builder, error) {
	switch dt.IndexType.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
	default:
		err := errs.New(errs.Unsupported, "dictionary index type %s is not supported", dt.IndexType)
		return nil, errs.WithField(err, u.Path)
	}
	switch dt.ValueType.ID() {
	case arrow.STRING, arrow.LARGE_STRING:
	default:
		err := errs.New(errs.Unsupported, "dictionary value type %s is not supported", dt.ValueType)
		return nil, errs.WithField(err, u.Path)
	}
	indices, err := New(arrow.Field{Name: "indices", Type: dt.IndexType, Nullable: field.Nullable}, layout.ChildPath(u.Path, "indices"))
	if err != nil {
		return nil, err
	}
	values, err := New(arrow.Field{Name: "values", Type: dt.ValueType}, layout.ChildPath(u.Path, "values"))
	if err != nil {
		return nil, err
	}
	return &dictBuilder{
		Unsupported: u,
		field:       field,
		indices:     indices,
		values:      values,
		index:       omap.New[string, int64](),
	}, nil
}

func (b *dictBuilder) Len() int { return b.indices.Len() }

func (b *dictBuilder) Str(v string) error {
	idx, ok := b.index.Get(v)
	if !ok {
		idx = int64(b.values.Len())
		if err := b.values.Str(v); err != nil {
			return err
		}
		b.index.Set(v, idx)
	}
	return b.indices.Int64(idx)
}

func (b *dictBuilder) Null() error    { return b.indices.Null() }
func (b *dictBuilder) Unit() error    { return b.indices.Unit() }
func (b *dictBuilder) Default() error { return b.indices.Default() }

func (b *dictBuilder) ToArray() (layout.Array, error) {
	indices, err := b.indices.ToArray()
	if err != nil {
		return layout.Array{}, err
	}
	values, err := b.values.ToArray()
	if err != nil {
		return layout.Array{}, err
	}
	a := indices
	a.Field = b.field
	a.Children = []layout.Array{values}
	return a, nil
}
