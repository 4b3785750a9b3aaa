package builder

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/loicalleyne/quiver/errs"
	"github.com/loicalleyne/quiver/events"
	"github.com/loicalleyne/quiver/layout"
)

// utf8Builder accumulates Utf8/LargeUtf8 and Binary/LargeBinary arrays: a
// shared byte vector plus one offset per value.
type utf8Builder[O int32 | int64] struct {
	events.Unsupported
	field    arrow.Field
	validity *bitBuffer
	data     []byte
	offsets  *offsetBuffer[O]
	utf8     bool
}

func newUtf8Builder[O int32 | int64](u events.Unsupported, field arrow.Field, validity *bitBuffer, utf8 bool) *utf8Builder[O] {
	return &utf8Builder[O]{Unsupported: u, field: field, validity: validity, offsets: newOffsetBuffer[O](), utf8: utf8}
}

func (b *utf8Builder[O]) Len() int { return b.offsets.rows() }

func (b *utf8Builder[O]) appendBytes(v []byte) error {
	if err := pushValidity(b.validity, true, b.Path); err != nil {
		return err
	}
	b.data = append(b.data, v...)
	b.offsets.currentItems += O(len(v))
	b.offsets.closeRow()
	return nil
}

func (b *utf8Builder[O]) Str(v string) error { return b.appendBytes([]byte(v)) }

func (b *utf8Builder[O]) Bytes(v []byte) error {
	if b.utf8 {
		return b.Unsupported.Bytes(v)
	}
	return b.appendBytes(v)
}

func (b *utf8Builder[O]) Null() error {
	if err := pushValidity(b.validity, false, b.Path); err != nil {
		return err
	}
	b.offsets.closeRow()
	return nil
}

func (b *utf8Builder[O]) Unit() error { return b.Null() }

func (b *utf8Builder[O]) Default() error {
	pushValidityDefault(b.validity)
	b.offsets.closeRow()
	return nil
}

func (b *utf8Builder[O]) ToArray() (layout.Array, error) {
	a := layout.Array{Field: b.field, Len: b.offsets.rows(), Data: b.data}
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

type fixedSizeBinaryBuilder struct {
	events.Unsupported
	field    arrow.Field
	validity *bitBuffer
	n        int
	data     []byte
	len      int
}

func (b *fixedSizeBinaryBuilder) Len() int { return b.len }

func (b *fixedSizeBinaryBuilder) Bytes(v []byte) error {
	if len(v) != b.n {
		err := errs.New(errs.Shape, "invalid length %d for FixedSizeBinary(%d)", len(v), b.n)
		return errs.WithField(err, b.Path)
	}
	if err := pushValidity(b.validity, true, b.Path); err != nil {
		return err
	}
	b.data = append(b.data, v...)
	b.len++
	return nil
}

func (b *fixedSizeBinaryBuilder) Str(v string) error { return b.Bytes([]byte(v)) }

func (b *fixedSizeBinaryBuilder) Null() error {
	if err := pushValidity(b.validity, false, b.Path); err != nil {
		return err
	}
	b.data = append(b.data, make([]byte, b.n)...)
	b.len++
	return nil
}

func (b *fixedSizeBinaryBuilder) Unit() error { return b.Null() }

func (b *fixedSizeBinaryBuilder) Default() error {
	pushValidityDefault(b.validity)
	b.data = append(b.data, make([]byte, b.n)...)
	b.len++
	return nil
}

func (b *fixedSizeBinaryBuilder) ToArray() (layout.Array, error) {
	a := layout.Array{Field: b.field, Len: b.len, Data: b.data}
	if b.validity != nil {
		a.Validity = b.validity.bytes()
	}
	return a, nil
}
