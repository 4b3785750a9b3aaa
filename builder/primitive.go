package builder

import (
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/float16"

	"github.com/loicalleyne/quiver/errs"
	"github.com/loicalleyne/quiver/events"
	"github.com/loicalleyne/quiver/layout"
)

// nullBuilder accumulates a Null array; it only counts rows.
type nullBuilder struct {
	events.Unsupported
	field arrow.Field
	len   int
}

func (b *nullBuilder) Len() int { return b.len }

func (b *nullBuilder) Null() error    { b.len++; return nil }
func (b *nullBuilder) Unit() error    { b.len++; return nil }
func (b *nullBuilder) Default() error { b.len++; return nil }

func (b *nullBuilder) ToArray() (layout.Array, error) {
	return layout.Array{Field: b.field, Len: b.len}, nil
}

type boolBuilder struct {
	events.Unsupported
	field    arrow.Field
	validity *bitBuffer
	values   bitBuffer
}

func (b *boolBuilder) Len() int { return b.values.len }

func (b *boolBuilder) Bool(v bool) error {
	if err := pushValidity(b.validity, true, b.Path); err != nil {
		return err
	}
	b.values.push(v)
	return nil
}

func (b *boolBuilder) Null() error {
	if err := pushValidity(b.validity, false, b.Path); err != nil {
		return err
	}
	b.values.push(false)
	return nil
}

func (b *boolBuilder) Unit() error { return b.Null() }

func (b *boolBuilder) Default() error {
	pushValidityDefault(b.validity)
	b.values.push(false)
	return nil
}

func (b *boolBuilder) ToArray() (layout.Array, error) {
	a := layout.Array{Field: b.field, Len: b.values.len, Bits: b.values.bytes()}
	if b.validity != nil {
		a.Validity = b.validity.bytes()
	}
	return a, nil
}

// intBuilder accumulates a signed integer (or integer-backed temporal) array.
// Any integer or integral float event representable in the target range is
// accepted; parseStr, when set, admits string events.
type intBuilder[T int8 | int16 | int32 | int64] struct {
	events.Unsupported
	field    arrow.Field
	validity *bitBuffer
	values   []T
	min, max int64
	parseStr func(string) (int64, error)
	finish   func(*layout.Array, []T)
}

func newIntBuilder[T int8 | int16 | int32 | int64](
	u events.Unsupported, field arrow.Field, validity *bitBuffer,
	min, max int64, finish func(*layout.Array, []T),
) *intBuilder[T] {
	return &intBuilder[T]{Unsupported: u, field: field, validity: validity, min: min, max: max, finish: finish}
}

func (b *intBuilder[T]) Len() int { return len(b.values) }

func (b *intBuilder[T]) append(v int64) error {
	if v < b.min || v > b.max {
		err := errs.New(errs.OutOfRange, "value %d is not representable in %s", v, b.Name)
		return errs.WithDataType(errs.WithField(err, b.Path), b.Name)
	}
	if err := pushValidity(b.validity, true, b.Path); err != nil {
		return err
	}
	b.values = append(b.values, T(v))
	return nil
}

func (b *intBuilder[T]) appendFloat(v float64) error {
	if v != math.Trunc(v) || v < math.MinInt64 || v >= math.MaxInt64 {
		err := errs.New(errs.OutOfRange, "value %v is not representable in %s", v, b.Name)
		return errs.WithDataType(errs.WithField(err, b.Path), b.Name)
	}
	return b.append(int64(v))
}

func (b *intBuilder[T]) Int8(v int8) error   { return b.append(int64(v)) }
func (b *intBuilder[T]) Int16(v int16) error { return b.append(int64(v)) }
func (b *intBuilder[T]) Int32(v int32) error { return b.append(int64(v)) }
func (b *intBuilder[T]) Int64(v int64) error { return b.append(v) }
func (b *intBuilder[T]) Uint8(v uint8) error { return b.append(int64(v)) }
func (b *intBuilder[T]) Uint16(v uint16) error { return b.append(int64(v)) }
func (b *intBuilder[T]) Uint32(v uint32) error { return b.append(int64(v)) }

func (b *intBuilder[T]) Uint64(v uint64) error {
	if v > math.MaxInt64 {
		err := errs.New(errs.OutOfRange, "value %d is not representable in %s", v, b.Name)
		return errs.WithDataType(errs.WithField(err, b.Path), b.Name)
	}
	return b.append(int64(v))
}

func (b *intBuilder[T]) Float32(v float32) error { return b.appendFloat(float64(v)) }
func (b *intBuilder[T]) Float64(v float64) error { return b.appendFloat(v) }

func (b *intBuilder[T]) Str(v string) error {
	if b.parseStr == nil {
		return b.Unsupported.Str(v)
	}
	n, err := b.parseStr(v)
	if err != nil {
		return errs.WithField(errs.Wrap(err, errs.Invalid, "cannot parse %q for %s", v, b.Name), b.Path)
	}
	return b.append(n)
}

func (b *intBuilder[T]) Null() error {
	if err := pushValidity(b.validity, false, b.Path); err != nil {
		return err
	}
	b.values = append(b.values, 0)
	return nil
}

func (b *intBuilder[T]) Unit() error { return b.Null() }

func (b *intBuilder[T]) Default() error {
	pushValidityDefault(b.validity)
	b.values = append(b.values, 0)
	return nil
}

func (b *intBuilder[T]) ToArray() (layout.Array, error) {
	a := layout.Array{Field: b.field, Len: len(b.values)}
	if b.validity != nil {
		a.Validity = b.validity.bytes()
	}
	b.finish(&a, b.values)
	return a, nil
}

type uintBuilder[T uint8 | uint16 | uint32 | uint64] struct {
	events.Unsupported
	field    arrow.Field
	validity *bitBuffer
	values   []T
	max      uint64
	finish   func(*layout.Array, []T)
}

func newUintBuilder[T uint8 | uint16 | uint32 | uint64](
	u events.Unsupported, field arrow.Field, validity *bitBuffer,
	max uint64, finish func(*layout.Array, []T),
) *uintBuilder[T] {
	return &uintBuilder[T]{Unsupported: u, field: field, validity: validity, max: max, finish: finish}
}

func (b *uintBuilder[T]) Len() int { return len(b.values) }

func (b *uintBuilder[T]) append(v uint64) error {
	if v > b.max {
		err := errs.New(errs.OutOfRange, "value %d is not representable in %s", v, b.Name)
		return errs.WithDataType(errs.WithField(err, b.Path), b.Name)
	}
	if err := pushValidity(b.validity, true, b.Path); err != nil {
		return err
	}
	b.values = append(b.values, T(v))
	return nil
}

func (b *uintBuilder[T]) appendSigned(v int64) error {
	if v < 0 {
		err := errs.New(errs.OutOfRange, "value %d is not representable in %s", v, b.Name)
		return errs.WithDataType(errs.WithField(err, b.Path), b.Name)
	}
	return b.append(uint64(v))
}

func (b *uintBuilder[T]) Int8(v int8) error   { return b.appendSigned(int64(v)) }
func (b *uintBuilder[T]) Int16(v int16) error { return b.appendSigned(int64(v)) }
func (b *uintBuilder[T]) Int32(v int32) error { return b.appendSigned(int64(v)) }
func (b *uintBuilder[T]) Int64(v int64) error { return b.appendSigned(v) }
func (b *uintBuilder[T]) Uint8(v uint8) error { return b.append(uint64(v)) }
func (b *uintBuilder[T]) Uint16(v uint16) error { return b.append(uint64(v)) }
func (b *uintBuilder[T]) Uint32(v uint32) error { return b.append(uint64(v)) }
func (b *uintBuilder[T]) Uint64(v uint64) error { return b.append(v) }

func (b *uintBuilder[T]) Float32(v float32) error { return b.appendFloat(float64(v)) }
func (b *uintBuilder[T]) Float64(v float64) error { return b.appendFloat(v) }

func (b *uintBuilder[T]) appendFloat(v float64) error {
	if v != math.Trunc(v) || v < 0 || v >= math.MaxUint64 {
		err := errs.New(errs.OutOfRange, "value %v is not representable in %s", v, b.Name)
		return errs.WithDataType(errs.WithField(err, b.Path), b.Name)
	}
	return b.append(uint64(v))
}

func (b *uintBuilder[T]) Null() error {
	if err := pushValidity(b.validity, false, b.Path); err != nil {
		return err
	}
	b.values = append(b.values, 0)
	return nil
}

func (b *uintBuilder[T]) Unit() error { return b.Null() }

func (b *uintBuilder[T]) Default() error {
	pushValidityDefault(b.validity)
	b.values = append(b.values, 0)
	return nil
}

func (b *uintBuilder[T]) ToArray() (layout.Array, error) {
	a := layout.Array{Field: b.field, Len: len(b.values)}
	if b.validity != nil {
		a.Validity = b.validity.bytes()
	}
	b.finish(&a, b.values)
	return a, nil
}

type floatBuilder[T float32 | float64] struct {
	events.Unsupported
	field    arrow.Field
	validity *bitBuffer
	values   []T
	max      float64
	finish   func(*layout.Array, []T)
}

func newFloatBuilder[T float32 | float64](
	u events.Unsupported, field arrow.Field, validity *bitBuffer,
	max float64, finish func(*layout.Array, []T),
) *floatBuilder[T] {
	return &floatBuilder[T]{Unsupported: u, field: field, validity: validity, max: max, finish: finish}
}

func (b *floatBuilder[T]) Len() int { return len(b.values) }

func (b *floatBuilder[T]) append(v float64) error {
	if !math.IsInf(v, 0) && !math.IsNaN(v) && math.Abs(v) > b.max {
		err := errs.New(errs.OutOfRange, "value %v is not representable in %s", v, b.Name)
		return errs.WithDataType(errs.WithField(err, b.Path), b.Name)
	}
	if err := pushValidity(b.validity, true, b.Path); err != nil {
		return err
	}
	b.values = append(b.values, T(v))
	return nil
}

func (b *floatBuilder[T]) Int8(v int8) error     { return b.append(float64(v)) }
func (b *floatBuilder[T]) Int16(v int16) error   { return b.append(float64(v)) }
func (b *floatBuilder[T]) Int32(v int32) error   { return b.append(float64(v)) }
func (b *floatBuilder[T]) Int64(v int64) error   { return b.append(float64(v)) }
func (b *floatBuilder[T]) Uint8(v uint8) error   { return b.append(float64(v)) }
func (b *floatBuilder[T]) Uint16(v uint16) error { return b.append(float64(v)) }
func (b *floatBuilder[T]) Uint32(v uint32) error { return b.append(float64(v)) }
func (b *floatBuilder[T]) Uint64(v uint64) error { return b.append(float64(v)) }
func (b *floatBuilder[T]) Float32(v float32) error { return b.append(float64(v)) }
func (b *floatBuilder[T]) Float64(v float64) error { return b.append(v) }

func (b *floatBuilder[T]) Null() error {
	if err := pushValidity(b.validity, false, b.Path); err != nil {
		return err
	}
	b.values = append(b.values, 0)
	return nil
}

func (b *floatBuilder[T]) Unit() error { return b.Null() }

func (b *floatBuilder[T]) Default() error {
	pushValidityDefault(b.validity)
	b.values = append(b.values, 0)
	return nil
}

func (b *floatBuilder[T]) ToArray() (layout.Array, error) {
	a := layout.Array{Field: b.field, Len: len(b.values)}
	if b.validity != nil {
		a.Validity = b.validity.bytes()
	}
	b.finish(&a, b.values)
	return a, nil
}

type float16Builder struct {
	events.Unsupported
	field    arrow.Field
	validity *bitBuffer
	values   []float16.Num
}

func (b *float16Builder) Len() int { return len(b.values) }

func (b *float16Builder) append(v float64) error {
	if !math.IsInf(v, 0) && !math.IsNaN(v) && math.Abs(v) > 65504 {
		err := errs.New(errs.OutOfRange, "value %v is not representable in %s", v, b.Name)
		return errs.WithDataType(errs.WithField(err, b.Path), b.Name)
	}
	if err := pushValidity(b.validity, true, b.Path); err != nil {
		return err
	}
	b.values = append(b.values, float16.New(float32(v)))
	return nil
}

func (b *float16Builder) Int8(v int8) error       { return b.append(float64(v)) }
func (b *float16Builder) Int16(v int16) error     { return b.append(float64(v)) }
func (b *float16Builder) Int32(v int32) error     { return b.append(float64(v)) }
func (b *float16Builder) Int64(v int64) error     { return b.append(float64(v)) }
func (b *float16Builder) Uint8(v uint8) error     { return b.append(float64(v)) }
func (b *float16Builder) Uint16(v uint16) error   { return b.append(float64(v)) }
func (b *float16Builder) Uint32(v uint32) error   { return b.append(float64(v)) }
func (b *float16Builder) Uint64(v uint64) error   { return b.append(float64(v)) }
func (b *float16Builder) Float32(v float32) error { return b.append(float64(v)) }
func (b *float16Builder) Float64(v float64) error { return b.append(v) }

func (b *float16Builder) Null() error {
	if err := pushValidity(b.validity, false, b.Path); err != nil {
		return err
	}
	b.values = append(b.values, float16.New(0))
	return nil
}

func (b *float16Builder) Unit() error { return b.Null() }

func (b *float16Builder) Default() error {
	pushValidityDefault(b.validity)
	b.values = append(b.values, float16.New(0))
	return nil
}

func (b *float16Builder) ToArray() (layout.Array, error) {
	a := layout.Array{Field: b.field, Len: len(b.values), F16: b.values}
	if b.validity != nil {
		a.Validity = b.validity.bytes()
	}
	return a, nil
}
