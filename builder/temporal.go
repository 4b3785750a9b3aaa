package builder

import (
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/decimal128"

	"github.com/loicalleyne/quiver/errs"
	"github.com/loicalleyne/quiver/events"
	"github.com/loicalleyne/quiver/layout"
)

var naiveDatetimeLayouts = []string{
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

func parseNaiveDatetime(s string) (int64, error) {
	for _, l := range naiveDatetimeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.UnixMilli(), nil
		}
	}
	return 0, errs.New(errs.Invalid, "invalid naive datetime %q", s)
}

func parseUtcDatetime(s string) (int64, error) {
	trimmed := strings.TrimSuffix(strings.TrimSuffix(s, "Z"), "+00:00")
	if trimmed == s {
		return 0, errs.New(errs.Invalid, "invalid utc datetime %q", s)
	}
	return parseNaiveDatetime(trimmed)
}

func newDate32Builder(u events.Unsupported, field arrow.Field, validity *bitBuffer) Builder {
	b := newIntBuilder[int32](u, field, validity, -1<<31, 1<<31-1,
		func(a *layout.Array, v []int32) { a.I32 = v })
	b.parseStr = func(s string) (int64, error) {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return 0, err
		}
		return int64(arrow.Date32FromTime(t)), nil
	}
	return b
}

// newDate64Builder accepts milliseconds since epoch; fields annotated with a
// date string strategy additionally accept ISO datetime strings.
func newDate64Builder(u events.Unsupported, field arrow.Field, validity *bitBuffer, strategy layout.Strategy) Builder {
	b := newIntBuilder[int64](u, field, validity, -1<<63, 1<<63-1,
		func(a *layout.Array, v []int64) { a.I64 = v })
	switch strategy {
	case layout.StrategyNaiveStrAsDate64:
		b.parseStr = parseNaiveDatetime
	case layout.StrategyUtcStrAsDate64:
		b.parseStr = parseUtcDatetime
	}
	return b
}

func newTime32Builder(u events.Unsupported, field arrow.Field, validity *bitBuffer, dt *arrow.Time32Type) Builder {
	b := newIntBuilder[int32](u, field, validity, -1<<31, 1<<31-1,
		func(a *layout.Array, v []int32) { a.I32 = v })
	b.parseStr = func(s string) (int64, error) {
		t, err := arrow.Time32FromString(s, dt.Unit)
		if err != nil {
			return 0, err
		}
		return int64(t), nil
	}
	return b
}

func newTime64Builder(u events.Unsupported, field arrow.Field, validity *bitBuffer, dt *arrow.Time64Type) Builder {
	b := newIntBuilder[int64](u, field, validity, -1<<63, 1<<63-1,
		func(a *layout.Array, v []int64) { a.I64 = v })
	b.parseStr = func(s string) (int64, error) {
		t, err := arrow.Time64FromString(s, dt.Unit)
		if err != nil {
			return 0, err
		}
		return int64(t), nil
	}
	return b
}

func newTimestampBuilder(u events.Unsupported, field arrow.Field, validity *bitBuffer, dt *arrow.TimestampType) Builder {
	b := newIntBuilder[int64](u, field, validity, -1<<63, 1<<63-1,
		func(a *layout.Array, v []int64) { a.I64 = v })
	b.parseStr = func(s string) (int64, error) {
		t, err := arrow.TimestampFromString(s, dt.Unit)
		if err != nil {
			return 0, err
		}
		return int64(t), nil
	}
	return b
}

func newDurationBuilder(u events.Unsupported, field arrow.Field, validity *bitBuffer) Builder {
	return newIntBuilder[int64](u, field, validity, -1<<63, 1<<63-1,
		func(a *layout.Array, v []int64) { a.I64 = v })
}

type decimal128Builder struct {
	events.Unsupported
	field    arrow.Field
	validity *bitBuffer
	values   []decimal128.Num
	prec     int32
	scale    int32
}

func newDecimal128Builder(u events.Unsupported, field arrow.Field, validity *bitBuffer, dt *arrow.Decimal128Type) (Builder, error) {
	if dt.Precision < 1 || dt.Precision > 38 {
		err := errs.New(errs.Invalid, "invalid precision %d for Decimal128", dt.Precision)
		return nil, errs.WithField(err, u.Path)
	}
	return &decimal128Builder{Unsupported: u, field: field, validity: validity, prec: dt.Precision, scale: dt.Scale}, nil
}

func (b *decimal128Builder) Len() int { return len(b.values) }

func (b *decimal128Builder) append(n decimal128.Num) error {
	if err := pushValidity(b.validity, true, b.Path); err != nil {
		return err
	}
	b.values = append(b.values, n)
	return nil
}

func (b *decimal128Builder) Str(v string) error {
	n, err := decimal128.FromString(v, b.prec, b.scale)
	if err != nil {
		return errs.WithField(errs.Wrap(err, errs.Invalid, "cannot parse %q as Decimal128(%d, %d)", v, b.prec, b.scale), b.Path)
	}
	return b.append(n)
}

func (b *decimal128Builder) appendInt(v int64) error {
	return b.Str(strconv.FormatInt(v, 10))
}

func (b *decimal128Builder) Int8(v int8) error   { return b.appendInt(int64(v)) }
func (b *decimal128Builder) Int16(v int16) error { return b.appendInt(int64(v)) }
func (b *decimal128Builder) Int32(v int32) error { return b.appendInt(int64(v)) }
func (b *decimal128Builder) Int64(v int64) error { return b.appendInt(v) }
func (b *decimal128Builder) Uint8(v uint8) error { return b.appendInt(int64(v)) }
func (b *decimal128Builder) Uint16(v uint16) error { return b.appendInt(int64(v)) }
func (b *decimal128Builder) Uint32(v uint32) error { return b.appendInt(int64(v)) }

func (b *decimal128Builder) Uint64(v uint64) error {
	return b.Str(strconv.FormatUint(v, 10))
}

func (b *decimal128Builder) Float32(v float32) error { return b.Float64(float64(v)) }

func (b *decimal128Builder) Float64(v float64) error {
	n, err := decimal128.FromFloat64(v, b.prec, b.scale)
	if err != nil {
		return errs.WithField(errs.Wrap(err, errs.OutOfRange, "value %v is not representable in Decimal128(%d, %d)", v, b.prec, b.scale), b.Path)
	}
	return b.append(n)
}

func (b *decimal128Builder) Null() error {
	if err := pushValidity(b.validity, false, b.Path); err != nil {
		return err
	}
	b.values = append(b.values, decimal128.Num{})
	return nil
}

func (b *decimal128Builder) Unit() error { return b.Null() }

func (b *decimal128Builder) Default() error {
	pushValidityDefault(b.validity)
	b.values = append(b.values, decimal128.Num{})
	return nil
}

func (b *decimal128Builder) ToArray() (layout.Array, error) {
	a := layout.Array{Field: b.field, Len: len(b.values), D128: b.values}
	if b.validity != nil {
		a.Validity = b.validity.bytes()
	}
	return a, nil
}
