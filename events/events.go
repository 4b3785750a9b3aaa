// Package events defines the record event alphabet shared by the schema
// tracer, the columnar builders and the view deserializers. A record source
// drives a Receiver once per record; composite events hand back the child
// Receiver the caller recurses into.
package events

import (
	"github.com/loicalleyne/quiver/errs"
)

// Receiver consumes one record's worth of events.
//
// Scalar events carry the value directly. Composite events bracket child
// streams: SeqStart/Element.../SeqEnd for sequences, TupleStart/Element/
// TupleEnd for fixed-arity tuples, StructStart/Field/StructEnd for named
// records and MapStart/Key/Item/MapEnd for maps. Element, Field, Key, Item
// and Variant return the Receiver the child value's events go to.
//
// Length arguments are -1 when unknown.
type Receiver interface {
	Default() error
	Unit() error
	Null() error
	Some() error

	Bool(v bool) error
	Int8(v int8) error
	Int16(v int16) error
	Int32(v int32) error
	Int64(v int64) error
	Uint8(v uint8) error
	Uint16(v uint16) error
	Uint32(v uint32) error
	Uint64(v uint64) error
	Float32(v float32) error
	Float64(v float64) error
	Bytes(v []byte) error
	Str(v string) error

	SeqStart(n int) error
	Element() (Receiver, error)
	SeqEnd() error

	TupleStart(n int) error
	TupleEnd() error

	StructStart() error
	Field(name string) (Receiver, error)
	StructEnd() error

	MapStart(n int) error
	Key() (Receiver, error)
	Item() (Receiver, error)
	MapEnd() error

	UnitVariant(idx int, name string) error
	Variant(idx int, name string) (Receiver, error)
}

// Unsupported rejects every event with an annotated error. Receivers embed it
// and override the events they support.
type Unsupported struct {
	Name string
	Path string
}

func (u Unsupported) fail(event string) error {
	err := errs.New(errs.Unsupported, "%s is not supported for %s", event, u.Name)
	return errs.WithField(err, u.Path)
}

func (u Unsupported) Default() error { return u.fail("default") }
func (u Unsupported) Unit() error    { return u.fail("unit") }
func (u Unsupported) Null() error    { return u.fail("null") }

// Some defaults to a no-op: the value events follow on the same receiver.
func (u Unsupported) Some() error { return nil }

func (u Unsupported) Bool(bool) error       { return u.fail("bool") }
func (u Unsupported) Int8(int8) error       { return u.fail("i8") }
func (u Unsupported) Int16(int16) error     { return u.fail("i16") }
func (u Unsupported) Int32(int32) error     { return u.fail("i32") }
func (u Unsupported) Int64(int64) error     { return u.fail("i64") }
func (u Unsupported) Uint8(uint8) error     { return u.fail("u8") }
func (u Unsupported) Uint16(uint16) error   { return u.fail("u16") }
func (u Unsupported) Uint32(uint32) error   { return u.fail("u32") }
func (u Unsupported) Uint64(uint64) error   { return u.fail("u64") }
func (u Unsupported) Float32(float32) error { return u.fail("f32") }
func (u Unsupported) Float64(float64) error { return u.fail("f64") }
func (u Unsupported) Bytes([]byte) error    { return u.fail("bytes") }
func (u Unsupported) Str(string) error      { return u.fail("str") }

func (u Unsupported) SeqStart(int) error          { return u.fail("seq_start") }
func (u Unsupported) Element() (Receiver, error)  { return nil, u.fail("element") }
func (u Unsupported) SeqEnd() error               { return u.fail("seq_end") }
func (u Unsupported) TupleStart(int) error        { return u.fail("tuple_start") }
func (u Unsupported) TupleEnd() error             { return u.fail("tuple_end") }
func (u Unsupported) StructStart() error          { return u.fail("struct_start") }
func (u Unsupported) Field(string) (Receiver, error) {
	return nil, u.fail("struct_field")
}
func (u Unsupported) StructEnd() error          { return u.fail("struct_end") }
func (u Unsupported) MapStart(int) error        { return u.fail("map_start") }
func (u Unsupported) Key() (Receiver, error)    { return nil, u.fail("map_key") }
func (u Unsupported) Item() (Receiver, error)   { return nil, u.fail("map_value") }
func (u Unsupported) MapEnd() error             { return u.fail("map_end") }
func (u Unsupported) UnitVariant(int, string) error {
	return u.fail("unit_variant")
}
func (u Unsupported) Variant(int, string) (Receiver, error) {
	return nil, u.fail("variant")
}
