package records

import (
	"github.com/loicalleyne/quiver/events"
)

type sinkKind int

const (
	sinkScalar sinkKind = iota
	sinkSeq
	sinkTuple
	sinkStruct
	sinkMap
	sinkVariant
	sinkUnitVariant
)

// ValueSink materializes an event stream back into Go values: structs become
// map[string]any, sequences []any, tuples Tuple, maps map[any]any (or
// map[string]any when the map has keys and every key is a string; empty maps
// are map[any]any) and union rows Variant. Resolve
// the value with Value once the record's events are complete.
type ValueSink struct {
	events.Unsupported
	kind    sinkKind
	scalar  any
	elems   []*ValueSink
	fields  []string
	fvals   []*ValueSink
	keys    []*ValueSink
	mvals   []*ValueSink
	varIdx  int
	varName string
	varVal  *ValueSink
}

// NewValueSink returns a sink for one record.
func NewValueSink() *ValueSink {
	return &ValueSink{Unsupported: events.Unsupported{Name: "value sink", Path: "$"}}
}

// Value resolves the materialized Go value.
func (s *ValueSink) Value() any {
	switch s.kind {
	case sinkSeq:
		out := make([]any, len(s.elems))
		for i, e := range s.elems {
			out[i] = e.Value()
		}
		return out
	case sinkTuple:
		out := make(Tuple, len(s.elems))
		for i, e := range s.elems {
			out[i] = e.Value()
		}
		return out
	case sinkStruct:
		out := make(map[string]any, len(s.fields))
		for i, name := range s.fields {
			out[name] = s.fvals[i].Value()
		}
		return out
	case sinkMap:
		strKeys := len(s.keys) > 0
		for _, k := range s.keys {
			if _, ok := k.Value().(string); !ok {
				strKeys = false
				break
			}
		}
		if strKeys {
			out := make(map[string]any, len(s.keys))
			for i, k := range s.keys {
				out[k.Value().(string)] = s.mvals[i].Value()
			}
			return out
		}
		out := make(map[any]any, len(s.keys))
		for i, k := range s.keys {
			out[k.Value()] = s.mvals[i].Value()
		}
		return out
	case sinkVariant:
		return Variant{Idx: s.varIdx, Name: s.varName, Value: s.varVal.Value()}
	case sinkUnitVariant:
		return Variant{Idx: s.varIdx, Name: s.varName}
	}
	return s.scalar
}

func (s *ValueSink) child() *ValueSink {
	return &ValueSink{Unsupported: s.Unsupported}
}

func (s *ValueSink) set(v any) error {
	s.kind = sinkScalar
	s.scalar = v
	return nil
}

func (s *ValueSink) Default() error { return s.set(nil) }
func (s *ValueSink) Unit() error    { return s.set(nil) }
func (s *ValueSink) Null() error    { return s.set(nil) }

func (s *ValueSink) Bool(v bool) error       { return s.set(v) }
func (s *ValueSink) Int8(v int8) error       { return s.set(v) }
func (s *ValueSink) Int16(v int16) error     { return s.set(v) }
func (s *ValueSink) Int32(v int32) error     { return s.set(v) }
func (s *ValueSink) Int64(v int64) error     { return s.set(v) }
func (s *ValueSink) Uint8(v uint8) error     { return s.set(v) }
func (s *ValueSink) Uint16(v uint16) error   { return s.set(v) }
func (s *ValueSink) Uint32(v uint32) error   { return s.set(v) }
func (s *ValueSink) Uint64(v uint64) error   { return s.set(v) }
func (s *ValueSink) Float32(v float32) error { return s.set(v) }
func (s *ValueSink) Float64(v float64) error { return s.set(v) }
func (s *ValueSink) Str(v string) error      { return s.set(v) }

func (s *ValueSink) Bytes(v []byte) error {
	b := make([]byte, len(v))
	copy(b, v)
	return s.set(b)
}

func (s *ValueSink) SeqStart(int) error {
	s.kind = sinkSeq
	s.elems = s.elems[:0]
	return nil
}

func (s *ValueSink) Element() (events.Receiver, error) {
	c := s.child()
	s.elems = append(s.elems, c)
	return c, nil
}

func (s *ValueSink) SeqEnd() error { return nil }

func (s *ValueSink) TupleStart(int) error {
	s.kind = sinkTuple
	s.elems = s.elems[:0]
	return nil
}

func (s *ValueSink) TupleEnd() error { return nil }

func (s *ValueSink) StructStart() error {
	s.kind = sinkStruct
	s.fields = s.fields[:0]
	s.fvals = s.fvals[:0]
	return nil
}

func (s *ValueSink) Field(name string) (events.Receiver, error) {
	c := s.child()
	s.fields = append(s.fields, name)
	s.fvals = append(s.fvals, c)
	return c, nil
}

func (s *ValueSink) StructEnd() error { return nil }

func (s *ValueSink) MapStart(int) error {
	s.kind = sinkMap
	s.keys = s.keys[:0]
	s.mvals = s.mvals[:0]
	return nil
}

func (s *ValueSink) Key() (events.Receiver, error) {
	c := s.child()
	s.keys = append(s.keys, c)
	return c, nil
}

func (s *ValueSink) Item() (events.Receiver, error) {
	c := s.child()
	s.mvals = append(s.mvals, c)
	return c, nil
}

func (s *ValueSink) MapEnd() error { return nil }

func (s *ValueSink) UnitVariant(idx int, name string) error {
	s.kind = sinkUnitVariant
	s.varIdx = idx
	s.varName = name
	return nil
}

func (s *ValueSink) Variant(idx int, name string) (events.Receiver, error) {
	s.kind = sinkVariant
	s.varIdx = idx
	s.varName = name
	s.varVal = s.child()
	return s.varVal, nil
}
