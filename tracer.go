// Package quiver converts between record streams and Arrow columnar buffers:
// a schema tracer infers an Arrow schema from samples or a Go type, and the
// builder/view trees transcribe records into column buffers and back. It is
// meant for data whose shape is evolving or not strictly defined, where the
// schema is discovered from the data itself.
package quiver

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	omap "github.com/wk8/go-ordered-map/v2"

	"github.com/loicalleyne/quiver/errs"
	"github.com/loicalleyne/quiver/events"
	"github.com/loicalleyne/quiver/layout"
)

type tracerKind int

const (
	traceUnknown tracerKind = iota
	tracePrimitive
	traceList
	traceTuple
	traceStruct
	traceMap
	traceUnion
)

type structMode int

const (
	structModeStruct structMode = iota
	structModeMap
)

// tracer is one node of the schema inference state machine. Every node
// starts Unknown and adopts the shape of its first observation; later
// observations refine it or fail with the node's path.
type tracer struct {
	cfg      *traceConfig
	name     string
	path     string
	kind     tracerKind
	nullable bool

	// primitive
	dt       arrow.DataType
	strategy layout.Strategy

	// list
	item *tracer

	// tuple
	elems    []*tracer
	tuplePos int

	// struct
	fields  *omap.OrderedMap[string, *tracer]
	seen    map[string]bool
	records int
	mode    structMode
	mapKey  string

	// map
	key   *tracer
	value *tracer

	// union
	variants []*tracer
}

func newTracer(name, path string, cfg *traceConfig) *tracer {
	return &tracer{cfg: cfg, name: name, path: path}
}

func (t *tracer) conflict(observed string) error {
	err := errs.New(errs.Conflict, "incompatible observations: %s cannot be unified with %s", t.describe(), observed)
	return errs.WithField(err, t.path)
}

func (t *tracer) describe() string {
	switch t.kind {
	case traceUnknown:
		return "Unknown"
	case tracePrimitive:
		return t.dt.String()
	case traceList:
		return "List"
	case traceTuple:
		return "Tuple"
	case traceStruct:
		return "Struct"
	case traceMap:
		return "Map"
	default:
		return "Union"
	}
}

func (t *tracer) newChild(name string) *tracer {
	return newTracer(name, layout.ChildPath(t.path, name), t.cfg)
}

func (t *tracer) markNullable() { t.nullable = true }

// ensurePrimitive unifies an exact primitive observation.
func (t *tracer) ensurePrimitive(dt arrow.DataType) error {
	switch t.kind {
	case traceUnknown:
		t.kind = tracePrimitive
		t.dt = dt
		return nil
	case tracePrimitive:
		if arrow.TypeEqual(t.dt, dt) {
			return nil
		}
		if t.dt.ID() == arrow.NULL {
			t.dt = dt
			t.nullable = true
			return nil
		}
		if dt.ID() == arrow.NULL {
			t.nullable = true
			return nil
		}
		return t.conflict(dt.String())
	}
	return t.conflict(dt.String())
}

// numeric promotion ranks; signed, unsigned and float families widen
// separately.
func numericRank(id arrow.Type) (family int, rank int, ok bool) {
	switch id {
	case arrow.INT8:
		return 0, 1, true
	case arrow.INT16:
		return 0, 2, true
	case arrow.INT32:
		return 0, 3, true
	case arrow.INT64:
		return 0, 4, true
	case arrow.UINT8:
		return 1, 1, true
	case arrow.UINT16:
		return 1, 2, true
	case arrow.UINT32:
		return 1, 3, true
	case arrow.UINT64:
		return 1, 4, true
	case arrow.FLOAT16:
		return 2, 1, true
	case arrow.FLOAT32:
		return 2, 2, true
	case arrow.FLOAT64:
		return 2, 3, true
	}
	return 0, 0, false
}

func numericType(family, rank int) arrow.DataType {
	switch family {
	case 0:
		return []arrow.DataType{arrow.PrimitiveTypes.Int8, arrow.PrimitiveTypes.Int16,
			arrow.PrimitiveTypes.Int32, arrow.PrimitiveTypes.Int64}[rank-1]
	case 1:
		return []arrow.DataType{arrow.PrimitiveTypes.Uint8, arrow.PrimitiveTypes.Uint16,
			arrow.PrimitiveTypes.Uint32, arrow.PrimitiveTypes.Uint64}[rank-1]
	default:
		return []arrow.DataType{arrow.FixedWidthTypes.Float16, arrow.PrimitiveTypes.Float32,
			arrow.PrimitiveTypes.Float64}[rank-1]
	}
}

// floatFor is the narrowest float able to hold every value of an integer
// width.
func floatFor(rank int) int {
	if rank <= 2 {
		return 2 // Float32 covers 8 and 16 bit integers
	}
	return 3
}

// ensureNumber unifies a numeric observation, widening along the promotion
// lattice.
func (t *tracer) ensureNumber(dt arrow.DataType) error {
	if t.kind == tracePrimitive {
		curFam, curRank, curOK := numericRank(t.dt.ID())
		newFam, newRank, newOK := numericRank(dt.ID())
		if curOK && newOK {
			switch {
			case curFam == newFam:
				if newRank > curRank {
					t.dt = numericType(curFam, newRank)
				}
				return nil
			case curFam == 2 || newFam == 2:
				intRank := curRank
				floatRank := newRank
				if curFam == 2 {
					intRank, floatRank = newRank, curRank
				}
				want := floatFor(intRank)
				if floatRank > want {
					want = floatRank
				}
				t.dt = numericType(2, want)
				return nil
			case t.cfg.coerceNumbers:
				t.dt = arrow.PrimitiveTypes.Int64
				return nil
			}
			return t.conflict(dt.String())
		}
	}
	return t.ensurePrimitive(dt)
}

// ensureUtf8 unifies a string observation, including date-guess strategies.
// A conflicting mix of date strategies across samples degrades to LargeUtf8.
func (t *tracer) ensureUtf8(dt arrow.DataType, strategy layout.Strategy) error {
	switch t.kind {
	case traceUnknown:
		t.kind = tracePrimitive
		t.dt = dt
		t.strategy = strategy
		return nil
	case tracePrimitive:
		switch t.dt.ID() {
		case arrow.NULL:
			t.dt = dt
			t.strategy = strategy
			t.nullable = true
			return nil
		case arrow.LARGE_STRING:
			if t.strategy == layout.StrategyNone {
				return nil
			}
		case arrow.DATE64:
		default:
			return t.conflict(dt.String())
		}
		if arrow.TypeEqual(t.dt, dt) && t.strategy == strategy {
			return nil
		}
		t.dt = arrow.BinaryTypes.LargeString
		t.strategy = layout.StrategyNone
		return nil
	}
	return t.conflict(dt.String())
}

// Scalar observations.

func (t *tracer) Bool(bool) error   { return t.ensurePrimitive(arrow.FixedWidthTypes.Boolean) }
func (t *tracer) Int8(int8) error   { return t.ensureNumber(arrow.PrimitiveTypes.Int8) }
func (t *tracer) Int16(int16) error { return t.ensureNumber(arrow.PrimitiveTypes.Int16) }
func (t *tracer) Int32(int32) error { return t.ensureNumber(arrow.PrimitiveTypes.Int32) }
func (t *tracer) Int64(int64) error { return t.ensureNumber(arrow.PrimitiveTypes.Int64) }
func (t *tracer) Uint8(uint8) error { return t.ensureNumber(arrow.PrimitiveTypes.Uint8) }
func (t *tracer) Uint16(uint16) error {
	return t.ensureNumber(arrow.PrimitiveTypes.Uint16)
}
func (t *tracer) Uint32(uint32) error {
	return t.ensureNumber(arrow.PrimitiveTypes.Uint32)
}
func (t *tracer) Uint64(uint64) error {
	return t.ensureNumber(arrow.PrimitiveTypes.Uint64)
}
func (t *tracer) Float32(float32) error {
	return t.ensureNumber(arrow.PrimitiveTypes.Float32)
}
func (t *tracer) Float64(float64) error {
	return t.ensureNumber(arrow.PrimitiveTypes.Float64)
}
func (t *tracer) Bytes([]byte) error {
	return t.ensurePrimitive(arrow.BinaryTypes.LargeBinary)
}

func (t *tracer) Str(s string) error {
	if t.cfg.guessDates {
		if naiveDatetimeMatcher.MatchString(s) {
			return t.ensureUtf8(arrow.FixedWidthTypes.Date64, layout.StrategyNaiveStrAsDate64)
		}
		if utcDatetimeMatcher.MatchString(s) {
			return t.ensureUtf8(arrow.FixedWidthTypes.Date64, layout.StrategyUtcStrAsDate64)
		}
	}
	return t.ensureUtf8(arrow.BinaryTypes.LargeString, layout.StrategyNone)
}

func (t *tracer) Null() error {
	t.markNullable()
	return nil
}

func (t *tracer) Some() error {
	t.markNullable()
	return nil
}

func (t *tracer) Unit() error { return t.ensurePrimitive(arrow.Null) }

func (t *tracer) Default() error {
	err := errs.New(errs.Unsupported, "default is not supported when tracing")
	return errs.WithField(err, t.path)
}

// Sequence observations.

func (t *tracer) SeqStart(int) error {
	switch t.kind {
	case traceUnknown:
		t.kind = traceList
		t.item = t.newChild("element")
		return nil
	case traceList:
		return nil
	}
	return t.conflict("List")
}

func (t *tracer) SeqEnd() error { return nil }

func (t *tracer) Element() (events.Receiver, error) {
	switch t.kind {
	case traceList:
		return t.item, nil
	case traceTuple:
		if t.tuplePos >= len(t.elems) {
			err := errs.New(errs.Conflict, "tuple arity changed: expected %d elements", len(t.elems))
			return nil, errs.WithField(err, t.path)
		}
		e := t.elems[t.tuplePos]
		t.tuplePos++
		return e, nil
	}
	return nil, t.conflict("sequence element")
}

// Tuple observations.

func (t *tracer) TupleStart(n int) error {
	switch t.kind {
	case traceUnknown:
		t.kind = traceTuple
		for i := 0; i < n; i++ {
			t.elems = append(t.elems, t.newChild(fmt.Sprintf("%d", i)))
		}
		t.tuplePos = 0
		return nil
	case traceTuple:
		if n != len(t.elems) {
			err := errs.New(errs.Conflict, "tuple arity changed: expected %d elements, got %d", len(t.elems), n)
			return errs.WithField(err, t.path)
		}
		t.tuplePos = 0
		return nil
	}
	return t.conflict("Tuple")
}

func (t *tracer) TupleEnd() error {
	if t.kind == traceTuple && t.tuplePos != len(t.elems) {
		err := errs.New(errs.Conflict, "tuple arity changed: expected %d elements, got %d", len(t.elems), t.tuplePos)
		return errs.WithField(err, t.path)
	}
	return nil
}

// Struct observations.

func (t *tracer) ensureStruct(mode structMode) error {
	switch t.kind {
	case traceUnknown:
		t.kind = traceStruct
		t.mode = mode
		t.fields = omap.New[string, *tracer]()
		t.seen = make(map[string]bool)
		return nil
	case traceStruct:
		if t.mode != mode {
			return t.conflict("Struct")
		}
		for k := range t.seen {
			delete(t.seen, k)
		}
		return nil
	}
	return t.conflict("Struct")
}

func (t *tracer) StructStart() error { return t.ensureStruct(structModeStruct) }

func (t *tracer) Field(name string) (events.Receiver, error) {
	if t.kind != traceStruct {
		return nil, t.conflict("Struct")
	}
	child, ok := t.fields.Get(name)
	if !ok {
		child = t.newChild(name)
		// fields first seen after the first sample were absent before
		if t.records > 0 {
			child.nullable = true
		}
		t.fields.Set(name, child)
	}
	t.seen[name] = true
	return child, nil
}

func (t *tracer) StructEnd() error {
	if t.kind != traceStruct {
		return t.conflict("Struct")
	}
	for pair := t.fields.Oldest(); pair != nil; pair = pair.Next() {
		if !t.seen[pair.Key] {
			pair.Value.nullable = true
		}
	}
	t.records++
	return nil
}

// Map observations. With the MapAsStruct option the keys become struct
// fields; otherwise key and value converge independently.

func (t *tracer) MapStart(int) error {
	if t.cfg.mapAsStruct {
		return t.ensureStruct(structModeMap)
	}
	switch t.kind {
	case traceUnknown:
		t.kind = traceMap
		t.key = t.newChild("key")
		t.value = t.newChild("value")
		return nil
	case traceMap:
		return nil
	}
	return t.conflict("Map")
}

func (t *tracer) Key() (events.Receiver, error) {
	switch t.kind {
	case traceMap:
		return t.key, nil
	case traceStruct:
		return &mapKeyReceiver{t: t}, nil
	}
	return nil, t.conflict("Map")
}

func (t *tracer) Item() (events.Receiver, error) {
	switch t.kind {
	case traceMap:
		return t.value, nil
	case traceStruct:
		return t.Field(t.mapKey)
	}
	return nil, t.conflict("Map")
}

func (t *tracer) MapEnd() error {
	if t.kind == traceStruct {
		return t.StructEnd()
	}
	return nil
}

// mapKeyReceiver captures a map key driven as a string so it can become a
// struct field name under the MapAsStruct option.
type mapKeyReceiver struct {
	events.Unsupported
	t *tracer
}

func (r *mapKeyReceiver) Str(s string) error {
	r.t.mapKey = s
	return nil
}

// Union observations.

func (t *tracer) ensureUnion() error {
	switch t.kind {
	case traceUnknown:
		t.kind = traceUnion
		return nil
	case traceUnion:
		return nil
	}
	return t.conflict("Union")
}

func (t *tracer) ensureVariant(idx int, name string) (*tracer, error) {
	if err := t.ensureUnion(); err != nil {
		return nil, err
	}
	for idx >= len(t.variants) {
		t.variants = append(t.variants, nil)
	}
	if v := t.variants[idx]; v != nil {
		if v.name != name {
			err := errs.New(errs.Conflict, "variant %d is named %q, got %q", idx, v.name, name)
			return nil, errs.WithField(err, t.path)
		}
		return v, nil
	}
	v := t.newChild(name)
	t.variants[idx] = v
	return v, nil
}

func (t *tracer) UnitVariant(idx int, name string) error {
	v, err := t.ensureVariant(idx, name)
	if err != nil {
		return err
	}
	return v.ensurePrimitive(arrow.Null)
}

func (t *tracer) Variant(idx int, name string) (events.Receiver, error) {
	return t.ensureVariant(idx, name)
}
