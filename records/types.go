package records

// Tuple marks a heterogeneous fixed-arity value. Go has no native tuples;
// driving a Tuple emits tuple events, which trace to a struct with positional
// field names and the TupleAsStruct strategy.
type Tuple []any

// Variant marks a sum-type value. Go has no native sum types; driving a
// Variant emits variant events for the dense union protocol. A nil Value is a
// unit variant.
type Variant struct {
	Idx   int
	Name  string
	Value any
}
