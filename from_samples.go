package quiver

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/loicalleyne/quiver/errs"
	"github.com/loicalleyne/quiver/records"
)

// FieldFromSamples traces an Arrow field from a sequence of sample values.
// The samples must form a sequence (a Go slice or a JSON array); each element
// drives the tracer once. The returned root field is named "$".
func FieldFromSamples(samples any, opts ...Option) (arrow.Field, error) {
	cfg := newTraceConfig(opts...)
	elems, err := records.InputSlice(samples)
	if err != nil {
		return arrow.Field{}, errs.Wrap(err, errs.Invalid,
			"cannot trace non-sequences from samples, consider wrapping the argument in a slice")
	}
	root := newTracer("$", "$", cfg)
	for _, sample := range elems {
		if err := records.Drive(sample, root); err != nil {
			return arrow.Field{}, err
		}
	}
	return root.finish()
}

// SchemaFromSamples traces a record schema from a sequence of samples. The
// samples must trace to a struct; its fields become the schema.
func SchemaFromSamples(samples any, opts ...Option) (*arrow.Schema, error) {
	root, err := FieldFromSamples(samples, opts...)
	if err != nil {
		return nil, err
	}
	return schemaFromRoot(root)
}

func schemaFromRoot(root arrow.Field) (*arrow.Schema, error) {
	st, ok := root.Type.(*arrow.StructType)
	if !ok {
		return nil, errs.New(errs.Shape,
			"records must trace to a struct to form a schema, got %s", root.Type)
	}
	return arrow.NewSchema(st.Fields(), nil), nil
}
