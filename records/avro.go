package records

import (
	"fmt"

	"github.com/hamba/avro/v2"
)

// AvroReader decodes single-object Avro datums into sample maps that can be
// fed to the schema tracer or the array builders.
type AvroReader struct {
	schema avro.Schema
}

// NewAvroReader parses an Avro schema definition.
func NewAvroReader(schemaJSON string) (*AvroReader, error) {
	schema, err := avro.Parse(schemaJSON)
	if err != nil {
		return nil, fmt.Errorf("%v : %v", ErrInvalidInput, err)
	}
	return &AvroReader{schema: schema}, nil
}

// Read decodes one Avro-encoded datum to map[string]any. An empty datum is
// rejected as invalid input.
func (r *AvroReader) Read(data []byte) (map[string]any, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%v : empty datum", ErrInvalidInput)
	}
	m := map[string]any{}
	if err := avro.Unmarshal(r.schema, data, &m); err != nil {
		return nil, fmt.Errorf("%v : %v", ErrInvalidInput, err)
	}
	return m, nil
}
