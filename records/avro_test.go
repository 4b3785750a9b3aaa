package records

import (
	"testing"

	"github.com/hamba/avro/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const avroTestSchema = `{
	"type": "record",
	"name": "sample",
	"fields": [
		{"name": "a", "type": "long"},
		{"name": "b", "type": "string"}
	]
}`

func TestAvroReaderDecodesDatum(t *testing.T) {
	type sample struct {
		A int64  `avro:"a"`
		B string `avro:"b"`
	}
	schema, err := avro.Parse(avroTestSchema)
	require.NoError(t, err)
	data, err := avro.Marshal(schema, sample{A: 42, B: "x"})
	require.NoError(t, err)

	r, err := NewAvroReader(avroTestSchema)
	require.NoError(t, err)
	m, err := r.Read(data)
	require.NoError(t, err)

	assert.Equal(t, int64(42), m["a"])
	assert.Equal(t, "x", m["b"])
}

func TestAvroReaderInvalidSchema(t *testing.T) {
	_, err := NewAvroReader(`{"type": "bogus"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid input")
}

func TestAvroReaderInvalidDatum(t *testing.T) {
	r, err := NewAvroReader(avroTestSchema)
	require.NoError(t, err)
	_, err = r.Read([]byte{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid input")
}
