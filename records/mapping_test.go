package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMappingAppliesToRecord(t *testing.T) {
	m, err := NewMapping(`
root.total = this.a + this.b
root.name = this.name.uppercase()
`)
	require.NoError(t, err)

	out, err := m.Apply(map[string]any{"a": int64(1), "b": int64(2), "name": "alice"})
	require.NoError(t, err)

	rec, ok := out.(map[string]any)
	require.True(t, ok, "mapped record should be a map, got %T", out)
	assert.Equal(t, int64(3), rec["total"])
	assert.Equal(t, "ALICE", rec["name"])
}

func TestMappingDroppedRecord(t *testing.T) {
	m, err := NewMapping(`root = deleted()`)
	require.NoError(t, err)

	out, err := m.Apply(map[string]any{"a": int64(1)})
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestMappingInvalid(t *testing.T) {
	_, err := NewMapping(`root =`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid input")
}
