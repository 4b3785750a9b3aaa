package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputMap(t *testing.T) {
	m, err := InputMap(`{"a": 1, "b": "x"}`)
	require.NoError(t, err)
	assert.Contains(t, m, "a")
	assert.Contains(t, m, "b")

	type rec struct {
		A int64
		B string
	}
	m, err = InputMap(rec{A: 1, B: "x"})
	require.NoError(t, err)
	assert.Contains(t, m, "A")

	_, err = InputMap(nil)
	assert.ErrorIs(t, err, ErrUndefinedInput)

	_, err = InputMap(`{"a": [}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid input")
}

func TestInputSlice(t *testing.T) {
	s, err := InputSlice(`[1, 2, 3]`)
	require.NoError(t, err)
	assert.Len(t, s, 3)

	s, err = InputSlice([]int64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2)}, s)

	_, err = InputSlice(map[string]any{"a": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected a sequence of records")
}

func TestDriveRoundTripThroughSink(t *testing.T) {
	values := []any{
		int64(42),
		"hello",
		true,
		3.5,
		[]any{int64(1), int64(2)},
		map[string]any{"a": int64(1), "b": "x"},
		Tuple{int64(1), "two"},
		Variant{Idx: 0, Name: "Int", Value: int64(7)},
		Variant{Idx: 1, Name: "None"},
		nil,
	}
	for _, v := range values {
		sink := NewValueSink()
		require.NoError(t, Drive(v, sink))
		assert.Equal(t, v, sink.Value())
	}
}

func TestDriveStructUsesJSONTags(t *testing.T) {
	type rec struct {
		A      int64  `json:"a"`
		B      string `json:"b,omitempty"`
		Hidden string `json:"-"`
		C      bool
	}
	sink := NewValueSink()
	require.NoError(t, Drive(rec{A: 1, B: "x", Hidden: "no", C: true}, sink))
	assert.Equal(t, map[string]any{"a": int64(1), "b": "x", "C": true}, sink.Value())
}

func TestDrivePointerNullability(t *testing.T) {
	var p *int64
	sink := NewValueSink()
	require.NoError(t, Drive(p, sink))
	assert.Nil(t, sink.Value())

	v := int64(9)
	sink = NewValueSink()
	require.NoError(t, Drive(&v, sink))
	assert.Equal(t, int64(9), sink.Value())
}
