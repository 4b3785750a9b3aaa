package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnotationsInMessage(t *testing.T) {
	err := New(OutOfRange, "value 300 is not representable in Int8")
	annotated := WithDataType(WithField(err, "$.a"), "Int8")

	assert.Contains(t, annotated.Error(), "value 300 is not representable in Int8")
	assert.Contains(t, annotated.Error(), "field=$.a")
	assert.Contains(t, annotated.Error(), "data_type=Int8")
}

func TestInnermostAnnotationWins(t *testing.T) {
	err := WithField(New(Conflict, "boom"), "$.inner")
	err = WithField(err, "$.outer")

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "$.inner", e.Annotations["field"])
}

func TestKindMatching(t *testing.T) {
	err := WithField(New(Exhausted, "Exhausted deserializer"), "$")
	assert.True(t, errors.Is(err, ErrExhausted))
	assert.False(t, errors.Is(err, ErrConflict))
}

func TestWrapKeepsAnnotations(t *testing.T) {
	inner := WithField(New(Shape, "missing field"), "$.a")
	outer := Wrap(inner, Shape, "record failed")
	var e *Error
	require.True(t, errors.As(outer, &e))
	assert.Equal(t, "$.a", e.Annotations["field"])
}
