package quiver

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldFromType(t *testing.T) {
	type inner struct {
		C []float32 `json:"c"`
	}
	type rec struct {
		A uint32  `json:"a"`
		B *string `json:"b"`
		I inner   `json:"i"`
	}

	f, err := FieldFromType[rec]()
	require.NoError(t, err)

	st, ok := f.Type.(*arrow.StructType)
	require.True(t, ok)
	a, _ := st.FieldByName("a")
	assert.Equal(t, arrow.PrimitiveTypes.Uint32, a.Type)
	b, _ := st.FieldByName("b")
	assert.Equal(t, arrow.BinaryTypes.LargeString, b.Type)
	assert.True(t, b.Nullable, "pointer fields must trace nullable")
	i, _ := st.FieldByName("i")
	it, ok := i.Type.(*arrow.StructType)
	require.True(t, ok)
	c, _ := it.FieldByName("c")
	_, isList := c.Type.(*arrow.LargeListType)
	assert.True(t, isList)
}

func TestFieldFromTypeRecursionBudget(t *testing.T) {
	type Tree struct {
		Left  *Tree `json:"left"`
		Right *Tree `json:"right"`
	}

	_, err := FieldFromType[Tree]()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Too deeply nested type detected")
	assert.Contains(t, err.Error(), "$.left.left.left")
}

func TestSchemaFromType(t *testing.T) {
	type rec struct {
		A int64 `json:"a"`
		B bool  `json:"b"`
	}
	schema, err := SchemaFromType[rec]()
	require.NoError(t, err)
	require.Equal(t, 2, schema.NumFields())
	assert.Equal(t, arrow.PrimitiveTypes.Int64, schema.Field(0).Type)
	assert.Equal(t, arrow.FixedWidthTypes.Boolean, schema.Field(1).Type)
}
