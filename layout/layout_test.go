package layout

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitsLSBFirst(t *testing.T) {
	buf := make([]byte, BitmapBytes(10))
	SetBit(buf, 0)
	SetBit(buf, 9)

	assert.True(t, Bit(buf, 0))
	assert.False(t, Bit(buf, 1))
	assert.True(t, Bit(buf, 9))
	assert.Equal(t, byte(0b1), buf[0])
	assert.Equal(t, byte(0b10), buf[1])
}

func TestBitmapOffset(t *testing.T) {
	b := Bitmap{Data: []byte{0b100}, Offset: 1}
	assert.False(t, b.Bit(0))
	assert.True(t, b.Bit(1))
}

func TestStrategyParsing(t *testing.T) {
	s, err := ParseStrategy("TupleAsStruct")
	require.NoError(t, err)
	assert.Equal(t, StrategyTupleAsStruct, s)

	_, err = ParseStrategy("Bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown strategy")
}

func TestStrategyOfField(t *testing.T) {
	f := arrow.Field{
		Name:     "x",
		Type:     arrow.FixedWidthTypes.Date64,
		Metadata: WithStrategy(StrategyNaiveStrAsDate64, nil, nil),
	}
	s, err := StrategyOf(f)
	require.NoError(t, err)
	assert.Equal(t, StrategyNaiveStrAsDate64, s)

	s, err = StrategyOf(arrow.Field{Name: "y", Type: arrow.PrimitiveTypes.Int64})
	require.NoError(t, err)
	assert.Equal(t, StrategyNone, s)
}

func TestChildPathEscaping(t *testing.T) {
	assert.Equal(t, "$.a", ChildPath("$", "a"))
	assert.Equal(t, `$.a\.b`, ChildPath("$", "a.b"))
}

func TestArrayViewBorrowsBuffers(t *testing.T) {
	a := Array{
		Field:    arrow.Field{Name: "x", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		Len:      2,
		Validity: []byte{0b10},
		I64:      []int64{0, 7},
	}
	v := a.View()
	assert.Equal(t, 2, v.Len)
	require.NotNil(t, v.Validity)
	assert.True(t, v.IsNull(0))
	assert.False(t, v.IsNull(1))
	assert.Equal(t, []int64{0, 7}, v.I64)
}
