// Package layout defines the columnar buffer structures produced by the
// builders and consumed by the view deserializers. Array owns its buffers;
// ArrayView borrows externally owned ones. Both match the Arrow columnar
// format: LSB-first validity bitmaps, monotonic offset buffers, dense union
// type id / offset pairs and dictionary index/value pairs.
package layout

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/apache/arrow-go/v18/arrow/float16"
)

// Array is an owning Arrow array. Only the buffers matching Field.Type are
// populated:
//
//	Boolean                  Bits
//	integer/float/temporal   the matching typed slice (I8..U64, F16, F32, F64)
//	Decimal128               D128
//	Utf8/Binary              Data + Offsets32
//	LargeUtf8/LargeBinary    Data + Offsets64
//	FixedSizeBinary          Data
//	List/Map                 Offsets32 + Children[0]
//	LargeList                Offsets64 + Children[0]
//	FixedSizeList            Children[0]
//	Struct                   Children (one per field)
//	DenseUnion               TypeIDs + Offsets32 + Children (one per variant)
//	Dictionary               index buffer in the typed slices + Children[0] (values)
type Array struct {
	Field    arrow.Field
	Len      int
	Validity []byte

	Bits []byte
	Data []byte

	I8  []int8
	I16 []int16
	I32 []int32
	I64 []int64
	U8  []uint8
	U16 []uint16
	U32 []uint32
	U64 []uint64
	F16 []float16.Num
	F32 []float32
	F64 []float64

	D128 []decimal128.Num

	Offsets32 []int32
	Offsets64 []int64
	TypeIDs   []int8

	Children []Array
}

// IsNull reports whether row i is null.
func (a *Array) IsNull(i int) bool {
	return a.Validity != nil && !Bit(a.Validity, i)
}

// View borrows the array's buffers as an ArrayView.
func (a *Array) View() ArrayView {
	v := ArrayView{
		Field:     a.Field,
		Len:       a.Len,
		Data:      a.Data,
		I8:        a.I8,
		I16:       a.I16,
		I32:       a.I32,
		I64:       a.I64,
		U8:        a.U8,
		U16:       a.U16,
		U32:       a.U32,
		U64:       a.U64,
		F16:       a.F16,
		F32:       a.F32,
		F64:       a.F64,
		D128:      a.D128,
		Offsets32: a.Offsets32,
		Offsets64: a.Offsets64,
		TypeIDs:   a.TypeIDs,
	}
	if a.Validity != nil {
		v.Validity = &Bitmap{Data: a.Validity}
	}
	if a.Bits != nil {
		v.Bits = &Bitmap{Data: a.Bits}
	}
	for i := range a.Children {
		v.Children = append(v.Children, a.Children[i].View())
	}
	return v
}

// ArrayView is a borrowed, zero-copy reference into externally owned buffers.
// Buffer population follows the same rules as Array; bit-packed buffers carry
// an explicit bit offset so sliced arrays can be referenced.
type ArrayView struct {
	Field    arrow.Field
	Len      int
	Validity *Bitmap

	Bits *Bitmap
	Data []byte

	I8  []int8
	I16 []int16
	I32 []int32
	I64 []int64
	U8  []uint8
	U16 []uint16
	U32 []uint32
	U64 []uint64
	F16 []float16.Num
	F32 []float32
	F64 []float64

	D128 []decimal128.Num

	Offsets32 []int32
	Offsets64 []int64
	TypeIDs   []int8

	Children []ArrayView
}

// IsNull reports whether row i is null.
func (v *ArrayView) IsNull(i int) bool {
	return v.Validity != nil && !v.Validity.Bit(i)
}
