package builder

import (
	"github.com/loicalleyne/quiver/errs"
)

// bitBuffer is an append-only LSB-first bit vector used for validity bitmaps
// and boolean values. Storage is reserved 64 bits at a time.
type bitBuffer struct {
	buf []byte
	len int
	cap int
}

func (b *bitBuffer) push(v bool) {
	for b.len >= b.cap {
		for i := 0; i < 8; i++ {
			b.buf = append(b.buf, 0)
			b.cap += 8
		}
	}
	if v {
		b.buf[b.len/8] |= 1 << (b.len % 8)
	}
	b.len++
}

// bytes hands over the packed buffer trimmed to the pushed length.
func (b *bitBuffer) bytes() []byte {
	n := (b.len + 7) / 8
	return b.buf[:n]
}

// pushValidity records one slot in an optional validity buffer. Pushing a
// null slot into a non-nullable array is an error.
func pushValidity(validity *bitBuffer, valid bool, path string) error {
	if validity != nil {
		validity.push(valid)
		return nil
	}
	if valid {
		return nil
	}
	return errs.WithField(errs.New(errs.Unsupported, "cannot push null for non-nullable array"), path)
}

// pushValidityDefault records a default (null) slot without failing on
// non-nullable arrays.
func pushValidityDefault(validity *bitBuffer) {
	if validity != nil {
		validity.push(false)
	}
}

// offsetBuffer accumulates the offsets of a variable-size list or binary
// array. The running element count is materialized lazily: elements increment
// currentItems and the close of each row pushes it.
type offsetBuffer[O int32 | int64] struct {
	offsets      []O
	currentItems O
}

func newOffsetBuffer[O int32 | int64]() *offsetBuffer[O] {
	return &offsetBuffer[O]{offsets: []O{0}}
}

// rows is the number of closed rows (one less than the offset count).
func (o *offsetBuffer[O]) rows() int { return len(o.offsets) - 1 }

// items is the total number of child elements recorded so far.
func (o *offsetBuffer[O]) items() O { return o.currentItems }

func (o *offsetBuffer[O]) inc() { o.currentItems++ }

// closeRow pushes the accumulated element count, ending the current row.
func (o *offsetBuffer[O]) closeRow() { o.offsets = append(o.offsets, o.currentItems) }
