package view

import (
	"github.com/loicalleyne/quiver/errs"
	"github.com/loicalleyne/quiver/layout"
)

// bufferIterator walks a typed value buffer alongside its validity bitmap.
// The cursor advances on every read, null or not; reading past the buffer is
// an Exhausted error.
type bufferIterator[T any] struct {
	buf      []T
	validity *layout.Bitmap
	next     int
	path     string
}

func (it *bufferIterator[T]) exhausted() error {
	return errs.WithField(errs.New(errs.Exhausted, "Exhausted deserializer"), it.path)
}

// nextValue returns the value at the cursor and whether it is valid, then
// advances.
func (it *bufferIterator[T]) nextValue() (T, bool, error) {
	var zero T
	if it.next >= len(it.buf) {
		return zero, false, it.exhausted()
	}
	i := it.next
	it.next++
	if it.validity != nil && !it.validity.Bit(i) {
		return zero, false, nil
	}
	return it.buf[i], true, nil
}

// peekNext reports whether the next slot is non-null without advancing.
func (it *bufferIterator[T]) peekNext() (bool, error) {
	if it.next >= len(it.buf) {
		return false, it.exhausted()
	}
	if it.validity != nil && !it.validity.Bit(it.next) {
		return false, nil
	}
	return true, nil
}

// nextRequired fails if the buffer is exhausted or the slot is null.
func (it *bufferIterator[T]) nextRequired() (T, error) {
	v, ok, err := it.nextValue()
	if err != nil {
		return v, err
	}
	if !ok {
		return v, it.exhausted()
	}
	return v, nil
}

// consumeNext advances the cursor without reading.
func (it *bufferIterator[T]) consumeNext() error {
	if it.next >= len(it.buf) {
		return it.exhausted()
	}
	it.next++
	return nil
}

// checkSupportedListLayout verifies that a list's validity and offsets can be
// deserialized. The Arrow format allows a null row to cover a non-empty child
// segment; that layout is rejected here, so null rows always have
// offsets[i+1] == offsets[i].
func checkSupportedListLayout[O int32 | int64](validity *layout.Bitmap, offsets []O, path string) error {
	if len(offsets) == 0 {
		return errs.WithField(errs.New(errs.Unsupported, "Unsupported: list offsets must be non empty"), path)
	}
	if offsets[0] < 0 {
		return errs.WithField(errs.New(errs.Unsupported, "Unsupported: negative list offset"), path)
	}
	for i := 0; i+1 < len(offsets); i++ {
		curr, next := offsets[i], offsets[i+1]
		if next < curr {
			return errs.WithField(errs.New(errs.Unsupported,
				"Unsupported: list offsets are assumed to be monotonically increasing"), path)
		}
		if validity != nil && !validity.Bit(i) && next != curr {
			return errs.WithField(errs.New(errs.Unsupported,
				"Unsupported: lists with data in null values are currently not supported in deserialization"), path)
		}
	}
	return nil
}

// validityCovers checks that a validity bitmap holds at least n bits.
func validityCovers(validity *layout.Bitmap, n int, path string) error {
	if validity == nil {
		return nil
	}
	if len(validity.Data)*8-validity.Offset < n {
		return errs.WithField(errs.New(errs.Shape,
			"validity bitmap holds fewer than %d bits", n), path)
	}
	return nil
}
