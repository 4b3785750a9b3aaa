// Package errs carries the structured errors used throughout quiver. Every
// failing component attaches its field path and data type as annotations;
// enclosing layers wrap without discarding them.
package errs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies an error for programmatic handling.
type Kind int

const (
	// Unsupported marks layouts quiver cannot implement, e.g. null list
	// rows covering non-empty child segments.
	Unsupported Kind = iota
	// Conflict marks incompatible observations seen by the tracer.
	Conflict
	// OutOfRange marks values not representable in the target type.
	OutOfRange
	// Shape marks wrong child counts, missing fields or arity mismatches.
	Shape
	// Exhausted marks reads past the end of a deserializer.
	Exhausted
	// Invalid marks unknown strategies, timezones or type parameters.
	Invalid
	// Custom marks user-produced errors.
	Custom
)

func (k Kind) String() string {
	switch k {
	case Unsupported:
		return "Unsupported"
	case Conflict:
		return "Conflict"
	case OutOfRange:
		return "OutOfRange"
	case Shape:
		return "Shape"
	case Exhausted:
		return "Exhausted"
	case Invalid:
		return "Invalid"
	default:
		return "Custom"
	}
}

// Error is the error value returned by quiver operations.
type Error struct {
	Kind        Kind
	Msg         string
	Annotations map[string]string
	cause       error
}

func (e *Error) Error() string {
	if len(e.Annotations) == 0 {
		return e.Msg
	}
	keys := make([]string, 0, len(e.Annotations))
	for k := range e.Annotations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	sb.WriteString(e.Msg)
	sb.WriteString(":")
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, " %s=%s", k, e.Annotations[k])
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.cause }

// Is reports kind equality so callers can match with errors.Is against the
// exported sentinel values below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Msg == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is matching by kind.
var (
	ErrUnsupported = &Error{Kind: Unsupported}
	ErrConflict    = &Error{Kind: Conflict}
	ErrOutOfRange  = &Error{Kind: OutOfRange}
	ErrShape       = &Error{Kind: Shape}
	ErrExhausted   = &Error{Kind: Exhausted}
	ErrInvalid     = &Error{Kind: Invalid}
	ErrCustom      = &Error{Kind: Custom}
)

// New creates an Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an existing error, keeping its
// annotations visible through Unwrap.
func Wrap(err error, kind Kind, format string, args ...any) *Error {
	e := &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), cause: err}
	var inner *Error
	if errors.As(err, &inner) {
		e.Annotations = cloneAnnotations(inner.Annotations)
	}
	return e
}

// Annotate adds a key/value annotation to err. Non-quiver errors are wrapped
// as Custom first. Existing annotations are kept; the innermost value for a
// key wins, matching the rule that the failing component annotates first.
func Annotate(err error, key, value string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if !errors.As(err, &e) {
		e = &Error{Kind: Custom, Msg: err.Error(), cause: err}
	} else {
		e = &Error{Kind: e.Kind, Msg: e.Msg, Annotations: cloneAnnotations(e.Annotations), cause: err}
	}
	if e.Annotations == nil {
		e.Annotations = make(map[string]string, 2)
	}
	if _, ok := e.Annotations[key]; !ok {
		e.Annotations[key] = value
	}
	return e
}

// WithField annotates err with the field path of the failing node.
func WithField(err error, path string) error {
	return Annotate(err, "field", path)
}

// WithDataType annotates err with the data type of the failing node.
func WithDataType(err error, dataType string) error {
	return Annotate(err, "data_type", dataType)
}

func cloneAnnotations(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
