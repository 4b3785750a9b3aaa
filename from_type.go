package quiver

import (
	"reflect"
	"strconv"
	"time"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/loicalleyne/quiver/errs"
	"github.com/loicalleyne/quiver/events"
	"github.com/loicalleyne/quiver/layout"
	"github.com/loicalleyne/quiver/records"
)

// FieldFromType traces an Arrow field from the static structure of T: every
// struct field, container element and map entry is visited once, pointers
// mark nullability. Self-referential types are cut off by the tracing
// budget.
func FieldFromType[T any](opts ...Option) (arrow.Field, error) {
	cfg := newTraceConfig(opts...)
	root := newTracer("$", "$", cfg)
	t := reflect.TypeOf((*T)(nil)).Elem()
	if err := walkType(t, root, cfg.fromTypeBudget, "$"); err != nil {
		return arrow.Field{}, err
	}
	return root.finish()
}

// SchemaFromType traces a record schema from the static structure of T,
// which must be a struct or struct pointer type.
func SchemaFromType[T any](opts ...Option) (*arrow.Schema, error) {
	root, err := FieldFromType[T](opts...)
	if err != nil {
		return nil, err
	}
	return schemaFromRoot(root)
}

var timeType = reflect.TypeOf(time.Time{})

func walkType(t reflect.Type, r events.Receiver, budget int, path string) error {
	if budget <= 0 {
		err := errs.New(errs.Shape, "Too deeply nested type detected")
		return errs.WithField(err, path)
	}
	if t == timeType {
		return r.Str("")
	}
	switch t.Kind() {
	case reflect.Pointer:
		if err := r.Some(); err != nil {
			return err
		}
		return walkType(t.Elem(), r, budget, path)
	case reflect.Bool:
		return r.Bool(false)
	case reflect.Int, reflect.Int64:
		return r.Int64(0)
	case reflect.Int8:
		return r.Int8(0)
	case reflect.Int16:
		return r.Int16(0)
	case reflect.Int32:
		return r.Int32(0)
	case reflect.Uint, reflect.Uint64:
		return r.Uint64(0)
	case reflect.Uint8:
		return r.Uint8(0)
	case reflect.Uint16:
		return r.Uint16(0)
	case reflect.Uint32:
		return r.Uint32(0)
	case reflect.Float32:
		return r.Float32(0)
	case reflect.Float64:
		return r.Float64(0)
	case reflect.String:
		return r.Str("")
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return r.Bytes(nil)
		}
		if err := r.SeqStart(1); err != nil {
			return err
		}
		er, err := r.Element()
		if err != nil {
			return err
		}
		if err := walkType(t.Elem(), er, budget-1, layout.ChildPath(path, "element")); err != nil {
			return err
		}
		return r.SeqEnd()
	case reflect.Array:
		n := t.Len()
		if err := r.TupleStart(n); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			er, err := r.Element()
			if err != nil {
				return err
			}
			if err := walkType(t.Elem(), er, budget-1, layout.ChildPath(path, strconv.Itoa(i))); err != nil {
				return err
			}
		}
		return r.TupleEnd()
	case reflect.Struct:
		if err := r.StructStart(); err != nil {
			return err
		}
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			name, skip := records.FieldName(f)
			if skip {
				continue
			}
			fr, err := r.Field(name)
			if err != nil {
				return err
			}
			if err := walkType(f.Type, fr, budget-1, layout.ChildPath(path, name)); err != nil {
				return err
			}
		}
		return r.StructEnd()
	case reflect.Map:
		if err := r.MapStart(1); err != nil {
			return err
		}
		kr, err := r.Key()
		if err != nil {
			return err
		}
		if err := walkType(t.Key(), kr, budget-1, layout.ChildPath(path, "key")); err != nil {
			return err
		}
		vr, err := r.Item()
		if err != nil {
			return err
		}
		if err := walkType(t.Elem(), vr, budget-1, layout.ChildPath(path, "value")); err != nil {
			return err
		}
		return r.MapEnd()
	}
	err := errs.New(errs.Unsupported, "cannot trace values of type %s from their type alone", t)
	return errs.WithField(err, path)
}
