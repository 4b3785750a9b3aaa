package records

import (
	"reflect"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/loicalleyne/quiver/errs"
	"github.com/loicalleyne/quiver/events"
)

// Drive walks a Go value and emits its record events to r. It is the event
// source behind both schema tracing from samples and array building.
//
// Concrete types are handled directly; everything else goes through
// reflection: pointers become nullable occurrences, structs and string-keyed
// maps emit struct events (map keys sorted so schemas stay deterministic),
// slices emit sequences, arrays and Tuple emit tuples, other maps emit map
// events and Variant emits union events.
func Drive(v any, r events.Receiver) error {
	switch t := v.(type) {
	case nil:
		return r.Null()
	case bool:
		return r.Bool(t)
	case int:
		return r.Int64(int64(t))
	case int8:
		return r.Int8(t)
	case int16:
		return r.Int16(t)
	case int32:
		return r.Int32(t)
	case int64:
		return r.Int64(t)
	case uint:
		return r.Uint64(uint64(t))
	case uint8:
		return r.Uint8(t)
	case uint16:
		return r.Uint16(t)
	case uint32:
		return r.Uint32(t)
	case uint64:
		return r.Uint64(t)
	case float32:
		return r.Float32(t)
	case float64:
		return r.Float64(t)
	case string:
		return r.Str(t)
	case []byte:
		return r.Bytes(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return r.Int64(i)
		}
		f, err := t.Float64()
		if err != nil {
			return errs.Wrap(err, errs.Invalid, "invalid number %q", t.String())
		}
		return r.Float64(f)
	case time.Time:
		return r.Str(t.UTC().Format("2006-01-02T15:04:05.999999") + "Z")
	case Tuple:
		if err := r.TupleStart(len(t)); err != nil {
			return err
		}
		for _, e := range t {
			er, err := r.Element()
			if err != nil {
				return err
			}
			if err := Drive(e, er); err != nil {
				return err
			}
		}
		return r.TupleEnd()
	case Variant:
		if t.Value == nil {
			return r.UnitVariant(t.Idx, t.Name)
		}
		vr, err := r.Variant(t.Idx, t.Name)
		if err != nil {
			return err
		}
		return Drive(t.Value, vr)
	case map[string]any:
		return driveStringMap(t, r)
	}
	return driveReflect(reflect.ValueOf(v), r)
}

func driveStringMap(m map[string]any, r events.Receiver) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if err := r.StructStart(); err != nil {
		return err
	}
	for _, k := range keys {
		fr, err := r.Field(k)
		if err != nil {
			return err
		}
		if err := Drive(m[k], fr); err != nil {
			return err
		}
	}
	return r.StructEnd()
}

func driveReflect(rv reflect.Value, r events.Receiver) error {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return r.Null()
		}
		if rv.Kind() == reflect.Pointer {
			if err := r.Some(); err != nil {
				return err
			}
		}
		return Drive(rv.Elem().Interface(), r)
	case reflect.Bool:
		return r.Bool(rv.Bool())
	case reflect.Int, reflect.Int64:
		return r.Int64(rv.Int())
	case reflect.Int8:
		return r.Int8(int8(rv.Int()))
	case reflect.Int16:
		return r.Int16(int16(rv.Int()))
	case reflect.Int32:
		return r.Int32(int32(rv.Int()))
	case reflect.Uint, reflect.Uint64:
		return r.Uint64(rv.Uint())
	case reflect.Uint8:
		return r.Uint8(uint8(rv.Uint()))
	case reflect.Uint16:
		return r.Uint16(uint16(rv.Uint()))
	case reflect.Uint32:
		return r.Uint32(uint32(rv.Uint()))
	case reflect.Float32:
		return r.Float32(float32(rv.Float()))
	case reflect.Float64:
		return r.Float64(rv.Float())
	case reflect.String:
		return r.Str(rv.String())
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return r.Bytes(rv.Bytes())
		}
		if err := r.SeqStart(rv.Len()); err != nil {
			return err
		}
		for i := 0; i < rv.Len(); i++ {
			er, err := r.Element()
			if err != nil {
				return err
			}
			if err := Drive(rv.Index(i).Interface(), er); err != nil {
				return err
			}
		}
		return r.SeqEnd()
	case reflect.Array:
		if err := r.TupleStart(rv.Len()); err != nil {
			return err
		}
		for i := 0; i < rv.Len(); i++ {
			er, err := r.Element()
			if err != nil {
				return err
			}
			if err := Drive(rv.Index(i).Interface(), er); err != nil {
				return err
			}
		}
		return r.TupleEnd()
	case reflect.Struct:
		if err := r.StructStart(); err != nil {
			return err
		}
		rt := rv.Type()
		for i := 0; i < rt.NumField(); i++ {
			f := rt.Field(i)
			name, skip := FieldName(f)
			if skip {
				continue
			}
			fr, err := r.Field(name)
			if err != nil {
				return err
			}
			if err := Drive(rv.Field(i).Interface(), fr); err != nil {
				return err
			}
		}
		return r.StructEnd()
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			m := make(map[string]any, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				m[iter.Key().String()] = iter.Value().Interface()
			}
			return driveStringMap(m, r)
		}
		if err := r.MapStart(rv.Len()); err != nil {
			return err
		}
		iter := rv.MapRange()
		for iter.Next() {
			kr, err := r.Key()
			if err != nil {
				return err
			}
			if err := Drive(iter.Key().Interface(), kr); err != nil {
				return err
			}
			vr, err := r.Item()
			if err != nil {
				return err
			}
			if err := Drive(iter.Value().Interface(), vr); err != nil {
				return err
			}
		}
		return r.MapEnd()
	}
	return errs.New(errs.Unsupported, "cannot drive values of type %s", rv.Type())
}

// FieldName resolves the record field name of a struct field, honoring json
// tags the way the decoding stack does. Unexported and json:"-" fields are
// skipped.
func FieldName(f reflect.StructField) (name string, skip bool) {
	if !f.IsExported() {
		return "", true
	}
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", true
	}
	if tag != "" {
		tag, _, _ = strings.Cut(tag, ",")
		if tag != "" {
			return tag, false
		}
	}
	return f.Name, false
}
