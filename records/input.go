// Package records contains the record sources and sinks: normalization of
// structured inputs, the reflection driver that turns Go values into record
// events, and the sink that materializes Go values from an event stream.
package records

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
	json "github.com/goccy/go-json"
)

var (
	ErrUndefinedInput = errors.New("nil input")
	ErrInvalidInput   = errors.New("invalid input")
)

// decodeJSON decodes raw JSON into out with numbers kept as json.Number so
// integer values stay exact.
func decodeJSON(raw []byte, out any) error {
	d := json.NewDecoder(bytes.NewReader(raw))
	d.UseNumber()
	if err := d.Decode(out); err != nil {
		return fmt.Errorf("%v : %v", ErrInvalidInput, err)
	}
	return nil
}

// InputMap normalizes one structured datum to map[string]any. JSON input in
// string or []byte form is decoded with numbers kept exact; any other Go
// value goes through [MapStructure/v2].
//
// [MapStructure/v2]: github.com/go-viper/mapstructure/v2
func InputMap(a any) (map[string]any, error) {
	var raw []byte
	switch input := a.(type) {
	case nil:
		return nil, ErrUndefinedInput
	case map[string]any:
		return input, nil
	case []byte:
		raw = input
	case string:
		raw = []byte(input)
	default:
		m := map[string]any{}
		if err := mapstructure.Decode(a, &m); err != nil {
			return nil, fmt.Errorf("%v : %v", ErrInvalidInput, err)
		}
		return m, nil
	}
	m := map[string]any{}
	if err := decodeJSON(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// InputSlice normalizes input holding a sequence of records: a JSON array in
// string or []byte form, or any Go slice. Record elements are passed through
// untouched so the event driver sees their native types.
func InputSlice(a any) ([]any, error) {
	var raw []byte
	switch input := a.(type) {
	case nil:
		return nil, ErrUndefinedInput
	case []any:
		return input, nil
	case []byte:
		raw = input
	case string:
		raw = []byte(input)
	default:
		rv := reflect.ValueOf(a)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			s := make([]any, rv.Len())
			for i := range s {
				s[i] = rv.Index(i).Interface()
			}
			return s, nil
		}
		return nil, fmt.Errorf("%v : expected a sequence of records, got %T", ErrInvalidInput, a)
	}
	var s []any
	if err := decodeJSON(raw, &s); err != nil {
		return nil, err
	}
	return s, nil
}
