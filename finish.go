package quiver

import (
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/tidwall/sjson"

	"github.com/loicalleyne/quiver/errs"
	"github.com/loicalleyne/quiver/layout"
)

// finish consumes the tracer tree and materializes the root field: nullable
// flags are closed, strategies applied, string dictionary encoding promoted
// and overwrites patched in by path.
func (t *tracer) finish() (arrow.Field, error) {
	f, err := t.toField()
	if err != nil {
		return arrow.Field{}, err
	}
	if len(t.cfg.overwrites) > 0 {
		f, err = applyOverwrites(f, t.cfg.overwrites)
		if err != nil {
			return arrow.Field{}, err
		}
	}
	return f, nil
}

func (t *tracer) toField() (arrow.Field, error) {
	switch t.kind {
	case traceUnknown:
		if !t.cfg.allowNullFields {
			err := errs.New(errs.Conflict, "could not determine type of unpopulated field")
			return arrow.Field{}, errs.WithField(err, t.path)
		}
		return arrow.Field{Name: t.name, Type: arrow.Null, Nullable: true}, nil
	case tracePrimitive:
		dt := t.dt
		strategy := t.strategy
		if dt.ID() == arrow.NULL {
			if !t.cfg.allowNullFields {
				err := errs.New(errs.Conflict, "could not determine type of unpopulated field")
				return arrow.Field{}, errs.WithField(err, t.path)
			}
			return arrow.Field{Name: t.name, Type: arrow.Null, Nullable: true}, nil
		}
		if t.cfg.stringDictionaryEncoding && dt.ID() == arrow.LARGE_STRING && strategy == layout.StrategyNone {
			dt = &arrow.DictionaryType{
				IndexType: arrow.PrimitiveTypes.Uint32,
				ValueType: arrow.BinaryTypes.LargeString,
			}
		}
		return arrow.Field{
			Name:     t.name,
			Type:     dt,
			Nullable: t.nullable,
			Metadata: layout.WithStrategy(strategy, nil, nil),
		}, nil
	case traceList:
		item, err := t.item.toField()
		if err != nil {
			return arrow.Field{}, err
		}
		return arrow.Field{
			Name:     t.name,
			Type:     arrow.LargeListOfField(item),
			Nullable: t.nullable,
		}, nil
	case traceTuple:
		var children []arrow.Field
		for _, e := range t.elems {
			f, err := e.toField()
			if err != nil {
				return arrow.Field{}, err
			}
			children = append(children, f)
		}
		return arrow.Field{
			Name:     t.name,
			Type:     arrow.StructOf(children...),
			Nullable: t.nullable,
			Metadata: layout.WithStrategy(layout.StrategyTupleAsStruct, nil, nil),
		}, nil
	case traceStruct:
		var children []arrow.Field
		for pair := t.fields.Oldest(); pair != nil; pair = pair.Next() {
			f, err := pair.Value.toField()
			if err != nil {
				return arrow.Field{}, err
			}
			children = append(children, f)
		}
		strategy := layout.StrategyNone
		if t.mode == structModeMap {
			strategy = layout.StrategyMapAsStruct
		}
		return arrow.Field{
			Name:     t.name,
			Type:     arrow.StructOf(children...),
			Nullable: t.nullable,
			Metadata: layout.WithStrategy(strategy, nil, nil),
		}, nil
	case traceMap:
		key, err := t.key.toField()
		if err != nil {
			return arrow.Field{}, err
		}
		value, err := t.value.toField()
		if err != nil {
			return arrow.Field{}, err
		}
		mt := arrow.MapOf(key.Type, value.Type)
		mt.SetItemNullable(value.Nullable)
		return arrow.Field{Name: t.name, Type: mt, Nullable: t.nullable}, nil
	case traceUnion:
		return t.unionToField()
	}
	err := errs.New(errs.Conflict, "could not determine type of unpopulated field")
	return arrow.Field{}, errs.WithField(err, t.path)
}

func (t *tracer) unionToField() (arrow.Field, error) {
	allUnit := true
	allSingleFieldStructs := true
	var children []arrow.Field
	for i, v := range t.variants {
		if v == nil {
			err := errs.New(errs.Shape, "union variant %d was never observed, type ids must be consecutive starting at 0", i)
			return arrow.Field{}, errs.WithField(err, t.path)
		}
		f, err := v.toField()
		if err != nil {
			return arrow.Field{}, err
		}
		if !(v.kind == tracePrimitive && v.dt.ID() == arrow.NULL) && v.kind != traceUnknown {
			allUnit = false
		}
		st, isStruct := f.Type.(*arrow.StructType)
		if !isStruct || st.NumFields() != 1 {
			allSingleFieldStructs = false
		}
		children = append(children, f)
	}
	if allUnit && t.cfg.enumsWithoutDataAsStrings {
		dt := arrow.DataType(arrow.BinaryTypes.LargeString)
		if t.cfg.stringDictionaryEncoding {
			dt = &arrow.DictionaryType{
				IndexType: arrow.PrimitiveTypes.Uint32,
				ValueType: arrow.BinaryTypes.LargeString,
			}
		}
		return arrow.Field{Name: t.name, Type: dt, Nullable: t.nullable}, nil
	}
	allSingleFieldStructs := true
	var children []arrow.Field
	for _, v := range t.variants {
		f, err := v.toField()
		if err != nil {
			return arrow.Field{}, err
		}
		st, isStruct := f.Type.(*arrow.StructType)
		if !isStruct || st.NumFields() != 1 {
			allSingleFieldStructs = false
		}
		children = append(children, f)
	}
	codes := make([]arrow.UnionTypeCode, len(children))
	for i := range codes {
		codes[i] = arrow.UnionTypeCode(i)
	}
	strategy := layout.StrategyNone
	if allSingleFieldStructs && len(children) > 0 {
		strategy = layout.StrategyEnumsWithNamedFieldsAsMaps
	}
	return arrow.Field{
		Name:     t.name,
		Type:     arrow.DenseUnionOf(children, codes),
		Nullable: t.nullable,
		Metadata: layout.WithStrategy(strategy, nil, nil),
	}, nil
}

// applyOverwrites patches traced fields by dotpath: the root field is
// serialized to its JSON form, each override is spliced in with sjson at the
// numeric children path, and the document is parsed back.
func applyOverwrites(root arrow.Field, overwrites map[string]string) (arrow.Field, error) {
	doc, err := MarshalField(root)
	if err != nil {
		return arrow.Field{}, err
	}
	for path, fieldJSON := range overwrites {
		jsonPath, err := resolveOverwritePath(root, path)
		if err != nil {
			return arrow.Field{}, err
		}
		if jsonPath == "" {
			doc = []byte(fieldJSON)
			continue
		}
		doc, err = sjson.SetRawBytes(doc, jsonPath, []byte(fieldJSON))
		if err != nil {
			return arrow.Field{}, errs.Wrap(err, errs.Invalid, "cannot apply overwrite at %s", path)
		}
	}
	return UnmarshalField(doc)
}

// resolveOverwritePath turns a dotpath like "$.a.element" into the numeric
// sjson path of that node in the serialized root field.
func resolveOverwritePath(root arrow.Field, path string) (string, error) {
	trimmed := strings.TrimPrefix(path, "$")
	trimmed = strings.TrimPrefix(trimmed, ".")
	if trimmed == "" {
		return "", nil
	}
	var parts []string
	cur := root
	for _, seg := range strings.Split(trimmed, ".") {
		idx := -1
		for i, child := range childFields(cur.Type) {
			if child.Name == seg {
				idx = i
				cur = child
				break
			}
		}
		if idx < 0 {
			err := errs.New(errs.Invalid, "overwrite path %s does not match the traced schema", path)
			return "", errs.WithField(err, path)
		}
		parts = append(parts, "children", strconv.Itoa(idx))
	}
	return strings.Join(parts, "."), nil
}

func childFields(dt arrow.DataType) []arrow.Field {
	if nested, ok := dt.(arrow.NestedType); ok {
		return nested.Fields()
	}
	return nil
}
