package quiver

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/memory"
	json "github.com/goccy/go-json"

	"github.com/loicalleyne/quiver/errs"
	"github.com/loicalleyne/quiver/layout"
)

// fieldSchema is the JSON interchange form of a field. Data type tokens are
// the canonical Arrow names ("I64", "LargeUtf8", ...); type parameters ride
// alongside.
type fieldSchema struct {
	Name      string            `json:"name"`
	DataType  string            `json:"data_type"`
	Nullable  bool              `json:"nullable,omitempty"`
	Strategy  string            `json:"strategy,omitempty"`
	Children  []fieldSchema     `json:"children,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Unit      string            `json:"unit,omitempty"`
	Timezone  string            `json:"timezone,omitempty"`
	Precision int32             `json:"precision,omitempty"`
	Scale     int32             `json:"scale,omitempty"`
	ByteWidth int               `json:"byte_width,omitempty"`
	N         int32             `json:"n,omitempty"`
	IndexType string            `json:"index_type,omitempty"`
}

// MarshalField serializes a field to its JSON interchange form.
func MarshalField(f arrow.Field) ([]byte, error) {
	fs, err := fieldToSchema(f)
	if err != nil {
		return nil, err
	}
	return json.Marshal(fs)
}

// UnmarshalField parses a field from its JSON interchange form.
func UnmarshalField(data []byte) (arrow.Field, error) {
	var fs fieldSchema
	if err := json.Unmarshal(data, &fs); err != nil {
		return arrow.Field{}, errs.Wrap(err, errs.Invalid, "invalid field document")
	}
	return schemaToField(fs)
}

// MarshalSchema serializes a schema as a JSON array of fields.
func MarshalSchema(s *arrow.Schema) ([]byte, error) {
	var out []fieldSchema
	for _, f := range s.Fields() {
		fs, err := fieldToSchema(f)
		if err != nil {
			return nil, err
		}
		out = append(out, fs)
	}
	return json.Marshal(out)
}

// UnmarshalSchema parses a schema from a JSON array of fields.
func UnmarshalSchema(data []byte) (*arrow.Schema, error) {
	var in []fieldSchema
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, errs.Wrap(err, errs.Invalid, "invalid schema document")
	}
	var fields []arrow.Field
	for _, fs := range in {
		f, err := schemaToField(fs)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return arrow.NewSchema(fields, nil), nil
}

// ExportSchemaBytes exports a serialized Arrow schema in the flight IPC form.
func ExportSchemaBytes(s *arrow.Schema) []byte {
	return flight.SerializeSchema(s, memory.DefaultAllocator)
}

// ImportSchemaBytes imports a serialized Arrow schema from the flight IPC
// form.
func ImportSchemaBytes(dat []byte) (*arrow.Schema, error) {
	return flight.DeserializeSchema(dat, memory.DefaultAllocator)
}

func unitToken(u arrow.TimeUnit) string {
	switch u {
	case arrow.Second:
		return "Second"
	case arrow.Millisecond:
		return "Millisecond"
	case arrow.Microsecond:
		return "Microsecond"
	default:
		return "Nanosecond"
	}
}

func parseUnit(s string) (arrow.TimeUnit, error) {
	switch s {
	case "Second":
		return arrow.Second, nil
	case "Millisecond":
		return arrow.Millisecond, nil
	case "Microsecond":
		return arrow.Microsecond, nil
	case "Nanosecond":
		return arrow.Nanosecond, nil
	}
	return 0, errs.New(errs.Invalid, "unknown time unit %q", s)
}

func fieldToSchema(f arrow.Field) (fieldSchema, error) {
	strategy, err := layout.StrategyOf(f)
	if err != nil {
		return fieldSchema{}, err
	}
	fs := fieldSchema{
		Name:     f.Name,
		Nullable: f.Nullable,
		Strategy: string(strategy),
	}
	for i, k := range f.Metadata.Keys() {
		if k == layout.StrategyKey {
			continue
		}
		if fs.Metadata == nil {
			fs.Metadata = make(map[string]string)
		}
		fs.Metadata[k] = f.Metadata.Values()[i]
	}
	addChildren := func(fields []arrow.Field) error {
		for _, c := range fields {
			cs, err := fieldToSchema(c)
			if err != nil {
				return err
			}
			fs.Children = append(fs.Children, cs)
		}
		return nil
	}

	switch dt := f.Type.(type) {
	case *arrow.NullType:
		fs.DataType = "Null"
	case *arrow.BooleanType:
		fs.DataType = "Bool"
	case *arrow.Int8Type:
		fs.DataType = "I8"
	case *arrow.Int16Type:
		fs.DataType = "I16"
	case *arrow.Int32Type:
		fs.DataType = "I32"
	case *arrow.Int64Type:
		fs.DataType = "I64"
	case *arrow.Uint8Type:
		fs.DataType = "U8"
	case *arrow.Uint16Type:
		fs.DataType = "U16"
	case *arrow.Uint32Type:
		fs.DataType = "U32"
	case *arrow.Uint64Type:
		fs.DataType = "U64"
	case *arrow.Float16Type:
		fs.DataType = "F16"
	case *arrow.Float32Type:
		fs.DataType = "F32"
	case *arrow.Float64Type:
		fs.DataType = "F64"
	case *arrow.Decimal128Type:
		fs.DataType = "Decimal128"
		fs.Precision = dt.Precision
		fs.Scale = dt.Scale
	case *arrow.StringType:
		fs.DataType = "Utf8"
	case *arrow.LargeStringType:
		fs.DataType = "LargeUtf8"
	case *arrow.BinaryType:
		fs.DataType = "Binary"
	case *arrow.LargeBinaryType:
		fs.DataType = "LargeBinary"
	case *arrow.FixedSizeBinaryType:
		fs.DataType = "FixedSizeBinary"
		fs.ByteWidth = dt.ByteWidth
	case *arrow.Date32Type:
		fs.DataType = "Date32"
	case *arrow.Date64Type:
		fs.DataType = "Date64"
	case *arrow.Time32Type:
		fs.DataType = "Time32"
		fs.Unit = unitToken(dt.Unit)
	case *arrow.Time64Type:
		fs.DataType = "Time64"
		fs.Unit = unitToken(dt.Unit)
	case *arrow.TimestampType:
		fs.DataType = "Timestamp"
		fs.Unit = unitToken(dt.Unit)
		fs.Timezone = dt.TimeZone
	case *arrow.DurationType:
		fs.DataType = "Duration"
		fs.Unit = unitToken(dt.Unit)
	case *arrow.ListType:
		fs.DataType = "List"
		if err := addChildren([]arrow.Field{dt.ElemField()}); err != nil {
			return fieldSchema{}, err
		}
	case *arrow.LargeListType:
		fs.DataType = "LargeList"
		if err := addChildren([]arrow.Field{dt.ElemField()}); err != nil {
			return fieldSchema{}, err
		}
	case *arrow.FixedSizeListType:
		fs.DataType = "FixedSizeList"
		fs.N = dt.Len()
		if err := addChildren([]arrow.Field{dt.ElemField()}); err != nil {
			return fieldSchema{}, err
		}
	case *arrow.StructType:
		fs.DataType = "Struct"
		if err := addChildren(dt.Fields()); err != nil {
			return fieldSchema{}, err
		}
	case *arrow.MapType:
		fs.DataType = "Map"
		if err := addChildren([]arrow.Field{dt.KeyField(), dt.ItemField()}); err != nil {
			return fieldSchema{}, err
		}
	case *arrow.DenseUnionType:
		fs.DataType = "Union"
		if err := addChildren(dt.Fields()); err != nil {
			return fieldSchema{}, err
		}
	case *arrow.DictionaryType:
		fs.DataType = "Dictionary"
		idx, err := fieldToSchema(arrow.Field{Name: "indices", Type: dt.IndexType})
		if err != nil {
			return fieldSchema{}, err
		}
		fs.IndexType = idx.DataType
		if err := addChildren([]arrow.Field{{Name: "values", Type: dt.ValueType}}); err != nil {
			return fieldSchema{}, err
		}
	default:
		return fieldSchema{}, errs.New(errs.Unsupported, "cannot serialize fields of type %s", f.Type)
	}
	return fs, nil
}

var primitiveTokens = map[string]arrow.DataType{
	"Null":        arrow.Null,
	"Bool":        arrow.FixedWidthTypes.Boolean,
	"I8":          arrow.PrimitiveTypes.Int8,
	"I16":         arrow.PrimitiveTypes.Int16,
	"I32":         arrow.PrimitiveTypes.Int32,
	"I64":         arrow.PrimitiveTypes.Int64,
	"U8":          arrow.PrimitiveTypes.Uint8,
	"U16":         arrow.PrimitiveTypes.Uint16,
	"U32":         arrow.PrimitiveTypes.Uint32,
	"U64":         arrow.PrimitiveTypes.Uint64,
	"F16":         arrow.FixedWidthTypes.Float16,
	"F32":         arrow.PrimitiveTypes.Float32,
	"F64":         arrow.PrimitiveTypes.Float64,
	"Utf8":        arrow.BinaryTypes.String,
	"LargeUtf8":   arrow.BinaryTypes.LargeString,
	"Binary":      arrow.BinaryTypes.Binary,
	"LargeBinary": arrow.BinaryTypes.LargeBinary,
	"Date32":      arrow.FixedWidthTypes.Date32,
	"Date64":      arrow.FixedWidthTypes.Date64,
}

func schemaToField(fs fieldSchema) (arrow.Field, error) {
	var strategy layout.Strategy
	if fs.Strategy != "" {
		var err error
		strategy, err = layout.ParseStrategy(fs.Strategy)
		if err != nil {
			return arrow.Field{}, err
		}
	}

	children := func() ([]arrow.Field, error) {
		var out []arrow.Field
		for _, cs := range fs.Children {
			c, err := schemaToField(cs)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
		return out, nil
	}

	var dt arrow.DataType
	if t, ok := primitiveTokens[fs.DataType]; ok {
		dt = t
	} else {
		switch fs.DataType {
		case "Decimal128":
			dt = &arrow.Decimal128Type{Precision: fs.Precision, Scale: fs.Scale}
		case "FixedSizeBinary":
			dt = &arrow.FixedSizeBinaryType{ByteWidth: fs.ByteWidth}
		case "Time32":
			unit, err := parseUnit(fs.Unit)
			if err != nil {
				return arrow.Field{}, err
			}
			dt = &arrow.Time32Type{Unit: unit}
		case "Time64":
			unit, err := parseUnit(fs.Unit)
			if err != nil {
				return arrow.Field{}, err
			}
			dt = &arrow.Time64Type{Unit: unit}
		case "Timestamp":
			unit, err := parseUnit(fs.Unit)
			if err != nil {
				return arrow.Field{}, err
			}
			dt = &arrow.TimestampType{Unit: unit, TimeZone: fs.Timezone}
		case "Duration":
			unit, err := parseUnit(fs.Unit)
			if err != nil {
				return arrow.Field{}, err
			}
			dt = &arrow.DurationType{Unit: unit}
		case "List", "LargeList":
			cs, err := children()
			if err != nil {
				return arrow.Field{}, err
			}
			if len(cs) != 1 {
				return arrow.Field{}, errs.New(errs.Shape, "%s fields need exactly one child", fs.DataType)
			}
			if fs.DataType == "List" {
				dt = arrow.ListOfField(cs[0])
			} else {
				dt = arrow.LargeListOfField(cs[0])
			}
		case "FixedSizeList":
			cs, err := children()
			if err != nil {
				return arrow.Field{}, err
			}
			if len(cs) != 1 {
				return arrow.Field{}, errs.New(errs.Shape, "FixedSizeList fields need exactly one child")
			}
			dt = arrow.FixedSizeListOfField(fs.N, cs[0])
		case "Struct":
			cs, err := children()
			if err != nil {
				return arrow.Field{}, err
			}
			dt = arrow.StructOf(cs...)
		case "Map":
			cs, err := children()
			if err != nil {
				return arrow.Field{}, err
			}
			if len(cs) != 2 {
				return arrow.Field{}, errs.New(errs.Shape, "Map fields need exactly two children")
			}
			if cs[0].Nullable {
				return arrow.Field{}, errs.New(errs.Shape, "map keys must be non-nullable")
			}
			mt := arrow.MapOf(cs[0].Type, cs[1].Type)
			mt.SetItemNullable(cs[1].Nullable)
			dt = mt
		case "Union":
			cs, err := children()
			if err != nil {
				return arrow.Field{}, err
			}
			codes := make([]arrow.UnionTypeCode, len(cs))
			for i := range codes {
				codes[i] = arrow.UnionTypeCode(i)
			}
			dt = arrow.DenseUnionOf(cs, codes)
		case "Dictionary":
			cs, err := children()
			if err != nil {
				return arrow.Field{}, err
			}
			if len(cs) != 1 {
				return arrow.Field{}, errs.New(errs.Shape, "Dictionary fields need exactly one child")
			}
			idxToken := fs.IndexType
			if idxToken == "" {
				idxToken = "U32"
			}
			idx, ok := primitiveTokens[idxToken]
			if !ok {
				return arrow.Field{}, errs.New(errs.Invalid, "unknown dictionary index type %q", idxToken)
			}
			dt = &arrow.DictionaryType{IndexType: idx, ValueType: cs[0].Type}
		default:
			return arrow.Field{}, errs.New(errs.Invalid, "unknown data type %q", fs.DataType)
		}
	}

	var keys, values []string
	for k, v := range fs.Metadata {
		keys = append(keys, k)
		values = append(values, v)
	}
	return arrow.Field{
		Name:     fs.Name,
		Type:     dt,
		Nullable: fs.Nullable,
		Metadata: layout.WithStrategy(strategy, keys, values),
	}, nil
}
