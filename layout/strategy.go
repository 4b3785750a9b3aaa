package layout

import (
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/loicalleyne/quiver/errs"
)

// StrategyKey is the field metadata key holding the strategy annotation.
const StrategyKey = "SERDE_ARROW::STRATEGY"

// Strategy instructs builders and deserializers to interpret a field in a
// non-default way when the Arrow type alone does not preserve the source
// interpretation.
type Strategy string

const (
	StrategyNone                       Strategy = ""
	StrategyTupleAsStruct              Strategy = "TupleAsStruct"
	StrategyMapAsStruct                Strategy = "MapAsStruct"
	StrategyNaiveStrAsDate64           Strategy = "NaiveStrAsDate64"
	StrategyUtcStrAsDate64             Strategy = "UtcStrAsDate64"
	StrategyEnumsWithNamedFieldsAsMaps Strategy = "EnumsWithNamedFieldsAsMaps"
)

// ParseStrategy validates a strategy metadata value.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyTupleAsStruct, StrategyMapAsStruct, StrategyNaiveStrAsDate64,
		StrategyUtcStrAsDate64, StrategyEnumsWithNamedFieldsAsMaps:
		return Strategy(s), nil
	}
	return StrategyNone, errs.New(errs.Invalid, "unknown strategy %q", s)
}

// StrategyOf extracts the strategy annotation from a field's metadata.
// Fields without the metadata key have no strategy.
func StrategyOf(f arrow.Field) (Strategy, error) {
	v, ok := f.Metadata.GetValue(StrategyKey)
	if !ok {
		return StrategyNone, nil
	}
	return ParseStrategy(v)
}

// WithStrategy returns metadata carrying the strategy in addition to the
// given keys and values.
func WithStrategy(s Strategy, keys, values []string) arrow.Metadata {
	if s == StrategyNone {
		return arrow.NewMetadata(keys, values)
	}
	return arrow.NewMetadata(append(keys, StrategyKey), append(values, string(s)))
}
