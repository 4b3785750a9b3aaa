package quiver

// Option configures schema tracing.
type (
	Option func(config)
	config *traceConfig
)

type traceConfig struct {
	allowNullFields           bool
	mapAsStruct               bool
	stringDictionaryEncoding  bool
	coerceNumbers             bool
	guessDates                bool
	enumsWithoutDataAsStrings bool
	overwrites                map[string]string
	fromTypeBudget            int
}

const defaultFromTypeBudget = 100

func newTraceConfig(opts ...Option) *traceConfig {
	cfg := &traceConfig{
		overwrites:     make(map[string]string),
		fromTypeBudget: defaultFromTypeBudget,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithAllowNullFields permits fields whose type could not be determined to be
// traced as Null instead of failing.
func WithAllowNullFields() Option {
	return func(cfg config) {
		cfg.allowNullFields = true
	}
}

// WithMapAsStruct traces map inputs as structs annotated with the
// MapAsStruct strategy instead of the Arrow Map type. Map keys must be
// strings.
func WithMapAsStruct() Option {
	return func(cfg config) {
		cfg.mapAsStruct = true
	}
}

// WithStringDictionaryEncoding traces string fields as
// Dictionary(UInt32, LargeUtf8).
func WithStringDictionaryEncoding() Option {
	return func(cfg config) {
		cfg.stringDictionaryEncoding = true
	}
}

// WithCoerceNumbers resolves signedness conflicts between integer
// observations by widening to Int64 instead of failing. Mixes of integers and
// floats widen to a float type with or without this option.
func WithCoerceNumbers() Option {
	return func(cfg config) {
		cfg.coerceNumbers = true
	}
}

// WithGuessDates enables scanning string samples for the ISO datetime
// grammar. Matching fields trace to Date64 with the NaiveStrAsDate64 or
// UtcStrAsDate64 strategy; a conflicting mix across samples degrades to
// LargeUtf8.
func WithGuessDates() Option {
	return func(cfg config) {
		cfg.guessDates = true
	}
}

// WithTryParseDates is an alias for WithGuessDates.
func WithTryParseDates() Option { return WithGuessDates() }

// WithEnumsWithoutDataAsStrings traces unions whose variants all carry no
// data as LargeUtf8 fields (Dictionary(UInt32, LargeUtf8) together with
// WithStringDictionaryEncoding). The string and dictionary builders do not
// accept unit variant events, so such fields are not filled from Variant
// values.
func WithEnumsWithoutDataAsStrings() Option {
	return func(cfg config) {
		cfg.enumsWithoutDataAsStrings = true
	}
}

// WithOverwrite replaces the traced field at a dotpath with the given field
// JSON once tracing finishes.
func WithOverwrite(path, fieldJSON string) Option {
	return func(cfg config) {
		cfg.overwrites[path] = fieldJSON
	}
}

// WithFromTypeBudget bounds the recursion depth of FieldFromType, so
// self-referential types fail instead of recursing forever.
func WithFromTypeBudget(n int) Option {
	return func(cfg config) {
		cfg.fromTypeBudget = n
	}
}
