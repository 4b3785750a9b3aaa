package records

import (
	"fmt"

	"github.com/redpanda-data/benthos/v4/public/bloblang"
)

// Mapping pre-processes records with a bloblang mapping before they reach the
// tracer or the builders, for inputs that need cleaning up first.
type Mapping struct {
	exec *bloblang.Executor
}

// NewMapping parses a bloblang mapping.
func NewMapping(mapping string) (*Mapping, error) {
	exec, err := bloblang.Parse(mapping)
	if err != nil {
		return nil, fmt.Errorf("%v : %v", ErrInvalidInput, err)
	}
	return &Mapping{exec: exec}, nil
}

// Apply runs the mapping over one record. Records dropped by the mapping are
// returned as nil.
func (m *Mapping) Apply(rec any) (any, error) {
	out, err := m.exec.Query(rec)
	if err != nil {
		if err == bloblang.ErrRootDeleted {
			return nil, nil
		}
		return nil, fmt.Errorf("%v : %v", ErrInvalidInput, err)
	}
	return out, nil
}
