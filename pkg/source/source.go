package source

import (
	"fmt"

	"github.com/spiceai/dualaxis/pkg/table"
	"github.com/spiceai/dualaxis/pkg/validation"
	"go.uber.org/atomic"
)

// Provider yields the current data value of a live source.
type Provider func() (interface{}, error)

// Normalizer turns whatever the host supplies into a table snapshot. Each
// Resolve call observes the source exactly once and stamps a new generation.
type Normalizer struct {
	provider   Provider
	generation *atomic.Uint64
}

func NewStatic(value interface{}) *Normalizer {
	return NewFromProvider(func() (interface{}, error) {
		return value, nil
	})
}

func NewFromProvider(provider Provider) *Normalizer {
	return &Normalizer{
		provider:   provider,
		generation: atomic.NewUint64(0),
	}
}

// WithGeneration makes the normalizer stamp snapshots from a shared counter,
// so generations keep increasing when one normalizer replaces another.
func (n *Normalizer) WithGeneration(counter *atomic.Uint64) *Normalizer {
	if counter != nil {
		n.generation = counter
	}
	return n
}

// Generation returns the generation of the latest resolved snapshot, 0 if none.
func (n *Normalizer) Generation() uint64 {
	return n.generation.Load()
}

// Resolve reads the source once. A value that is not a table yields a
// NotTabular failure; provider errors are returned wrapped.
func (n *Normalizer) Resolve() (*table.Snapshot, error) {
	if n.provider == nil {
		return nil, validation.New(validation.NotTabular)
	}

	value, err := n.provider()
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}

	t, err := AsTable(value)
	if err != nil {
		return nil, err
	}

	return table.NewSnapshot(t, n.generation.Inc()), nil
}

// AsTable accepts the tabular shapes a host may hand over.
func AsTable(value interface{}) (*table.Table, error) {
	switch v := value.(type) {
	case *table.Table:
		if v != nil {
			return v, nil
		}
	case table.Table:
		return &v, nil
	case *table.Snapshot:
		if v != nil && v.Table != nil {
			return v.Table, nil
		}
	}
	return nil, validation.New(validation.NotTabular)
}
