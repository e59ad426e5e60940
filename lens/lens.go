// Package lens implements pure projection of substrate dimensions into
// observations (spec §4.4): a lens never mutates the substrate or its
// registry. This package records nothing itself; gateway.Gateway.Observe
// appends each observation it returns to the gateway's separate,
// append-only ObservationLog.
package lens

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/r3e-network/substrate-core/identity"
	"github.com/r3e-network/substrate-core/kernelerr"
	"github.com/r3e-network/substrate-core/substrate"
)

// Lens is a pure projection from a dimension's identity to an observed
// value. Lenses must not have side effects beyond the returned value.
type Lens func(dim substrate.Dimension) (any, error)

// Observation is the append-only record a lens produces (spec §4.4,
// §2 glossary entry "Observation"): substrate_id, dimension_index,
// projected_value, timestamp.
type Observation struct {
	ID             string
	SubstrateID    identity.Identity
	DimensionIndex int
	Value          any
	ObservedAt     time.Time
}

// Registry is the subset of substrate.Registry Observe needs, kept narrow
// so lens stays decoupled from registry internals.
type Registry interface {
	Get(id identity.Identity) (*substrate.Substrate, error)
}

// Observe projects dimension dimIndex of substrateID through lens and
// returns the resulting Observation. It performs no writes to the registry
// or the substrate itself (spec §4.4 property: "lenses MUST NOT mutate the
// substrate or the registry").
func Observe(ctx context.Context, reg Registry, substrateID identity.Identity, dimIndex int, l Lens) (Observation, error) {
	if err := ctx.Err(); err != nil {
		return Observation{}, err
	}

	s, err := reg.Get(substrateID)
	if err != nil {
		return Observation{}, err
	}

	dims := s.Divide()
	if dimIndex < 0 || dimIndex >= len(dims) {
		return Observation{}, kernelerr.InvalidDimensionIndex(dimIndex)
	}

	value, err := l(dims[dimIndex])
	if err != nil {
		return Observation{}, kernelerr.ExpressionEvaluationFailed(err)
	}

	return Observation{
		ID:             uuid.New().String(),
		SubstrateID:    substrateID,
		DimensionIndex: dimIndex,
		Value:          value,
		ObservedAt:     time.Now(),
	}, nil
}

// IdentityLens is the simplest lens: it projects a dimension's own identity
// without invoking anything, useful for structural inspection and tests.
func IdentityLens(dim substrate.Dimension) (any, error) {
	return dim.ID.String(), nil
}
