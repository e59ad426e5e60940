// Package operator implements the dimensional arithmetic operators (spec
// §4.1): each consumes one or more substrate identities and returns both a
// result identity and the relationship set that operation creates or
// severs.
package operator

import (
	"github.com/r3e-network/substrate-core/identity"
)

// Operator is a forward or inverse dimensional arithmetic function over a
// single identity, used by ValidateReversibility and ApplyWithValidation.
type Operator func(x identity.Identity) (identity.Identity, error)

// mask64 re-documents identity.Mask at the point every operator applies it,
// per spec §4.1 ("every arithmetic result is masked with
// 0xFFFFFFFFFFFFFFFF").
func mask64(v uint64) uint64 { return v & identity.Mask }

// attrs is a small helper so operators can build relationship
// attribute maps without repeating map[string]any{...} boilerplate.
func attrs(pairs ...any) map[string]any {
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		key, _ := pairs[i].(string)
		m[key] = pairs[i+1]
	}
	return m
}
