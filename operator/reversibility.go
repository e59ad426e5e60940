package operator

import (
	"github.com/r3e-network/substrate-core/identity"
	"github.com/r3e-network/substrate-core/kernelerr"
)

// ValidateReversibility reports whether forward followed by inverse
// reconstructs x bitwise (spec §4.1, §8 property 5). It never panics on a
// misbehaving operator — forward/inverse errors simply count as "not
// reversible".
func ValidateReversibility(forward, inverse Operator, x identity.Identity) bool {
	y, err := forward(x)
	if err != nil {
		return false
	}
	back, err := inverse(y)
	if err != nil {
		return false
	}
	return back.Equal(x)
}

// ApplyWithValidation applies forward to x only after confirming inverse
// reconstructs it; it raises ReversibilityViolation rather than silently
// returning a result from an operator that only claims reversibility
// (spec §8 scenario S6).
func ApplyWithValidation(forward, inverse Operator, x identity.Identity, label string) (identity.Identity, error) {
	if !ValidateReversibility(forward, inverse, x) {
		return identity.Identity{}, kernelerr.ReversibilityViolation(label)
	}
	return forward(x)
}
