package operator

import (
	"math/big"

	"github.com/r3e-network/substrate-core/identity"
	"github.com/r3e-network/substrate-core/kernelerr"
	"github.com/r3e-network/substrate-core/relgraph"
)

// MaxFibonacciIndex bounds power/root exponents (spec §5: "powers and roots
// are capped at the maximum Fibonacci index (21) to prevent runaway
// recursion").
const MaxFibonacciIndex = 21

// Power raises base to the n-th power and returns the Embedding/Orthogonal
// relationships linking the result back to base (spec §4.1). Unlike Add and
// Multiply, Power is NOT a wrap-permitted operator (spec §4.1: "addition
// and multiplication are the only wrap-permitted cases") — an overflowing
// result is IdentityOverflow, not a silently truncated value.
func Power(base identity.Identity, n int) (identity.Identity, relgraph.RelationshipSet, error) {
	if n < 0 || n > MaxFibonacciIndex {
		return identity.Identity{}, relgraph.RelationshipSet{}, kernelerr.InvalidDimensionIndex(n)
	}

	result := new(big.Int).Exp(big.NewInt(0).SetUint64(base.Value()), big.NewInt(int64(n)), nil)
	if result.BitLen() > 64 {
		return identity.Identity{}, relgraph.RelationshipSet{}, kernelerr.IdentityOverflow("power")
	}

	stacked, err := identity.FromBigInt(result)
	if err != nil {
		return identity.Identity{}, relgraph.RelationshipSet{}, kernelerr.IdentityOverflow("power")
	}

	rels := relgraph.NewSet(
		relgraph.NewRelationship(stacked, base, relgraph.KindEmbedding, attrs("exponent", n)),
		relgraph.NewRelationship(base, stacked, relgraph.KindOrthogonal, attrs("exponent", n)),
	)
	return stacked, rels, nil
}

// Root computes the integer n-th root of value (floor), the inverse of
// Power when value is an exact n-th power, with an Extraction relationship
// linking the reduced result back to value (spec §4.1).
func Root(value identity.Identity, n int) (identity.Identity, relgraph.RelationshipSet, error) {
	if n <= 0 || n > MaxFibonacciIndex {
		return identity.Identity{}, relgraph.RelationshipSet{}, kernelerr.InvalidDimensionIndex(n)
	}

	reduced := integerNthRoot(value.Value(), n)
	result := identity.FromUint64(reduced)

	rels := relgraph.NewSet(
		relgraph.NewRelationship(result, value, relgraph.KindExtraction, attrs("degree", n)),
	)
	return result, rels, nil
}

// integerNthRoot returns floor(v^(1/n)) via binary search over uint64.
func integerNthRoot(v uint64, n int) uint64 {
	if v == 0 {
		return 0
	}
	if n == 1 {
		return v
	}
	lo, hi := uint64(0), v
	for lo < hi {
		mid := lo + (hi-lo+1)/2
		if powOverflows(mid, n, v) {
			hi = mid - 1
			continue
		}
		p := powUint64(mid, n)
		if p <= v {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

func powUint64(base uint64, n int) uint64 {
	result := uint64(1)
	for i := 0; i < n; i++ {
		result *= base
	}
	return result
}

func powOverflows(base uint64, n int, cap uint64) bool {
	b := new(big.Int).SetUint64(base)
	r := new(big.Int).Exp(b, big.NewInt(int64(n)), nil)
	return r.Cmp(new(big.Int).SetUint64(cap)) > 0
}
