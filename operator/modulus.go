package operator

import (
	"github.com/r3e-network/substrate-core/identity"
	"github.com/r3e-network/substrate-core/kernelerr"
	"github.com/r3e-network/substrate-core/relgraph"
)

// Residue is the first-class value modulus produces, usable to seed the
// next dimensional level (spec §4.1, §9 Open Question 3).
type Residue struct {
	Seed           identity.Identity
	BoundaryRels   relgraph.RelationshipSet
	CycleRels      relgraph.RelationshipSet
	RecursionRels  relgraph.RelationshipSet
	LineageRels    relgraph.RelationshipSet
}

// Modulus computes value's integer quotient and remainder under modulus m,
// matching spec §8 scenario S3 literally: modulus(100, 7) with parent
// 0xABCDEF yields expressed=14 (the quotient) and residue.seed=2 (the
// remainder) — the spec's literal arithmetic, not the mathematical modulo
// operation its name might suggest (see §9 Open Question 3: "implementers
// should follow the literal arithmetic spec above").
func Modulus(parent, value, m identity.Identity) (expressed identity.Identity, residue Residue, err error) {
	if m.Value() == 0 {
		return identity.Identity{}, Residue{}, kernelerr.DivisionByZero()
	}

	quotient := value.Value() / m.Value()
	remainder := value.Value() % m.Value()

	expressed = identity.FromUint64(mask64(quotient))
	seed := identity.FromUint64(mask64(remainder))

	residue = Residue{
		Seed: seed,
		BoundaryRels: relgraph.NewSet(
			relgraph.NewRelationship(expressed, parent, relgraph.KindBoundary, attrs("modulus", m.String())),
		),
		CycleRels: relgraph.NewSet(
			relgraph.NewRelationship(seed, expressed, relgraph.KindCycle, nil),
		),
		RecursionRels: relgraph.NewSet(
			relgraph.NewRelationship(seed, parent, relgraph.KindRecursion, nil),
		),
		LineageRels: relgraph.NewSet(
			relgraph.NewRelationship(expressed, parent, relgraph.KindLineage, nil),
		),
	}
	return expressed, residue, nil
}
