package operator

import (
	"github.com/r3e-network/substrate-core/identity"
	"github.com/r3e-network/substrate-core/relgraph"
)

// Add combines a and b into a sum identity, wrapping on overflow (spec
// §4.1: "addition and multiplication are the only wrap-permitted cases,
// because they model identity combination"). It returns the relationship
// kinds the operational family uses: Attribute, Dependency, Adjacency,
// Aggregation, each linking the sum back to its operands.
func Add(a, b identity.Identity) (identity.Identity, relgraph.RelationshipSet) {
	sum := identity.FromUint64(mask64(a.Value() + b.Value()))

	rels := relgraph.NewSet(
		relgraph.NewRelationship(sum, a, relgraph.KindAttribute, attrs("role", "addend")),
		relgraph.NewRelationship(sum, b, relgraph.KindAttribute, attrs("role", "addend")),
		relgraph.NewRelationship(sum, a, relgraph.KindDependency, nil),
		relgraph.NewRelationship(sum, b, relgraph.KindDependency, nil),
		relgraph.NewRelationship(a, b, relgraph.KindAdjacency, nil),
		relgraph.NewRelationship(sum, a, relgraph.KindAggregation, nil),
		relgraph.NewRelationship(sum, b, relgraph.KindAggregation, nil),
	)
	return sum, rels
}

// Subtract inverts Add for b: subtract(add(a, b), b) = a within 64-bit
// arithmetic (spec §4.1 reversibility). It returns the relationships that
// must be removed from any live graph tracking the original sum — callers
// model removal as severing, not deletion, per spec §3 Lifecycle.
func Subtract(a, b identity.Identity) (identity.Identity, relgraph.RelationshipSet) {
	diff := identity.FromUint64(mask64(a.Value() - b.Value()))
	severed := relgraph.NewSet(
		relgraph.NewRelationship(a, b, relgraph.KindDependency, nil),
		relgraph.NewRelationship(a, b, relgraph.KindAdjacency, nil),
	)
	return diff, severed
}
