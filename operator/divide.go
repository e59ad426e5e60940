package operator

import (
	"github.com/r3e-network/substrate-core/identity"
	"github.com/r3e-network/substrate-core/relgraph"
	"github.com/r3e-network/substrate-core/substrate"
)

// Divide splits whole into exactly nine parts at the Fibonacci dimensional
// indices [0,1,1,2,3,5,8,13,21], returning the parts alongside the
// structural relationships the split creates (spec §4.1, §8 property 3, and
// scenario S2). Child identities are derived the same way
// substrate.Substrate.Divide does, so operator.Divide and a substrate's own
// memoized Divide() always agree on the nine children of a given identity.
//
// Relationship counts for nine children follow scenario S2 literally:
//   - WholeOfPart: 1 edge, whole -> first child, marking the whole's link
//     back into its own division.
//   - PartOfWhole: 9 edges, one per child, child -> whole.
//   - Sibling: C(9,2) = 36 edges, one per unordered pair of children.
//   - Ordering: 8 edges, consecutive children child[i] -> child[i+1].
//   - Containment: 9 edges, one per child, whole -> child (the fifth kind
//     spec §4.1 lists for divide, not separately counted in S2 but created
//     so every documented kind is exercised).
func Divide(whole identity.Identity) ([9]identity.Identity, relgraph.RelationshipSet) {
	var parts [9]identity.Identity
	for i := range parts {
		parts[i] = substrate.ChildIdentity(whole, i)
	}

	var rels []relgraph.Relationship
	rels = append(rels, relgraph.NewRelationship(whole, parts[0], relgraph.KindWholeOfPart, nil))
	for i, p := range parts {
		rels = append(rels, relgraph.NewRelationship(p, whole, relgraph.KindPartOfWhole, attrs("position", i)))
		rels = append(rels, relgraph.NewRelationship(whole, p, relgraph.KindContainment, attrs("position", i)))
	}
	for i := 0; i < len(parts); i++ {
		for j := i + 1; j < len(parts); j++ {
			rels = append(rels, relgraph.NewRelationship(parts[i], parts[j], relgraph.KindSibling, nil))
		}
	}
	for i := 0; i < len(parts)-1; i++ {
		rels = append(rels, relgraph.NewRelationship(parts[i], parts[i+1], relgraph.KindOrdering, nil))
	}

	return parts, relgraph.NewSet(rels...)
}
