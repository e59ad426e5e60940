package operator

import (
	"github.com/r3e-network/substrate-core/identity"
	"github.com/r3e-network/substrate-core/relgraph"
)

// Multiply combines parts into one unity identity, wrapping on overflow
// (spec §4.1, the other wrap-permitted case). Sibling relationships among
// the parts are returned as "collapsed" — multiply is the operator that
// undoes a prior Divide's Sibling fan-out, so the kind is reused rather than
// inventing a new one (spec §4.1: "sibling relationships among parts are
// returned as collapsed; PartOfWhole lineage is preserved").
func Multiply(parts ...identity.Identity) (identity.Identity, relgraph.RelationshipSet) {
	var product uint64 = 1
	for _, p := range parts {
		product = mask64(product * p.Value())
	}
	unity := identity.FromUint64(product)

	var collapsed []relgraph.Relationship
	for i := 0; i < len(parts); i++ {
		for j := i + 1; j < len(parts); j++ {
			collapsed = append(collapsed, relgraph.NewRelationship(parts[i], parts[j], relgraph.KindSibling, attrs("collapsed_into", unity.String())))
		}
		collapsed = append(collapsed, relgraph.NewRelationship(parts[i], unity, relgraph.KindPartOfWhole, nil))
	}
	return unity, relgraph.NewSet(collapsed...)
}
