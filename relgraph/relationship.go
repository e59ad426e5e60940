// Package relgraph implements the typed, triply-indexed relationship
// multigraph substrates are linked through (spec §4.3).
package relgraph

import (
	"fmt"

	"github.com/r3e-network/substrate-core/identity"
)

// Kind is drawn from the closed relationship-kind set (spec §3).
type Kind string

const (
	// Structural kinds, created by division.
	KindPartOfWhole Kind = "PartOfWhole"
	KindWholeOfPart Kind = "WholeOfPart"
	KindSibling     Kind = "Sibling"
	KindContainment Kind = "Containment"
	KindOrdering    Kind = "Ordering"

	// Operational kinds, created by addition.
	KindAttribute   Kind = "Attribute"
	KindDependency  Kind = "Dependency"
	KindAdjacency   Kind = "Adjacency"
	KindAggregation Kind = "Aggregation"

	// Residual kinds, created by modulus.
	KindBoundary  Kind = "Boundary"
	KindCycle     Kind = "Cycle"
	KindRecursion Kind = "Recursion"
	KindLineage   Kind = "Lineage"

	// Projection kinds, created by power/root.
	KindEmbedding  Kind = "Embedding"
	KindExtraction Kind = "Extraction"
	KindOrthogonal Kind = "Orthogonal"

	// Inverse/reversal marker.
	KindInverseOf Kind = "InverseOf"
)

// Relationship is an immutable, typed edge between two substrate
// identities. Once added to a Graph it is never mutated; a "removal" is
// modeled as a separate inverse relationship (spec §3 Lifecycle).
type Relationship struct {
	Source     identity.Identity
	Target     identity.Identity
	Kind       Kind
	Attributes map[string]any
}

// key identifies a Relationship for duplicate detection and set membership:
// the (source, target, kind) triple, per spec §4.3 "Duplicate (source,
// target, kind) is rejected".
type key struct {
	source identity.Identity
	target identity.Identity
	kind   Kind
}

func (r Relationship) key() key {
	return key{source: r.Source, target: r.Target, kind: r.Kind}
}

// String renders a relationship for diagnostics/logging.
func (r Relationship) String() string {
	return fmt.Sprintf("%s -%s-> %s", r.Source, r.Kind, r.Target)
}

// NewRelationship builds a Relationship with a copy of attrs so later caller
// mutation of the map the caller passed in can't retroactively change an
// already-added relationship.
func NewRelationship(source, target identity.Identity, kind Kind, attrs map[string]any) Relationship {
	copied := make(map[string]any, len(attrs))
	for k, v := range attrs {
		copied[k] = v
	}
	return Relationship{Source: source, Target: target, Kind: kind, Attributes: copied}
}
