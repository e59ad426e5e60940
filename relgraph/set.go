package relgraph

// RelationshipSet is a grouped, indexed collection of relationships
// supporting the set algebra the relationship kinds need (spec §3, §4.3,
// and property 6 in spec §8). Membership is keyed on the (source, target,
// kind) triple — set algebra is defined on that identity, not on Go struct
// identity or on Attributes, matching spec §8 scenario S5 ("set algebra on
// identity pairs, not on relationship object identity").
type RelationshipSet struct {
	byKey map[key]Relationship
}

// NewSet builds a RelationshipSet from zero or more relationships,
// deduplicating by (source, target, kind).
func NewSet(rels ...Relationship) RelationshipSet {
	s := RelationshipSet{byKey: make(map[key]Relationship, len(rels))}
	for _, r := range rels {
		s.byKey[r.key()] = r
	}
	return s
}

// Len reports the number of distinct relationships in the set.
func (s RelationshipSet) Len() int { return len(s.byKey) }

// Contains reports whether r (by its (source, target, kind) triple) is in s.
func (s RelationshipSet) Contains(r Relationship) bool {
	_, ok := s.byKey[r.key()]
	return ok
}

// Items returns the relationships in the set in no particular order.
func (s RelationshipSet) Items() []Relationship {
	out := make([]Relationship, 0, len(s.byKey))
	for _, r := range s.byKey {
		out = append(out, r)
	}
	return out
}

// Union returns a new set containing every relationship in s or other.
func (s RelationshipSet) Union(other RelationshipSet) RelationshipSet {
	out := RelationshipSet{byKey: make(map[key]Relationship, len(s.byKey)+len(other.byKey))}
	for k, r := range s.byKey {
		out.byKey[k] = r
	}
	for k, r := range other.byKey {
		out.byKey[k] = r
	}
	return out
}

// Intersection returns a new set containing only relationships present in
// both s and other.
func (s RelationshipSet) Intersection(other RelationshipSet) RelationshipSet {
	small, big := s, other
	if len(other.byKey) < len(s.byKey) {
		small, big = other, s
	}
	out := RelationshipSet{byKey: make(map[key]Relationship)}
	for k, r := range small.byKey {
		if _, ok := big.byKey[k]; ok {
			out.byKey[k] = r
		}
	}
	return out
}

// Complement returns the relationships in s that are not in other
// (set difference s \ other).
func (s RelationshipSet) Complement(other RelationshipSet) RelationshipSet {
	out := RelationshipSet{byKey: make(map[key]Relationship)}
	for k, r := range s.byKey {
		if _, ok := other.byKey[k]; !ok {
			out.byKey[k] = r
		}
	}
	return out
}

// SymmetricDifference returns relationships present in exactly one of s and
// other (XOR).
func (s RelationshipSet) SymmetricDifference(other RelationshipSet) RelationshipSet {
	return s.Complement(other).Union(other.Complement(s))
}

// Equal reports whether s and other contain exactly the same (source,
// target, kind) triples.
func (s RelationshipSet) Equal(other RelationshipSet) bool {
	if len(s.byKey) != len(other.byKey) {
		return false
	}
	for k := range s.byKey {
		if _, ok := other.byKey[k]; !ok {
			return false
		}
	}
	return true
}
