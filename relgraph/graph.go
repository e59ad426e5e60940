package relgraph

import (
	"context"
	"sync"

	"github.com/r3e-network/substrate-core/identity"
	"github.com/r3e-network/substrate-core/kernelerr"
)

// Direction selects which side of a relationship neighbors() inspects.
type Direction int

const (
	Outgoing Direction = iota
	Incoming
)

// Existence is consulted by Graph.Add to reject dangling edges (spec §4.3
// "No dangling edges: both endpoints must exist in the registry before add
// succeeds"). The graph itself doesn't own substrates — the registry does
// (spec §3 Ownership) — so it depends on this narrow interface instead of
// importing the substrate package directly.
type Existence interface {
	Exists(id identity.Identity) bool
}

const defaultShardCount = 16

// shard holds one partition of the triple index, guarded by its own lock so
// independent identities never contend (spec §5).
type shard struct {
	mu    sync.RWMutex
	byOut map[identity.Identity][]Relationship
	byIn  map[identity.Identity][]Relationship
}

func newShard() *shard {
	return &shard{
		byOut: make(map[identity.Identity][]Relationship),
		byIn:  make(map[identity.Identity][]Relationship),
	}
}

// Graph is a typed, append-only multigraph over substrate identities,
// triply indexed by source, target, and kind (spec §4.3).
type Graph struct {
	shards []*shard

	byKindMu sync.RWMutex
	byKind   map[Kind][]Relationship

	seenMu sync.RWMutex
	seen   map[key]struct{}

	registry Existence
}

// New builds a Graph sharded shardCount ways. registry supplies the
// existence check dangling-edge rejection needs; pass nil to skip the check
// (used by tests that don't wire a real registry).
func New(shardCount int, registry Existence) *Graph {
	if shardCount <= 0 {
		shardCount = defaultShardCount
	}
	g := &Graph{
		shards:   make([]*shard, shardCount),
		byKind:   make(map[Kind][]Relationship),
		seen:     make(map[key]struct{}),
		registry: registry,
	}
	for i := range g.shards {
		g.shards[i] = newShard()
	}
	return g
}

func (g *Graph) shardFor(id identity.Identity) *shard {
	return g.shards[id.Value()%uint64(len(g.shards))]
}

// Add inserts a relationship. It fails with DuplicateRelationship if the
// (source, target, kind) triple already exists, and with DanglingEdge if
// the registry reports either endpoint missing.
func (g *Graph) Add(rel Relationship) error {
	if g.registry != nil {
		if !g.registry.Exists(rel.Source) {
			return kernelerr.DanglingEdge("source", rel.Source.String())
		}
		if !g.registry.Exists(rel.Target) {
			return kernelerr.DanglingEdge("target", rel.Target.String())
		}
	}

	k := rel.key()
	g.seenMu.Lock()
	if _, exists := g.seen[k]; exists {
		g.seenMu.Unlock()
		return kernelerr.DuplicateRelationship(rel.Source.String(), rel.Target.String(), string(rel.Kind))
	}
	g.seen[k] = struct{}{}
	g.seenMu.Unlock()

	srcShard := g.shardFor(rel.Source)
	srcShard.mu.Lock()
	srcShard.byOut[rel.Source] = append(srcShard.byOut[rel.Source], rel)
	srcShard.mu.Unlock()

	tgtShard := g.shardFor(rel.Target)
	tgtShard.mu.Lock()
	tgtShard.byIn[rel.Target] = append(tgtShard.byIn[rel.Target], rel)
	tgtShard.mu.Unlock()

	g.byKindMu.Lock()
	g.byKind[rel.Kind] = append(g.byKind[rel.Kind], rel)
	g.byKindMu.Unlock()

	return nil
}

// AddAll inserts every relationship in rels, stopping at the first error.
func (g *Graph) AddAll(rels []Relationship) error {
	for _, r := range rels {
		if err := g.Add(r); err != nil {
			return err
		}
	}
	return nil
}

// Neighbors returns the relationships touching id on the given side,
// optionally filtered to one kind. Lookup is O(1) amortized: one shard map
// access plus a linear scan of that identity's own edges.
func (g *Graph) Neighbors(id identity.Identity, dir Direction, kind *Kind) []Relationship {
	s := g.shardFor(id)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var src []Relationship
	if dir == Outgoing {
		src = s.byOut[id]
	} else {
		src = s.byIn[id]
	}
	if kind == nil {
		out := make([]Relationship, len(src))
		copy(out, src)
		return out
	}
	out := make([]Relationship, 0, len(src))
	for _, r := range src {
		if r.Kind == *kind {
			out = append(out, r)
		}
	}
	return out
}

// EdgesOfKind returns every relationship of the given kind in the graph.
func (g *Graph) EdgesOfKind(kind Kind) []Relationship {
	g.byKindMu.RLock()
	defer g.byKindMu.RUnlock()
	src := g.byKind[kind]
	out := make([]Relationship, len(src))
	copy(out, src)
	return out
}

// Has reports whether the (source, target, kind) triple exists.
func (g *Graph) Has(source, target identity.Identity, kind Kind) bool {
	g.seenMu.RLock()
	defer g.seenMu.RUnlock()
	_, ok := g.seen[key{source: source, target: target, kind: kind}]
	return ok
}

// PairInverse adds forward and backward, then links them with an InverseOf
// edge from forward's source to backward's source (spec §4.3).
func (g *Graph) PairInverse(forward, backward Relationship) error {
	if err := g.Add(forward); err != nil {
		return err
	}
	if err := g.Add(backward); err != nil {
		return err
	}
	return g.Add(NewRelationship(forward.Source, backward.Source, KindInverseOf, nil))
}

// FindPath runs a bounded BFS from a to b over outgoing edges of any kind,
// returning the sequence of identities visited (inclusive of a and b) or
// nil if unreachable. maxSteps bounds exploration so a caller can't be
// trapped by a cycle (spec §4.3 "it is the caller's responsibility to
// terminate traversal"); this helper does that termination for them the
// way katalvlaran-lvlath's bfs package terminates on a visited set.
func (g *Graph) FindPath(ctx context.Context, a, b identity.Identity, maxSteps int) ([]identity.Identity, error) {
	if a.Equal(b) {
		return []identity.Identity{a}, nil
	}
	if maxSteps <= 0 {
		maxSteps = 100000
	}

	visited := map[identity.Identity]bool{a: true}
	queue := []*pathNode{{id: a}}
	steps := 0

	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if steps > maxSteps {
			return nil, kernelerr.CycleLimitExceeded()
		}
		steps++

		cur := queue[0]
		queue = queue[1:]

		for _, rel := range g.Neighbors(cur.id, Outgoing, nil) {
			if visited[rel.Target] {
				continue
			}
			next := &pathNode{id: rel.Target, parent: cur}
			if rel.Target.Equal(b) {
				return reconstructPath(next), nil
			}
			visited[rel.Target] = true
			queue = append(queue, next)
		}
	}
	return nil, nil
}

// pathNode is a BFS parent-pointer chain used to reconstruct the path
// FindPath returns.
type pathNode struct {
	id     identity.Identity
	parent *pathNode
}

func reconstructPath(n *pathNode) []identity.Identity {
	var out []identity.Identity
	for cur := n; cur != nil; cur = cur.parent {
		out = append([]identity.Identity{cur.id}, out...)
	}
	return out
}
