package seed

import (
	"testing"

	"github.com/r3e-network/substrate-core/kernelerr"
	"github.com/r3e-network/substrate-core/relgraph"
	"github.com/r3e-network/substrate-core/substrate"
)

const fixtureYAML = `
seeds:
  - name: tensor
    category: algebra
    domain: mathematics
    definition: a multidimensional array obeying transformation rules
    usage: ["tensor product", "tensor contraction"]
    meaning: generalization of scalars, vectors, and matrices
    tags: ["algebra", "physics"]
    relationships:
      - target: scalar
        kind: generalization
  - name: scalar
    category: algebra
    domain: mathematics
    definition: a single numeric quantity with no direction
    usage: ["scalar multiplication"]
    meaning: a quantity fully described by magnitude alone
    tags: ["algebra"]
`

func newTestLoader(t *testing.T) *Loader {
	t.Helper()
	reg := substrate.NewRegistry(4, 16)
	graph := relgraph.New(4, reg)
	return NewLoader(reg, graph)
}

func TestLoadBytes_IngestsRecords(t *testing.T) {
	l := newTestLoader(t)
	if err := l.LoadBytes([]byte(fixtureYAML)); err != nil {
		t.Fatalf("LoadBytes() error: %v", err)
	}

	r, ok := l.GetByName("tensor")
	if !ok {
		t.Fatalf("expected tensor record to be ingested")
	}
	if r.Category != "algebra" {
		t.Fatalf("Category = %q, want algebra", r.Category)
	}
}

func TestLoadBytes_RejectsMissingRequiredFields(t *testing.T) {
	l := newTestLoader(t)
	err := l.LoadBytes([]byte(`
seeds:
  - name: broken
    category: algebra
`))
	if err == nil {
		t.Fatalf("expected a validation error")
	}
}

func TestLoadBytes_DetectsConflictingDefinitions(t *testing.T) {
	l := newTestLoader(t)
	if err := l.LoadBytes([]byte(fixtureYAML)); err != nil {
		t.Fatalf("LoadBytes() error: %v", err)
	}
	err := l.LoadBytes([]byte(`
seeds:
  - name: tensor
    category: algebra
    domain: mathematics
    definition: a completely different meaning
    usage: ["x"]
    meaning: conflicting
`))
	if err == nil {
		t.Fatalf("expected a SeedConflict error")
	}
}

func TestResolveRelationships_LinksByName(t *testing.T) {
	l := newTestLoader(t)
	if err := l.LoadBytes([]byte(fixtureYAML)); err != nil {
		t.Fatalf("LoadBytes() error: %v", err)
	}
	pending := l.ResolveRelationships()
	if len(pending) != 0 {
		t.Fatalf("expected no pending relationships, got %v", pending)
	}

	tensorID, _ := l.IdentityOf("tensor")
	scalarID, _ := l.IdentityOf("scalar")
	if !l.graph.Has(tensorID, scalarID, relgraph.Kind("generalization")) {
		t.Fatalf("expected tensor -> scalar generalization edge")
	}
}

func TestResolveRelationships_ReportsUnresolvedTargets(t *testing.T) {
	l := newTestLoader(t)
	err := l.LoadBytes([]byte(`
seeds:
  - name: orphan
    category: algebra
    domain: mathematics
    definition: refers to something never ingested
    usage: ["x"]
    meaning: a dangling reference
    relationships:
      - target: nonexistent
        kind: dependency
`))
	if err != nil {
		t.Fatalf("LoadBytes() error: %v", err)
	}

	pending := l.ResolveRelationships()
	if len(pending) != 1 || pending[0].Target != "nonexistent" {
		t.Fatalf("expected one pending relationship to 'nonexistent', got %v", pending)
	}
}

func TestGetByCategoryDomainTagSearch(t *testing.T) {
	l := newTestLoader(t)
	if err := l.LoadBytes([]byte(fixtureYAML)); err != nil {
		t.Fatalf("LoadBytes() error: %v", err)
	}

	if len(l.GetByCategory("algebra")) != 2 {
		t.Fatalf("expected 2 records in category algebra")
	}
	if len(l.GetByDomain("mathematics")) != 2 {
		t.Fatalf("expected 2 records in domain mathematics")
	}
	if len(l.GetByTag("physics")) != 1 {
		t.Fatalf("expected 1 record tagged physics")
	}
	if len(l.Search("numeric quantity")) != 1 {
		t.Fatalf("expected search to find scalar via its definition")
	}
}

func TestClosure_ExceedsDepthLimit(t *testing.T) {
	l := newTestLoader(t)
	if err := l.LoadBytes([]byte(`
seeds:
  - name: a
    category: c
    domain: d
    definition: x
    usage: ["x"]
    meaning: m
    relationships:
      - {target: b, kind: dependency}
  - name: b
    category: c
    domain: d
    definition: x
    usage: ["x"]
    meaning: m
    relationships:
      - {target: a, kind: dependency}
`)); err != nil {
		t.Fatalf("LoadBytes() error: %v", err)
	}

	_, err := l.Closure("a", 0)
	if kind, ok := kernelerr.Of(err); !ok || kind != kernelerr.KindExcessiveRecursion {
		t.Fatalf("expected ExcessiveRecursion, got %v", err)
	}
}

func TestClosure_FollowsVisitedCycleSafely(t *testing.T) {
	l := newTestLoader(t)
	if err := l.LoadBytes([]byte(`
seeds:
  - name: a
    category: c
    domain: d
    definition: x
    usage: ["x"]
    meaning: m
    relationships:
      - {target: b, kind: dependency}
  - name: b
    category: c
    domain: d
    definition: x
    usage: ["x"]
    meaning: m
    relationships:
      - {target: a, kind: dependency}
`)); err != nil {
		t.Fatalf("LoadBytes() error: %v", err)
	}

	out, err := l.Closure("a", 10)
	if err != nil {
		t.Fatalf("Closure() error: %v", err)
	}
	if len(out) != 1 || out[0] != "b" {
		t.Fatalf("Closure() = %v, want [b]", out)
	}
}

func TestLoadFile_MissingFileIsNoop(t *testing.T) {
	l := newTestLoader(t)
	if err := l.LoadFile("/nonexistent/path/seeds.yaml"); err != nil {
		t.Fatalf("LoadFile() error on missing file: %v", err)
	}
}
