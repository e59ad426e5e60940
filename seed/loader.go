package seed

import (
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/r3e-network/substrate-core/expression"
	"github.com/r3e-network/substrate-core/identity"
	"github.com/r3e-network/substrate-core/kernelerr"
	"github.com/r3e-network/substrate-core/relgraph"
	"github.com/r3e-network/substrate-core/substrate"
)

// PendingRelationship is the non-fatal diagnostic spec §4.5 step 6 requires
// when a relationship's target name is never ingested: "unresolved targets
// are reported but non-fatal".
type PendingRelationship struct {
	From   string
	Target string
	Kind   string
}

// Loader ingests seed records into a registry and graph, two pass: Load*
// creates every substrate first, then ResolveRelationships links them by
// name (spec §4.5).
type Loader struct {
	registry *substrate.Registry
	graph    *relgraph.Graph

	byName  map[string]identity.Identity
	records map[string]Record
	pending []PendingRelationship
}

// NewLoader builds a Loader writing into reg and graph.
func NewLoader(reg *substrate.Registry, graph *relgraph.Graph) *Loader {
	return &Loader{
		registry: reg,
		graph:    graph,
		byName:   make(map[string]identity.Identity),
		records:  make(map[string]Record),
	}
}

// LoadFile reads path as YAML and ingests its seeds, mirroring the
// teacher's pkg/config.LoadFile read-then-unmarshal shape. A missing file
// is not an error — callers may point at an optional seed directory.
func (l *Loader) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return l.LoadBytes(data)
}

// LoadBytes parses data as a seed YAML document and ingests every record.
// Validation failures are aggregated via go-multierror so one call reports
// every invalid record, not just the first.
func (l *Loader) LoadBytes(data []byte) error {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return err
	}

	var result *multierror.Error
	for _, r := range f.Seeds {
		if err := l.ingest(r); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (l *Loader) ingest(r Record) error {
	if r.Name == "" {
		return kernelerr.SeedValidationError("name")
	}
	if r.Category == "" {
		return kernelerr.SeedValidationError("category")
	}
	if r.Definition == "" {
		return kernelerr.SeedValidationError("definition")
	}
	if len(r.Usage) == 0 {
		return kernelerr.SeedValidationError("usage")
	}
	if r.Meaning == "" {
		return kernelerr.SeedValidationError("meaning")
	}

	if existing, ok := l.records[r.Name]; ok {
		if existing.Definition != r.Definition {
			return kernelerr.SeedConflict(r.Name)
		}
		return nil
	}

	expr, err := l.buildExpression(r)
	if err != nil {
		return err
	}

	s := substrate.New(expr)
	l.registry.Insert(s)
	l.records[r.Name] = r
	l.byName[r.Name] = s.Identity()
	return nil
}

// buildExpression compiles expression_source when present (spec §4.5
// records MAY carry executable expression source); records without one
// fall back to a constant expression over the record's definition text.
func (l *Loader) buildExpression(r Record) (expression.Expression, error) {
	if strings.TrimSpace(r.ExpressionSource) == "" {
		return expression.Constant(r.Name+":"+r.Definition, r.Definition), nil
	}
	return expression.Compile(r.ExpressionSource, expression.DefaultCompileOptions())
}

// ResolveRelationships adds every ingested record's declared relationships
// to the graph now that all names are known. Unresolved targets are
// collected as PendingRelationship diagnostics rather than failing the
// call (spec §4.5 step 6).
func (l *Loader) ResolveRelationships() []PendingRelationship {
	l.pending = nil
	for name, r := range l.records {
		source := l.byName[name]
		for _, ref := range r.Relationships {
			target, ok := l.byName[ref.Target]
			if !ok {
				l.pending = append(l.pending, PendingRelationship{From: name, Target: ref.Target, Kind: ref.Kind})
				continue
			}
			rel := relgraph.NewRelationship(source, target, relgraph.Kind(ref.Kind), nil)
			_ = l.graph.Add(rel)
		}
	}
	return l.pending
}

// Pending returns the diagnostics from the most recent ResolveRelationships
// call.
func (l *Loader) Pending() []PendingRelationship {
	return l.pending
}
