package seed

import (
	"strings"

	"github.com/r3e-network/substrate-core/identity"
	"github.com/r3e-network/substrate-core/kernelerr"
)

// GetByName returns the record ingested under name, if any.
func (l *Loader) GetByName(name string) (Record, bool) {
	r, ok := l.records[name]
	return r, ok
}

// IdentityOf returns the identity a given seed name resolved to.
func (l *Loader) IdentityOf(name string) (identity.Identity, bool) {
	id, ok := l.byName[name]
	return id, ok
}

// GetByCategory returns every ingested record with the given category.
func (l *Loader) GetByCategory(category string) []Record {
	return l.filter(func(r Record) bool { return r.Category == category })
}

// GetByDomain returns every ingested record with the given domain.
func (l *Loader) GetByDomain(domain string) []Record {
	return l.filter(func(r Record) bool { return r.Domain == domain })
}

// GetByTag returns every ingested record carrying tag.
func (l *Loader) GetByTag(tag string) []Record {
	return l.filter(func(r Record) bool {
		for _, t := range r.Tags {
			if t == tag {
				return true
			}
		}
		return false
	})
}

// Search returns every record whose name, definition, or meaning contains
// query as a case-insensitive substring.
func (l *Loader) Search(query string) []Record {
	q := strings.ToLower(query)
	return l.filter(func(r Record) bool {
		return strings.Contains(strings.ToLower(r.Name), q) ||
			strings.Contains(strings.ToLower(r.Definition), q) ||
			strings.Contains(strings.ToLower(r.Meaning), q)
	})
}

func (l *Loader) filter(pred func(Record) bool) []Record {
	var out []Record
	for _, r := range l.records {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

// Closure walks name's relationships depth-first, collecting every
// transitively reachable seed name, bounded by maxDepth and guarded by a
// visited set so cycles terminate instead of recursing forever (spec §5
// "recursive seed relationships are resolved depth-first with a visited
// set and a hard depth limit; exceeding it raises ExcessiveRecursion").
func (l *Loader) Closure(name string, maxDepth int) ([]string, error) {
	visited := map[string]bool{}
	var out []string
	if err := l.closureDFS(name, 0, maxDepth, visited, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (l *Loader) closureDFS(name string, depth, maxDepth int, visited map[string]bool, out *[]string) error {
	if depth > maxDepth {
		return kernelerr.ExcessiveRecursion()
	}
	if visited[name] {
		return nil
	}
	visited[name] = true

	r, ok := l.records[name]
	if !ok {
		return nil
	}
	for _, ref := range r.Relationships {
		if visited[ref.Target] {
			continue
		}
		*out = append(*out, ref.Target)
		if err := l.closureDFS(ref.Target, depth+1, maxDepth, visited, out); err != nil {
			return err
		}
	}
	return nil
}
