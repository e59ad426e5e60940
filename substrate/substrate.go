// Package substrate implements the atomic immutable unit of the dimensional
// computation core: an (identity, expression) pair, plus the Registry that
// exclusively owns every substrate (spec §3 Ownership, §4.2).
package substrate

import (
	"crypto/sha256"
	"encoding/binary"
	"sync"

	"github.com/r3e-network/substrate-core/expression"
	"github.com/r3e-network/substrate-core/identity"
)

// FibonacciIndices are the nine dimensional levels every substrate divides
// into, per spec §3 and §8 property 3.
var FibonacciIndices = [9]int{0, 1, 1, 2, 3, 5, 8, 13, 21}

// Dimension is one of the nine indexed projections of a substrate.
type Dimension struct {
	Position int               // 0..8, this dimension's slot
	FibIndex int               // the Fibonacci level this slot carries
	ID       identity.Identity // deterministic child identity
}

// Substrate is the atomic (identity, expression) pair. It is immutable
// after construction: "changing" a substrate means creating a new one and
// linking the two with a relationship (spec §3 Lifecycle).
type Substrate struct {
	id   identity.Identity
	expr expression.Expression

	divideOnce sync.Once
	dimensions [9]Dimension
}

// New wraps an expression as a Substrate. The substrate's identity is the
// expression's identity — the substrate adds no identity of its own,
// keeping "two substrates with identical expressions share identity"
// (spec §3) true by construction.
func New(expr expression.Expression) *Substrate {
	return &Substrate{id: expr.Identity(), expr: expr}
}

// Identity returns the substrate's identity.
func (s *Substrate) Identity() identity.Identity { return s.id }

// Expression returns the wrapped expression.
func (s *Substrate) Expression() expression.Expression { return s.expr }

// Invoke evaluates the wrapped expression. Callers that need the registry's
// determinism cross-check should go through Registry.Invoke instead.
func (s *Substrate) Invoke(params expression.Params) (expression.Value, error) {
	return s.expr.Invoke(params)
}

// Divide lazily computes and memoizes the substrate's nine dimensions. Each
// child identity is derived deterministically from the parent identity and
// the child's position, so dividing the same substrate twice always yields
// the same nine identities (spec §8 property 3).
func (s *Substrate) Divide() [9]Dimension {
	s.divideOnce.Do(func() {
		for i, fib := range FibonacciIndices {
			s.dimensions[i] = Dimension{
				Position: i,
				FibIndex: fib,
				ID:       childIdentity(s.id, i),
			}
		}
	})
	return s.dimensions
}

// childIdentity derives dimension i's identity from a parent identity. It
// is a package-level function (not a method), exported as ChildIdentity, so
// operator.Divide
// can reuse the exact same derivation when it needs to describe the
// relationships between a parent and its nine children without importing
// substrate's internal memoization machinery twice.
func childIdentity(parent identity.Identity, position int) identity.Identity {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[0:8], parent.Value())
	binary.BigEndian.PutUint64(buf[8:16], uint64(position))
	sum := sha256.Sum256(buf[:])
	return identity.FromUint64(binary.BigEndian.Uint64(sum[len(sum)-8:]))
}

// ChildIdentity is the exported form of childIdentity, for callers (the
// operator package) that must reproduce a substrate's dimensional identities
// without holding the *Substrate itself.
func ChildIdentity(parent identity.Identity, position int) identity.Identity {
	return childIdentity(parent, position)
}
