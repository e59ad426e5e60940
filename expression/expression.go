// Package expression implements the pure, deterministic callables that a
// substrate wraps. Expressions are a closed sum type rather than a class
// hierarchy (spec §9): adding a new kind means an explicit edit here and to
// every exhaustive match over Kind, never an open-ended interface hierarchy.
package expression

import (
	"github.com/r3e-network/substrate-core/identity"
)

// Kind identifies which member of the closed expression sum type a value is.
type Kind int

const (
	// KindConstant evaluates to a fixed value independent of params.
	KindConstant Kind = iota
	// KindComposed is compiled from the expression-source mini-language.
	KindComposed
	// KindProjected wraps a dimension projection as a re-evaluable expression.
	KindProjected
	// KindResidueSeeded carries a modulus residue used to seed the next
	// dimensional level.
	KindResidueSeeded
	// KindSRLSpawned re-returns the identity of bytes fetched by an SRL.
	KindSRLSpawned
)

func (k Kind) String() string {
	switch k {
	case KindConstant:
		return "constant"
	case KindComposed:
		return "composed"
	case KindProjected:
		return "projected"
	case KindResidueSeeded:
		return "residue_seeded"
	case KindSRLSpawned:
		return "srl_spawned"
	default:
		return "unknown"
	}
}

// Params is the keyword-parameter bag an Expression is invoked with.
type Params map[string]any

// Value is whatever an Expression evaluates to: a scalar, a nested map, or
// an Identity (used when an expression's result is itself substrate-shaped).
type Value any

// Callable is the pure function an Expression wraps. It must perform no
// I/O, touch no hidden state, and draw no randomness — same Params in,
// same Value out, always.
type Callable func(params Params) (Value, error)

// Expression is an immutable, content-addressed, pure callable.
type Expression struct {
	kind   Kind
	source string
	id     identity.Identity
	call   Callable
}

// New builds an Expression of the given kind from canonical source text and
// a compiled callable. The identity is derived from the source, satisfying
// non-duplication (spec §8 property 1): two expressions with identical
// canonical source always share an identity.
func New(kind Kind, source string, call Callable) Expression {
	return Expression{
		kind:   kind,
		source: source,
		id:     identity.DeriveFromSource(source),
		call:   call,
	}
}

// WithIdentity builds an Expression whose identity is supplied directly
// rather than derived from source — used for SRL-spawned and residue-seeded
// expressions whose identity encodes something other than source text
// (spec §4.6 "spawn_rule... typically hash(bytes)").
func WithIdentity(kind Kind, source string, id identity.Identity, call Callable) Expression {
	return Expression{kind: kind, source: source, id: id, call: call}
}

// Kind reports which sum-type member this expression is.
func (e Expression) Kind() Kind { return e.kind }

// Source returns the persisted expression source text. Per spec §9 Open
// Question 1, source is what gets persisted for reproducibility; no
// evaluated data is stored alongside it.
func (e Expression) Source() string { return e.source }

// Identity returns the content-addressed identity derived from source (or
// supplied explicitly for spawned/residue expressions).
func (e Expression) Identity() identity.Identity { return e.id }

// Invoke evaluates the expression against params. Callers needing
// determinism cross-checking should use substrate.Registry.Invoke rather
// than calling this directly.
func (e Expression) Invoke(params Params) (Value, error) {
	if e.call == nil {
		return nil, nil
	}
	return e.call(params)
}

// Constant builds a KindConstant expression that ignores its params.
func Constant(source string, value Value) Expression {
	return New(KindConstant, source, func(Params) (Value, error) {
		return value, nil
	})
}
