package substrate

import (
	"testing"

	"github.com/r3e-network/substrate-core/expression"
)

func TestDivide_NineDimensionsFibonacciShape(t *testing.T) {
	s := New(expression.Constant("identity:1", 1))
	dims := s.Divide()

	if len(dims) != 9 {
		t.Fatalf("Divide() returned %d dimensions, want 9", len(dims))
	}
	want := FibonacciIndices
	for i, d := range dims {
		if d.FibIndex != want[i] {
			t.Fatalf("dims[%d].FibIndex = %d, want %d", i, d.FibIndex, want[i])
		}
	}
}

func TestDivide_Memoized(t *testing.T) {
	s := New(expression.Constant("identity:2", 2))
	first := s.Divide()
	second := s.Divide()
	for i := range first {
		if !first[i].ID.Equal(second[i].ID) {
			t.Fatalf("Divide() not memoized: dims[%d] differ across calls", i)
		}
	}
}

func TestDivide_DeterministicAcrossSubstrates(t *testing.T) {
	a := New(expression.Constant("identity:3", 3))
	b := New(expression.Constant("identity:3", 3))
	da, db := a.Divide(), b.Divide()
	for i := range da {
		if !da[i].ID.Equal(db[i].ID) {
			t.Fatalf("dims[%d] differ for substrates sharing an identity", i)
		}
	}
}
