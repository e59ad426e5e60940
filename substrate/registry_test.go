package substrate

import (
	"testing"

	"github.com/r3e-network/substrate-core/expression"
	"github.com/r3e-network/substrate-core/identity"
	"github.com/r3e-network/substrate-core/kernelerr"
)

func TestRegistry_NonDuplication(t *testing.T) {
	reg := NewRegistry(4, 0)
	a := New(expression.Constant("constant:42", 42))
	b := New(expression.Constant("constant:42", 42))

	got1 := reg.Insert(a)
	got2 := reg.Insert(b)
	if got1 != got2 {
		t.Fatalf("expected Insert to return the same substrate for identical expressions")
	}
}

func TestRegistry_GetMissing(t *testing.T) {
	reg := NewRegistry(4, 0)
	_, err := reg.Get(identity.DeriveFromSource("missing"))
	if kind, ok := kernelerr.Of(err); !ok || kind != kernelerr.KindIdentityNotFound {
		t.Fatalf("expected IdentityNotFound, got %v", err)
	}
}

func TestRegistry_InvokeIsDeterministicAndCached(t *testing.T) {
	reg := NewRegistry(4, 0)
	s := reg.Insert(New(expression.Constant("constant:7", 7)))

	first, err := reg.Invoke(s.Identity(), nil)
	if err != nil {
		t.Fatalf("Invoke() error: %v", err)
	}
	second, err := reg.Invoke(s.Identity(), nil)
	if err != nil {
		t.Fatalf("Invoke() error: %v", err)
	}
	if first != second {
		t.Fatalf("Invoke() not deterministic: %v != %v", first, second)
	}
}

func TestRegistry_Exists(t *testing.T) {
	reg := NewRegistry(4, 0)
	s := reg.Insert(New(expression.Constant("constant:1", 1)))
	if !reg.Exists(s.Identity()) {
		t.Fatalf("expected Exists() true for inserted substrate")
	}
	if reg.Exists(identity.DeriveFromSource("never-inserted")) {
		t.Fatalf("expected Exists() false for unregistered identity")
	}
}
