package lens

import (
	"context"
	"errors"
	"testing"

	"github.com/r3e-network/substrate-core/expression"
	"github.com/r3e-network/substrate-core/identity"
	"github.com/r3e-network/substrate-core/kernelerr"
	"github.com/r3e-network/substrate-core/substrate"
)

func newTestRegistry(t *testing.T) (*substrate.Registry, *substrate.Substrate) {
	t.Helper()
	reg := substrate.NewRegistry(4, 16)
	expr := expression.Constant("lens-fixture", 42)
	s := substrate.New(expr)
	reg.Insert(s)
	return reg, s
}

func TestObserve_ProjectsDimension(t *testing.T) {
	reg, s := newTestRegistry(t)

	obs, err := Observe(context.Background(), reg, s.Identity(), 3, IdentityLens)
	if err != nil {
		t.Fatalf("Observe() error: %v", err)
	}
	if obs.ID == "" {
		t.Fatalf("expected a non-empty observation ID")
	}
	if obs.SubstrateID != s.Identity() {
		t.Fatalf("SubstrateID = %v, want %v", obs.SubstrateID, s.Identity())
	}
	if obs.DimensionIndex != 3 {
		t.Fatalf("DimensionIndex = %d, want 3", obs.DimensionIndex)
	}
	dims := s.Divide()
	if obs.Value != dims[3].ID.String() {
		t.Fatalf("Value = %v, want %v", obs.Value, dims[3].ID.String())
	}
}

func TestObserve_RejectsOutOfRangeDimension(t *testing.T) {
	reg, s := newTestRegistry(t)

	_, err := Observe(context.Background(), reg, s.Identity(), 9, IdentityLens)
	if kind, ok := kernelerr.Of(err); !ok || kind != kernelerr.KindInvalidDimensionIndex {
		t.Fatalf("expected InvalidDimensionIndex, got %v", err)
	}
}

func TestObserve_MissingSubstrate(t *testing.T) {
	reg := substrate.NewRegistry(4, 16)
	missing := identity.DeriveFromSource("never-inserted")

	_, err := Observe(context.Background(), reg, missing, 0, IdentityLens)
	if kind, ok := kernelerr.Of(err); !ok || kind != kernelerr.KindIdentityNotFound {
		t.Fatalf("expected IdentityNotFound, got %v", err)
	}
}

func TestObserve_PropagatesLensError(t *testing.T) {
	reg, s := newTestRegistry(t)

	failing := func(dim substrate.Dimension) (any, error) {
		return nil, errors.New("lens failure")
	}

	_, err := Observe(context.Background(), reg, s.Identity(), 0, failing)
	if kind, ok := kernelerr.Of(err); !ok || kind != kernelerr.KindExpressionEvaluationFailed {
		t.Fatalf("expected ExpressionEvaluationFailed, got %v", err)
	}
}

func TestObserve_RespectsCancelledContext(t *testing.T) {
	reg, s := newTestRegistry(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Observe(ctx, reg, s.Identity(), 0, IdentityLens)
	if err == nil {
		t.Fatalf("expected an error for a cancelled context")
	}
}
