package kernelerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "without underlying error",
			err:  New(KindIdentityNotFound, "test message"),
			want: "[IDENTITY_NOT_FOUND] test message",
		},
		{
			name: "with underlying error",
			err:  Wrap(KindFetchFailed, "test message", errors.New("timeout")),
			want: "[FETCH_FAILED] test message: timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", IdentityNotFound("0x1"))
	if !errors.Is(wrapped, New(KindIdentityNotFound, "")) {
		t.Fatalf("expected errors.Is to match on Kind")
	}
	if errors.Is(wrapped, New(KindFetchFailed, "")) {
		t.Fatalf("expected errors.Is to not match a different Kind")
	}
}

func TestError_Of(t *testing.T) {
	kind, ok := Of(SRLBlacklisted("srl-1"))
	if !ok || kind != KindSRLBlacklisted {
		t.Fatalf("Of() = (%v, %v), want (%v, true)", kind, ok, KindSRLBlacklisted)
	}

	if _, ok := Of(errors.New("plain")); ok {
		t.Fatalf("Of() should not match a plain error")
	}
}

func TestError_WithDetails(t *testing.T) {
	err := New(KindSeedValidationError, "missing field").
		WithDetails("field", "name").
		WithDetails("record", 3)

	if len(err.Details) != 2 {
		t.Fatalf("Details length = %d, want 2", len(err.Details))
	}
	if err.Details["field"] != "name" {
		t.Fatalf("Details[field] = %v, want name", err.Details["field"])
	}
}
