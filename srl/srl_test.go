package srl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/r3e-network/substrate-core/kernelerr"
	"github.com/r3e-network/substrate-core/relgraph"
	"github.com/r3e-network/substrate-core/substrate"
)

func newTestTable(t *testing.T) *Table {
	t.Helper()
	reg := substrate.NewRegistry(4, 16)
	graph := relgraph.New(4, reg)
	adapters := NewDefaultAdapters(DefaultHTTPAdapterConfig(), nil)
	keys := NewKeyDeriver([]byte("test-master-key-not-for-production"))
	log := NewFetchLog()
	return NewTable(adapters, keys, log, reg, graph, 3)
}

func TestIdentity_SameResourceSameIdentity(t *testing.T) {
	a := Identity(KindFile, NamespaceHash("local"), PathHash("/tmp/x"))
	b := Identity(KindFile, NamespaceHash("local"), PathHash("/tmp/x"))
	if !a.Equal(b) {
		t.Fatalf("expected identical resource to hash to same identity")
	}
}

// TestFetch_FileAdapter_Scenario4 mirrors spec scenario S4: a File SRL,
// one fetch, exactly one new log entry, status reflects outcome, and the
// log never carries credential bytes.
func TestFetch_FileAdapter_Scenario4(t *testing.T) {
	table := newTestTable(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "x")
	if err := os.WriteFile(path, []byte("hello world"), 0o600); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	cred, err := table.keys.Encrypt([]byte("super-secret-token"))
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	s := New("local-file", KindFile, path, cred, nil, 0)
	table.Register(s)

	result, spawned, err := table.Fetch(context.Background(), "actor-1", s.ID, "", nil, SpawnRequest{Enabled: true})
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if string(result.Bytes) != "hello world" {
		t.Fatalf("Fetch() bytes = %q, want %q", result.Bytes, "hello world")
	}
	if spawned.Value() == 0 {
		t.Fatalf("expected a non-zero spawned substrate identity")
	}

	if s.Status() != StateConnected {
		t.Fatalf("Status() = %v, want connected", s.Status())
	}

	entries := table.log.Page(s.ID.String(), -1, 10)
	if len(entries) != 1 {
		t.Fatalf("expected exactly 1 fetch log entry, got %d", len(entries))
	}
	if !entries[0].Success {
		t.Fatalf("expected success=true")
	}
	if containsCredential(entries[0], "super-secret-token") {
		t.Fatalf("fetch log entry leaked credential bytes")
	}
}

func containsCredential(e FetchLogEntry, secret string) bool {
	return contains(e.QueryCanonical, secret) || contains(e.ParamsCanonical, secret) || contains(e.ErrorSanitized, secret)
}

func contains(haystack, needle string) bool {
	return len(needle) > 0 && len(haystack) >= len(needle) && indexOf(haystack, needle) >= 0
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

func TestFetch_FileAdapter_FailureDisconnects(t *testing.T) {
	table := newTestTable(t)
	s := New("missing-file", KindFile, "/nonexistent/path/does-not-exist", nil, nil, 0)
	table.Register(s)

	_, _, err := table.Fetch(context.Background(), "actor-1", s.ID, "", nil, SpawnRequest{})
	if kind, ok := kernelerr.Of(err); !ok || kind != kernelerr.KindFetchFailed {
		t.Fatalf("expected FetchFailed, got %v", err)
	}
	if s.Status() != StateDisconnected {
		t.Fatalf("Status() = %v, want disconnected", s.Status())
	}

	entries := table.log.Page(s.ID.String(), -1, 10)
	if len(entries) != 1 || entries[0].Success {
		t.Fatalf("expected exactly 1 failed fetch log entry, got %v", entries)
	}
}

func TestFetch_RejectsDisabledAndBlacklisted(t *testing.T) {
	table := newTestTable(t)
	s := New("x", KindFile, "/tmp/x", nil, nil, 0)
	table.Register(s)

	if err := table.Disable(s.ID); err != nil {
		t.Fatalf("Disable() error: %v", err)
	}
	_, _, err := table.Fetch(context.Background(), "actor-1", s.ID, "", nil, SpawnRequest{})
	if kind, ok := kernelerr.Of(err); !ok || kind != kernelerr.KindSRLDisabled {
		t.Fatalf("expected SRLDisabled, got %v", err)
	}

	if err := table.Blacklist(s.ID); err != nil {
		t.Fatalf("Blacklist() error: %v", err)
	}
	_, _, err = table.Fetch(context.Background(), "actor-1", s.ID, "", nil, SpawnRequest{})
	if kind, ok := kernelerr.Of(err); !ok || kind != kernelerr.KindSRLBlacklisted {
		t.Fatalf("expected SRLBlacklisted, got %v", err)
	}
}

func TestFetch_ConsecutiveFailuresBlacklist(t *testing.T) {
	table := newTestTable(t)
	s := New("flaky", KindFile, "/nonexistent/path", nil, nil, 0)
	table.Register(s)

	for i := 0; i < 3; i++ {
		_, _, _ = table.Fetch(context.Background(), "actor-1", s.ID, "", nil, SpawnRequest{})
	}
	if s.Status() != StateBlacklisted {
		t.Fatalf("Status() after 3 consecutive failures = %v, want blacklisted", s.Status())
	}
}

func TestWithDecryptedCredentials_ZeroesBuffer(t *testing.T) {
	keys := NewKeyDeriver([]byte("test-master-key-not-for-production"))
	cred, err := keys.Encrypt([]byte("secret-value"))
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	s := &SRL{credential: cred}

	var captured, ref []byte
	err = WithDecryptedCredentials(keys, s, func(plain []byte) error {
		ref = plain
		captured = make([]byte, len(plain))
		copy(captured, plain)
		if string(plain) != "secret-value" {
			t.Fatalf("plaintext = %q, want secret-value", plain)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithDecryptedCredentials() error: %v", err)
	}
	if string(captured) != "secret-value" {
		t.Fatalf("captured copy should retain the plaintext independent of zeroing")
	}
	for i, b := range ref {
		if b != 0 {
			t.Fatalf("plaintext buffer byte %d = %#x after return, want zeroed", i, b)
		}
	}
}
