package srl

import (
	"context"
	"fmt"
	"sync"

	"github.com/r3e-network/substrate-core/kernelerr"
)

// FetchRequest carries everything an adapter needs to perform one fetch
// (spec §4.6 fetch contract): a query the adapter interprets per its own
// kind, structured parameters, the connection string and adapter config
// from the owning SRL, and (when set) the decrypted credential bytes.
type FetchRequest struct {
	Query      string
	Params     map[string]any
	Connection string
	Config     map[string]string
	Credential []byte
}

// FetchResult is what an adapter returns on success. JSONPath is populated
// only by adapters that queried structured data (the HTTP adapter) and is
// empty otherwise.
type FetchResult struct {
	Bytes    []byte
	JSONPath string
}

// Adapter performs one external fetch for a given SRL kind. Adapters never
// see raw credentials outside of Fetch's call — the table decrypts just
// before invoking and the plaintext is zeroed immediately after Fetch
// returns.
type Adapter interface {
	Fetch(ctx context.Context, req FetchRequest) (FetchResult, error)
}

// Adapters is a kind-dispatched adapter registry (spec §4.6 step 3:
// "selects the adapter by kind").
type Adapters struct {
	mu   sync.RWMutex
	byKind map[Kind]Adapter
}

// NewAdapters builds an empty adapter registry.
func NewAdapters() *Adapters {
	return &Adapters{byKind: make(map[Kind]Adapter)}
}

// Register associates kind with adapter, overwriting any previous
// registration.
func (a *Adapters) Register(kind Kind, adapter Adapter) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.byKind[kind] = adapter
}

// Get returns the adapter for kind, or AdapterUnavailable.
func (a *Adapters) Get(kind Kind) (Adapter, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	adapter, ok := a.byKind[kind]
	if !ok {
		return nil, kernelerr.AdapterUnavailable(kind.String())
	}
	return adapter, nil
}

// NewDefaultAdapters builds a registry with the file, HTTP, and socket
// adapters wired in, plus the database adapter when db is non-nil; with a
// nil db no adapter is registered for KindDatabase.
func NewDefaultAdapters(httpCfg HTTPAdapterConfig, db DatabaseQuerier) *Adapters {
	a := NewAdapters()
	a.Register(KindFile, &FileAdapter{})
	a.Register(KindHTTP, NewHTTPAdapter(httpCfg))
	if db != nil {
		a.Register(KindDatabase, &DatabaseAdapter{Querier: db})
	}
	a.Register(KindSocket, &SocketAdapter{})
	return a
}

func sanitize(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%v", err)
}
