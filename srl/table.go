package srl

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/r3e-network/substrate-core/expression"
	"github.com/r3e-network/substrate-core/identity"
	"github.com/r3e-network/substrate-core/kernelerr"
	"github.com/r3e-network/substrate-core/relgraph"
	"github.com/r3e-network/substrate-core/substrate"
)

// Table is the process-wide collection of SRLs (spec §9 "global state: the
// registry, graph, SRL table, and fetch log are process-wide"). All
// mutation goes through Fetch, Register, or Reenable/Disable/Blacklist.
type Table struct {
	mu       sync.RWMutex
	byID     map[identity.Identity]*SRL
	machines map[identity.Identity]*stateMachine

	adapters         *Adapters
	keys             *KeyDeriver
	log              *FetchLog
	registry         *substrate.Registry
	graph            *relgraph.Graph
	failureThreshold int
}

// NewTable wires a Table against the shared registry and relationship
// graph so spawned substrates and Lineage relationships land in the same
// stores every other subsystem observes.
func NewTable(adapters *Adapters, keys *KeyDeriver, log *FetchLog, registry *substrate.Registry, graph *relgraph.Graph, failureThreshold int) *Table {
	if failureThreshold <= 0 {
		failureThreshold = 5
	}
	return &Table{
		byID:             make(map[identity.Identity]*SRL),
		machines:         make(map[identity.Identity]*stateMachine),
		adapters:         adapters,
		keys:             keys,
		log:              log,
		registry:         registry,
		graph:            graph,
		failureThreshold: failureThreshold,
	}
}

// Register adds s to the table, returning the existing SRL if one with the
// same identity is already present (non-duplication, same discipline as
// substrate.Registry.Insert). An SRL is itself a substrate (spec glossary:
// "SRL — a substrate that lazily materializes an external resource"), so
// Register also inserts a placeholder substrate at s.ID into the shared
// registry — this is what lets a later Lineage relationship from a spawned
// substrate back to the SRL pass the graph's dangling-edge check.
func (t *Table) Register(s *SRL) *SRL {
	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.byID[s.ID]; ok {
		return existing
	}
	t.byID[s.ID] = s
	t.machines[s.ID] = newStateMachine(s, t.failureThreshold, nil)

	placeholder := expression.WithIdentity(expression.KindSRLSpawned, "srl:"+s.Name, s.ID, func(expression.Params) (expression.Value, error) {
		return s.Name, nil
	})
	t.registry.Insert(substrate.New(placeholder))
	return s
}

// Get returns the SRL registered under id.
func (t *Table) Get(id identity.Identity) (*SRL, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.byID[id]
	if !ok {
		return nil, kernelerr.IdentityNotFound(id.String())
	}
	return s, nil
}

// Disable and Blacklist perform the manual transitions spec §4.6's diagram
// allows from any state.
func (t *Table) Disable(id identity.Identity) error {
	return t.forceTransition(id, StateDisabled)
}

func (t *Table) Blacklist(id identity.Identity) error {
	return t.forceTransition(id, StateBlacklisted)
}

// Reenable is the only legal path out of disabled (spec: "disabled /
// blacklisted cannot transition to connected except through explicit
// re-enable").
func (t *Table) Reenable(id identity.Identity) error {
	return t.forceTransition(id, StateDisconnected)
}

func (t *Table) forceTransition(id identity.Identity, to State) error {
	t.mu.RLock()
	m, ok := t.machines[id]
	t.mu.RUnlock()
	if !ok {
		return kernelerr.IdentityNotFound(id.String())
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.srl.status = to
	return nil
}

// SpawnRequest asks Fetch to also materialize the fetched bytes as a new
// substrate, linked back to the SRL with a Lineage relationship (spec
// §4.6 "spawning substrates"; §9 Open Question 2).
type SpawnRequest struct {
	Enabled bool
}

// Fetch implements the SRL fetch contract end to end (spec §4.6 steps
// 1-7). Exactly one FetchLogEntry is appended regardless of outcome (spec
// §8 property 10).
func (t *Table) Fetch(ctx context.Context, actorID string, id identity.Identity, query string, params map[string]any, spawn SpawnRequest) (FetchResult, identity.Identity, error) {
	s, err := t.Get(id)
	if err == nil {
		switch s.Status() {
		case StateDisabled:
			err = kernelerr.SRLDisabled(id.String())
		case StateBlacklisted:
			err = kernelerr.SRLBlacklisted(id.String())
		}
	}
	if err != nil {
		t.log.Append(FetchLogEntry{SRLID: id.String(), ActorID: actorID, QueryCanonical: query, ParamsCanonical: canonicalParams(params), ErrorSanitized: sanitize(err), FetchedAtUnixMs: time.Now().UnixMilli()})
		return FetchResult{}, identity.Identity{}, err
	}

	t.mu.RLock()
	m := t.machines[id]
	t.mu.RUnlock()

	start := time.Now()
	m.transition(StateConnecting)

	adapter, err := t.adapters.Get(s.Kind)
	if err != nil {
		t.finish(m, s, actorID, query, params, start, FetchResult{}, err)
		return FetchResult{}, identity.Identity{}, err
	}

	var result FetchResult
	var fetchErr error
	credErr := WithDecryptedCredentials(t.keys, s, func(plain []byte) error {
		if err := ctx.Err(); err != nil {
			fetchErr = kernelerr.FetchCancelled()
			return fetchErr
		}
		req := FetchRequest{Query: query, Params: params, Connection: s.connectionString, Config: s.adapterConfig, Credential: plain}
		result, fetchErr = adapter.Fetch(ctx, req)
		return fetchErr
	})
	if credErr != nil {
		fetchErr = credErr
	}

	t.finish(m, s, actorID, query, params, start, result, fetchErr)
	if fetchErr != nil {
		if _, alreadyTyped := kernelerr.Of(fetchErr); alreadyTyped {
			return FetchResult{}, identity.Identity{}, fetchErr
		}
		return FetchResult{}, identity.Identity{}, kernelerr.FetchFailed(fetchErr)
	}

	var spawned identity.Identity
	if spawn.Enabled {
		spawned = t.spawn(s, result.Bytes)
	}
	return result, spawned, nil
}

func (t *Table) finish(m *stateMachine, s *SRL, actorID, query string, params map[string]any, start time.Time, result FetchResult, fetchErr error) {
	now := time.Now()
	nowMs := now.UnixMilli()
	duration := now.Sub(start).Milliseconds()

	entry := FetchLogEntry{
		SRLID:           s.ID.String(),
		ActorID:         actorID,
		QueryCanonical:  query,
		ParamsCanonical: canonicalParams(params),
		Success:         fetchErr == nil,
		ResultSizeBytes: len(result.Bytes),
		DurationMs:      duration,
		FetchedAtUnixMs: nowMs,
	}
	if fetchErr != nil {
		entry.ErrorSanitized = sanitize(fetchErr)
		m.recordFailure(entry.ErrorSanitized, nowMs)
	} else {
		m.recordSuccess(nowMs)
	}
	t.log.Append(entry)
}

// spawn derives a substrate identity from the fetched bytes (spec §4.6
// "typically hash(bytes) & 0xFFFF...FFFF"), inserts a KindSRLSpawned
// expression that re-returns that identity, and links the SRL and the
// spawned substrate with a Lineage relationship.
func (t *Table) spawn(s *SRL, data []byte) identity.Identity {
	spawnedID := identity.FromBytes(data)
	expr := expression.WithIdentity(expression.KindSRLSpawned, s.Name, spawnedID, func(expression.Params) (expression.Value, error) {
		return spawnedID.String(), nil
	})
	sub := substrate.New(expr)
	t.registry.Insert(sub)
	s.SubstrateIdentity = sub.Identity()

	_ = t.graph.Add(relgraph.NewRelationship(sub.Identity(), s.ID, relgraph.KindLineage, nil))
	return sub.Identity()
}

func canonicalParams(params map[string]any) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ordered := make(map[string]any, len(params))
	for _, k := range keys {
		ordered[k] = params[k]
	}
	encoded, err := json.Marshal(ordered)
	if err != nil {
		return ""
	}
	return string(encoded)
}
