package substrate

import (
	"encoding/json"
	"math/rand"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/r3e-network/substrate-core/expression"
	"github.com/r3e-network/substrate-core/identity"
	"github.com/r3e-network/substrate-core/kernelerr"
)

const defaultRegistryShardCount = 16
const defaultInvocationCacheSize = 4096

// registryShard holds one partition of the registry, guarded by its own
// lock so unrelated identities never contend (spec §5).
type registryShard struct {
	mu   sync.RWMutex
	byID map[identity.Identity]*Substrate
}

// Registry is the sole owner of every Substrate (spec §3 Ownership). All
// external holders keep only Identity values, never *Substrate pointers
// directly — Get is the only way back to a substrate, and it is meant to be
// called from inside the gateway, not scattered across callers.
type Registry struct {
	shards []*registryShard

	invocationCache *lru.Cache[invocationKey, expression.Value]

	// DeterminismSamplePercent controls how often Invoke re-runs an
	// expression to cross-check determinism (spec §4.2 "the registry MAY
	// cross-check a random sample of invocations"). 0 disables sampling.
	DeterminismSamplePercent int
}

type invocationKey struct {
	id     identity.Identity
	params string
}

// NewRegistry builds a Registry sharded shardCount ways with an LRU
// invocation cache of the given size.
func NewRegistry(shardCount, cacheSize int) *Registry {
	if shardCount <= 0 {
		shardCount = defaultRegistryShardCount
	}
	if cacheSize <= 0 {
		cacheSize = defaultInvocationCacheSize
	}
	cache, _ := lru.New[invocationKey, expression.Value](cacheSize)

	r := &Registry{shards: make([]*registryShard, shardCount), invocationCache: cache}
	for i := range r.shards {
		r.shards[i] = &registryShard{byID: make(map[identity.Identity]*Substrate)}
	}
	return r
}

func (r *Registry) shardFor(id identity.Identity) *registryShard {
	return r.shards[id.Value()%uint64(len(r.shards))]
}

// Insert returns the existing substrate if one with s.Identity() is already
// registered (non-duplication, spec §8 property 1), otherwise inserts and
// returns s.
func (r *Registry) Insert(s *Substrate) *Substrate {
	shard := r.shardFor(s.Identity())
	shard.mu.Lock()
	defer shard.mu.Unlock()
	if existing, ok := shard.byID[s.Identity()]; ok {
		return existing
	}
	shard.byID[s.Identity()] = s
	return s
}

// Get returns the substrate for id, or IdentityNotFound.
func (r *Registry) Get(id identity.Identity) (*Substrate, error) {
	shard := r.shardFor(id)
	shard.mu.RLock()
	defer shard.mu.RUnlock()
	s, ok := shard.byID[id]
	if !ok {
		return nil, kernelerr.IdentityNotFound(id.String())
	}
	return s, nil
}

// Exists reports whether id is registered. It satisfies relgraph.Existence.
func (r *Registry) Exists(id identity.Identity) bool {
	shard := r.shardFor(id)
	shard.mu.RLock()
	defer shard.mu.RUnlock()
	_, ok := shard.byID[id]
	return ok
}

// Iter calls fn for every registered substrate. fn receives a live pointer;
// it must not mutate the substrate (substrates are immutable by contract,
// not by Go-level enforcement).
func (r *Registry) Iter(fn func(*Substrate)) {
	for _, shard := range r.shards {
		shard.mu.RLock()
		for _, s := range shard.byID {
			fn(s)
		}
		shard.mu.RUnlock()
	}
}

// Invoke evaluates substrate id's expression against params, memoizing on
// (identity, canonicalized params) per spec §4.2, and occasionally
// cross-checking determinism by re-invoking and comparing (spec §4.2
// "the registry MAY cross-check a random sample of invocations").
func (r *Registry) Invoke(id identity.Identity, params expression.Params) (expression.Value, error) {
	s, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	key, err := canonicalInvocationKey(id, params)
	if err != nil {
		return nil, kernelerr.ExpressionEvaluationFailed(err)
	}

	if cached, ok := r.invocationCache.Get(key); ok {
		if r.shouldSample() {
			fresh, err := s.Invoke(params)
			if err != nil {
				return nil, kernelerr.ExpressionEvaluationFailed(err)
			}
			if !valuesEqual(cached, fresh) {
				return nil, kernelerr.ExpressionNotDeterministic()
			}
		}
		return cached, nil
	}

	value, err := s.Invoke(params)
	if err != nil {
		return nil, kernelerr.ExpressionEvaluationFailed(err)
	}
	r.invocationCache.Add(key, value)
	return value, nil
}

func (r *Registry) shouldSample() bool {
	if r.DeterminismSamplePercent <= 0 {
		return false
	}
	return rand.Intn(100) < r.DeterminismSamplePercent
}

// canonicalInvocationKey renders params as a stable string so that
// semantically-equal param bags share a cache entry regardless of Go map
// iteration order.
func canonicalInvocationKey(id identity.Identity, params expression.Params) (invocationKey, error) {
	raw, err := json.Marshal(sortedParams(params))
	if err != nil {
		return invocationKey{}, err
	}
	return invocationKey{id: id, params: string(raw)}, nil
}

func sortedParams(params expression.Params) map[string]any {
	if params == nil {
		return map[string]any{}
	}
	return map[string]any(params)
}

func valuesEqual(a, b expression.Value) bool {
	aj, errA := json.Marshal(a)
	bj, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(aj) == string(bj)
}
