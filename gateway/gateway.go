// Package gateway implements the sole publicly callable surface of the
// core (spec §4.7): every external caller reaches the registry, graph, SRL
// table, and observation log only through a Gateway method, never
// directly. Grounded on infrastructure/service.BaseService's shape
// (config + logger + lifecycle fields wrapping the domain-specific
// pieces), generalized beyond one product service.
package gateway

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/r3e-network/substrate-core/expression"
	"github.com/r3e-network/substrate-core/identity"
	"github.com/r3e-network/substrate-core/internal/coreconfig"
	"github.com/r3e-network/substrate-core/internal/obslog"
	"github.com/r3e-network/substrate-core/kernelerr"
	"github.com/r3e-network/substrate-core/lens"
	"github.com/r3e-network/substrate-core/relgraph"
	"github.com/r3e-network/substrate-core/srl"
	"github.com/r3e-network/substrate-core/substrate"
)

// Gateway is the only sanctioned external entry point (spec §4.7).
// Callers never hold a *substrate.Substrate or *srl.SRL directly — every
// method here takes and returns identities.
type Gateway struct {
	cfg coreconfig.Config
	log *obslog.Logger

	registry *substrate.Registry
	graph    *relgraph.Graph
	srlTable *srl.Table
	obsLog   *ObservationLog

	metrics *metrics

	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter
}

// ObservationLog is the append-only store lens.Observe writes into,
// separate from the registry (spec §4.4).
type ObservationLog struct {
	mu      sync.Mutex
	entries []lens.Observation
}

func (l *ObservationLog) append(o lens.Observation) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, o)
}

// Entries returns every observation recorded so far, oldest first.
func (l *ObservationLog) Entries() []lens.Observation {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]lens.Observation, len(l.entries))
	copy(out, l.entries)
	return out
}

// New wires a Gateway over the given shared stores (spec §9 "Global
// state": registry, graph, SRL table are process-wide, created once at
// init and passed in here rather than constructed internally).
func New(cfg coreconfig.Config, log *obslog.Logger, registry *substrate.Registry, graph *relgraph.Graph, srlTable *srl.Table) *Gateway {
	return &Gateway{
		cfg:      cfg,
		log:      log,
		registry: registry,
		graph:    graph,
		srlTable: srlTable,
		obsLog:   &ObservationLog{},
		metrics:  newMetrics(),
		limiters: make(map[string]*rate.Limiter),
	}
}

// limiterFor returns (creating if needed) the per-actor limiter used to
// rate-limit SRL fetches at the surface level (spec §6: "callers
// rate-limit at the surface level").
func (g *Gateway) limiterFor(actorID string) *rate.Limiter {
	g.limiterMu.Lock()
	defer g.limiterMu.Unlock()
	l, ok := g.limiters[actorID]
	if !ok {
		rps := g.cfg.SRL.FetchRatePerSecond
		burst := g.cfg.SRL.FetchBurst
		if rps <= 0 {
			rps = 20
		}
		if burst <= 0 {
			burst = 40
		}
		l = rate.NewLimiter(rate.Limit(rps), burst)
		g.limiters[actorID] = l
	}
	return l
}

func (g *Gateway) instrument(operation string, err *error) func() {
	start := time.Now()
	return func() {
		g.metrics.observe(operation, time.Since(start).Seconds(), *err)
	}
}

// CreateExpression validates and compiles source, registers the resulting
// substrate, and returns its identity (spec §4.7: "validation of incoming
// expression sources").
func (g *Gateway) CreateExpression(ctx context.Context, actorID, source string) (id identity.Identity, err error) {
	defer g.instrument("create_expression", &err)()

	if len(source) > g.cfg.Expression.MaxSourceBytes {
		g.metrics.reject("source_too_large")
		return identity.Identity{}, kernelerr.ExpressionSourceRejected("source exceeds configured byte budget")
	}

	opts := expression.CompileOptions{
		MaxSourceBytes: g.cfg.Expression.MaxSourceBytes,
		InterruptAfter: time.Duration(g.cfg.Expression.InterruptMillis) * time.Millisecond,
	}
	expr, err := expression.Compile(source, opts)
	if err != nil {
		g.metrics.reject("compile_failed")
		return identity.Identity{}, err
	}

	sub := substrate.New(expr)
	inserted := g.registry.Insert(sub)
	return inserted.Identity(), nil
}

// Redefine always fails: the gateway enforces that no external caller may
// mutate an existing substrate (spec §4.7 "law-compliance checks before
// sensitive operations (e.g., rejecting operations that would require
// mutating an existing substrate)"). It exists so that intent is a named,
// testable operation rather than an implicit absence.
func (g *Gateway) Redefine(ctx context.Context, id identity.Identity, newSource string) (err error) {
	defer g.instrument("redefine", &err)()
	g.metrics.reject("mutation_attempt")
	return kernelerr.LawViolation("substrates are immutable; create a new one instead of redefining " + id.String())
}

// Invoke evaluates the substrate at id against params, routed through the
// registry's determinism cross-check (spec §4.7 "routing to invoke").
func (g *Gateway) Invoke(ctx context.Context, id identity.Identity, params expression.Params) (value expression.Value, err error) {
	defer g.instrument("invoke", &err)()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.registry.Invoke(id, params)
}

// Observe routes a lens projection through the gateway so external callers
// never hold a *substrate.Substrate directly (spec §4.7).
func (g *Gateway) Observe(ctx context.Context, id identity.Identity, dimIndex int, l lens.Lens) (obs lens.Observation, err error) {
	defer g.instrument("observe", &err)()
	obs, err = lens.Observe(ctx, g.registry, id, dimIndex, l)
	if err != nil {
		return lens.Observation{}, err
	}
	g.obsLog.append(obs)
	return obs, nil
}

// ObservationLog exposes the gateway's append-only observation store.
func (g *Gateway) ObservationLog() *ObservationLog { return g.obsLog }

// AddRelationship inserts rel into the shared graph through the gateway,
// where the graph's own dangling-edge and non-duplication checks apply; the
// gateway adds no checks of its own beyond metrics instrumentation.
func (g *Gateway) AddRelationship(ctx context.Context, rel relgraph.Relationship) (err error) {
	defer g.instrument("add_relationship", &err)()
	return g.graph.Add(rel)
}

// Fetch routes an SRL fetch through the gateway's per-actor rate limiter
// before delegating to the SRL table (spec §6: "callers rate-limit at the
// surface level").
func (g *Gateway) Fetch(ctx context.Context, actorID string, id identity.Identity, query string, params map[string]any, spawn srl.SpawnRequest) (result srl.FetchResult, spawned identity.Identity, err error) {
	defer g.instrument("fetch", &err)()

	if !g.limiterFor(actorID).Allow() {
		g.metrics.reject("rate_limited")
		return srl.FetchResult{}, identity.Identity{}, kernelerr.InputRejected("actor exceeded the SRL fetch rate limit")
	}
	return g.srlTable.Fetch(ctx, actorID, id, query, params, spawn)
}
