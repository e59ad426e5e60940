package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/r3e-network/substrate-core/identity"
	"github.com/r3e-network/substrate-core/relgraph"
	"github.com/r3e-network/substrate-core/srl"
	"github.com/r3e-network/substrate-core/substrate"
)

// Store mirrors the process's in-memory state to Postgres, one table per
// SPEC_FULL component, grounded on the CRUD shape of the teacher's
// infrastructure/database repositories (Create/GetBy/List per table)
// generalized from Supabase's PostgREST calls to direct sqlx queries.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps an already-opened, already-migrated connection.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// SaveSubstrate upserts a substrate's (identity, expression) pair, storing
// the expression's Kind tag and its Source() text as is. Only constant and
// composed expressions carry a source that rebuilds them; for other kinds
// the stored text (for SRL expressions, the SRL's name) only labels the
// row, and fully reconstructing a
// KindSRLSpawned or KindResidueSeeded expression requires replaying the
// operation that produced it.
func (s *Store) SaveSubstrate(ctx context.Context, sub *substrate.Substrate) error {
	expr := sub.Expression()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO substrates (identity, expression_kind, expression_src)
		VALUES ($1, $2, $3)
		ON CONFLICT (identity) DO NOTHING`,
		int64(sub.Identity().Value()), expr.Kind().String(), expr.Source())
	if err != nil {
		return fmt.Errorf("persistence: save substrate %s: %w", sub.Identity(), err)
	}
	return nil
}

type substrateRow struct {
	Identity       int64  `db:"identity"`
	ExpressionKind string `db:"expression_kind"`
	ExpressionSrc  string `db:"expression_src"`
}

// LoadSubstrateIdentities returns every substrate identity persisted so far,
// which a caller can compare against a fresh process's registry to see what
// it is missing relative to the mirror (spec §9 notes the registry itself is
// rebuilt in memory; persistence is a durability aid, not the source of
// truth for a running process).
func (s *Store) LoadSubstrateIdentities(ctx context.Context) ([]identity.Identity, error) {
	var rows []substrateRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT identity, expression_kind, expression_src FROM substrates`); err != nil {
		return nil, fmt.Errorf("persistence: load substrates: %w", err)
	}
	out := make([]identity.Identity, len(rows))
	for i, r := range rows {
		out[i] = identity.FromUint64(uint64(r.Identity))
	}
	return out, nil
}

// SaveRelationship upserts a relationship edge, JSON-encoding its attribute
// bag the same way the teacher's Supabase repositories store arbitrary
// per-row metadata.
func (s *Store) SaveRelationship(ctx context.Context, rel relgraph.Relationship) error {
	attrs, err := json.Marshal(rel.Attributes)
	if err != nil {
		return fmt.Errorf("persistence: marshal relationship attributes: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO relationships (source, target, kind, attributes)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (source, target, kind) DO NOTHING`,
		int64(rel.Source.Value()), int64(rel.Target.Value()), string(rel.Kind), attrs)
	if err != nil {
		return fmt.Errorf("persistence: save relationship %s: %w", rel, err)
	}
	return nil
}

type relationshipRow struct {
	Source     int64  `db:"source"`
	Target     int64  `db:"target"`
	Kind       string `db:"kind"`
	Attributes []byte `db:"attributes"`
}

// LoadRelationships returns every persisted relationship, in a form a
// caller can replay through relgraph.Graph.AddAll.
func (s *Store) LoadRelationships(ctx context.Context) ([]relgraph.Relationship, error) {
	var rows []relationshipRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT source, target, kind, attributes FROM relationships`); err != nil {
		return nil, fmt.Errorf("persistence: load relationships: %w", err)
	}

	out := make([]relgraph.Relationship, 0, len(rows))
	for _, r := range rows {
		var attrs map[string]any
		if len(r.Attributes) > 0 {
			if err := json.Unmarshal(r.Attributes, &attrs); err != nil {
				return nil, fmt.Errorf("persistence: unmarshal relationship attributes: %w", err)
			}
		}
		out = append(out, relgraph.NewRelationship(
			identity.FromUint64(uint64(r.Source)),
			identity.FromUint64(uint64(r.Target)),
			relgraph.Kind(r.Kind),
			attrs,
		))
	}
	return out, nil
}

// SRLMetadata is everything about an SRL this package will persist.
// Credentials are deliberately absent: the encrypted envelope and the
// master key that derives it stay in memory and in SRL_MASTER_KEY only,
// never in this mirror, so a leaked database backup cannot be used to
// decrypt anything (spec §4.6's credential handling carries no durable
// storage requirement, and adding one would widen the secret's blast
// radius for no operational benefit).
type SRLMetadata struct {
	Identity         identity.Identity
	Name             string
	Kind             srl.Kind
	Status           srl.State
	ConnectionString string
	FetchCount       int
	CreatedAtUnixMs  int64
	LastUsedAtUnixMs int64
}

// SaveSRLMetadata upserts the non-secret fields of an SRL.
func (s *Store) SaveSRLMetadata(ctx context.Context, m SRLMetadata) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO srl_metadata (identity, name, kind, status, connection_string, fetch_count, created_at_ms, last_used_at_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (identity) DO UPDATE SET
			status = EXCLUDED.status,
			fetch_count = EXCLUDED.fetch_count,
			last_used_at_ms = EXCLUDED.last_used_at_ms`,
		int64(m.Identity.Value()), m.Name, int(m.Kind), int(m.Status), m.ConnectionString,
		m.FetchCount, m.CreatedAtUnixMs, m.LastUsedAtUnixMs)
	if err != nil {
		return fmt.Errorf("persistence: save srl metadata %s: %w", m.Identity, err)
	}
	return nil
}

// SaveSeedRecord records that a seed catalog entry with the given name
// resolved to identity, alongside the raw YAML document it came from, so a
// restart can audit what shaped the registry without re-reading the
// original seed files.
func (s *Store) SaveSeedRecord(ctx context.Context, name, category, domain string, id identity.Identity, rawYAML string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO seed_records (name, category, domain, identity, raw_yaml)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE SET
			category = EXCLUDED.category,
			domain = EXCLUDED.domain,
			identity = EXCLUDED.identity,
			raw_yaml = EXCLUDED.raw_yaml`,
		name, category, domain, int64(id.Value()), rawYAML)
	if err != nil {
		return fmt.Errorf("persistence: save seed record %s: %w", name, err)
	}
	return nil
}

// AppendFetchLogEntry mirrors one srl.FetchLogEntry. The in-memory
// srl.FetchLog remains the source of truth for an active process; this
// call makes the entry survive a restart.
func (s *Store) AppendFetchLogEntry(ctx context.Context, e srl.FetchLogEntry, srlIdentity identity.Identity) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fetch_log (id, srl_identity, actor_id, query_canonical, params_canonical, success, result_size_bytes, duration_ms, error_sanitized, fetched_at_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING`,
		e.ID, int64(srlIdentity.Value()), e.ActorID, e.QueryCanonical, e.ParamsCanonical,
		e.Success, e.ResultSizeBytes, e.DurationMs, e.ErrorSanitized, e.FetchedAtUnixMs)
	if err != nil {
		return fmt.Errorf("persistence: append fetch log entry %s: %w", e.ID, err)
	}
	return nil
}
