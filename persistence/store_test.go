package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/r3e-network/substrate-core/expression"
	"github.com/r3e-network/substrate-core/identity"
	"github.com/r3e-network/substrate-core/relgraph"
	"github.com/r3e-network/substrate-core/srl"
	"github.com/r3e-network/substrate-core/substrate"
)

func fetchLogEntryFixture() srl.FetchLogEntry {
	return srl.FetchLogEntry{
		ID:              "log-1",
		ActorID:         "actor-1",
		QueryCanonical:  "q",
		ParamsCanonical: "{}",
		Success:         true,
		ResultSizeBytes: 4,
		DurationMs:      12,
		FetchedAtUnixMs: 1000,
	}
}

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock, *sqlx.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return NewStore(sqlxDB), mock, sqlxDB
}

func TestSaveSubstrate_ExecutesUpsert(t *testing.T) {
	store, mock, _ := newTestStore(t)
	sub := substrate.New(expression.Constant("fixture", 1))

	mock.ExpectExec("INSERT INTO substrates").
		WithArgs(int64(sub.Identity().Value()), "constant", "fixture").
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := store.SaveSubstrate(context.Background(), sub); err != nil {
		t.Fatalf("SaveSubstrate() error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLoadSubstrateIdentities_ScansRows(t *testing.T) {
	store, mock, _ := newTestStore(t)

	rows := sqlmock.NewRows([]string{"identity", "expression_kind", "expression_src"}).
		AddRow(int64(42), "constant", "fixture")
	mock.ExpectQuery("SELECT identity, expression_kind, expression_src FROM substrates").
		WillReturnRows(rows)

	ids, err := store.LoadSubstrateIdentities(context.Background())
	if err != nil {
		t.Fatalf("LoadSubstrateIdentities() error: %v", err)
	}
	if len(ids) != 1 || ids[0] != identity.FromUint64(42) {
		t.Fatalf("LoadSubstrateIdentities() = %v, want [42]", ids)
	}
}

func TestSaveRelationship_MarshalsAttributes(t *testing.T) {
	store, mock, _ := newTestStore(t)
	rel := relgraph.NewRelationship(identity.FromUint64(1), identity.FromUint64(2), relgraph.KindAttribute, map[string]any{"weight": 1.0})

	mock.ExpectExec("INSERT INTO relationships").
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := store.SaveRelationship(context.Background(), rel); err != nil {
		t.Fatalf("SaveRelationship() error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLoadRelationships_UnmarshalsAttributes(t *testing.T) {
	store, mock, _ := newTestStore(t)

	rows := sqlmock.NewRows([]string{"source", "target", "kind", "attributes"}).
		AddRow(int64(1), int64(2), string(relgraph.KindAttribute), []byte(`{"weight":1.5}`))
	mock.ExpectQuery("SELECT source, target, kind, attributes FROM relationships").
		WillReturnRows(rows)

	rels, err := store.LoadRelationships(context.Background())
	if err != nil {
		t.Fatalf("LoadRelationships() error: %v", err)
	}
	if len(rels) != 1 {
		t.Fatalf("LoadRelationships() len = %d, want 1", len(rels))
	}
	if rels[0].Attributes["weight"] != 1.5 {
		t.Fatalf("Attributes[weight] = %v, want 1.5", rels[0].Attributes["weight"])
	}
}

func TestSaveSRLMetadata_ExecutesUpsert(t *testing.T) {
	store, mock, _ := newTestStore(t)

	mock.ExpectExec("INSERT INTO srl_metadata").
		WillReturnResult(sqlmock.NewResult(1, 1))

	meta := SRLMetadata{
		Identity:         identity.FromUint64(7),
		Name:             "prices-api",
		ConnectionString: "https://example.invalid/prices",
	}
	if err := store.SaveSRLMetadata(context.Background(), meta); err != nil {
		t.Fatalf("SaveSRLMetadata() error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAppendFetchLogEntry_ExecutesInsert(t *testing.T) {
	store, mock, _ := newTestStore(t)

	mock.ExpectExec("INSERT INTO fetch_log").
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := store.AppendFetchLogEntry(context.Background(), fetchLogEntryFixture(), identity.FromUint64(9)); err != nil {
		t.Fatalf("AppendFetchLogEntry() error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
