package srl

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// DatabaseQuerier is the narrow surface DatabaseAdapter needs from a
// *sqlx.DB, kept as an interface so tests can substitute a sqlmock-backed
// double (spec §4.6 kind=Database; SPEC_FULL §2.8 unit-tests this adapter
// with DATA-DOG/go-sqlmock).
type DatabaseQuerier interface {
	QueryRowxContext(ctx context.Context, query string, args ...any) *sqlx.Row
}

// OpenPostgres opens a Postgres-shaped DSN with sqlx, as the teacher's
// storage layer does (applications/storage/postgres).
func OpenPostgres(dsn string) (*sqlx.DB, error) {
	return sqlx.Connect("postgres", dsn)
}

// DatabaseAdapter runs req.Query (a single scalar-returning SQL statement)
// against Querier and returns the first column of the first row as bytes.
type DatabaseAdapter struct {
	Querier DatabaseQuerier
}

// Fetch runs req.Query as a single scalar-returning statement. Positional
// arguments, where the query needs them, are passed under the "args" key
// of req.Params as an ordered []any — a plain map cannot carry positional
// order, so every other key is ignored here.
func (a *DatabaseAdapter) Fetch(ctx context.Context, req FetchRequest) (FetchResult, error) {
	var args []any
	if raw, ok := req.Params["args"]; ok {
		args, _ = raw.([]any)
	}

	row := a.Querier.QueryRowxContext(ctx, req.Query, args...)
	var value []byte
	if err := row.Scan(&value); err != nil {
		return FetchResult{}, err
	}
	return FetchResult{Bytes: value}, nil
}
