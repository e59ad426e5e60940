// Package persistence mirrors the in-memory registry, relationship graph,
// SRL table, seed catalog, and fetch log to Postgres, grounded on the
// teacher's internal/platform/database.Open (DSN validation + ping on
// connect) and generalized from database/sql to sqlx so callers get
// struct-scanning for the repositories below. This package is supplemental:
// the core runs entirely in memory without it (spec §9 "Global state").
package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Open establishes a PostgreSQL connection using dsn and verifies
// connectivity with a bounded ping, exactly as the teacher's database.Open
// does, but returns a *sqlx.DB so the repositories in this package can use
// sqlx's struct-scanning helpers.
func Open(ctx context.Context, dsn string, maxOpenConns, maxIdleConns int) (*sqlx.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("persistence: postgres DSN is required")
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("persistence: open postgres: %w", err)
	}

	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	if maxIdleConns > 0 {
		db.SetMaxIdleConns(maxIdleConns)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("persistence: ping postgres: %w", err)
	}
	return db, nil
}
