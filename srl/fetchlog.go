package srl

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// FetchLogEntry is one append-only audit record (spec §6 "Fetch-log
// record"): srl_id, actor_id, query_canonical_form,
// parameters_canonical_form, success, result_size_bytes, duration_ms,
// error_sanitized, fetched_at_unix_ms.
type FetchLogEntry struct {
	ID                string
	SRLID             string
	ActorID           string
	QueryCanonical    string
	ParamsCanonical   string
	Success           bool
	ResultSizeBytes   int
	DurationMs        int64
	ErrorSanitized    string
	FetchedAtUnixMs   int64
}

// FetchLog is an append-only, per-SRL audit log (spec §4.6 "fetch log").
// Deletion is never exposed; rotation lives at the persistence layer.
type FetchLog struct {
	mu      sync.RWMutex
	entries []FetchLogEntry
}

// NewFetchLog builds an empty log.
func NewFetchLog() *FetchLog {
	return &FetchLog{}
}

// Append adds one record, stamping a fresh uuid as its ID.
func (l *FetchLog) Append(entry FetchLogEntry) FetchLogEntry {
	entry.ID = uuid.New().String()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return entry
}

// Page returns up to limit entries for srlID with FetchedAtUnixMs strictly
// after sinceUnixMs, ordered oldest first (spec §6 "paginated query by
// (srl_id, timestamp)").
func (l *FetchLog) Page(srlID string, sinceUnixMs int64, limit int) []FetchLogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var matches []FetchLogEntry
	for _, e := range l.entries {
		if e.SRLID == srlID && e.FetchedAtUnixMs > sinceUnixMs {
			matches = append(matches, e)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].FetchedAtUnixMs < matches[j].FetchedAtUnixMs })
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// Count returns the total number of entries recorded for srlID.
func (l *FetchLog) Count(srlID string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := 0
	for _, e := range l.entries {
		if e.SRLID == srlID {
			n++
		}
	}
	return n
}
