package srl

import (
	"context"
	"os"
)

// FileAdapter reads the file at req.Connection (spec §4.6 kind=File, and
// scenario S4's "namespace hash for 'local', path hash for '/tmp/x'"
// example). req.Query is ignored — the connection string is the whole
// address for a file-backed SRL.
type FileAdapter struct{}

func (FileAdapter) Fetch(ctx context.Context, req FetchRequest) (FetchResult, error) {
	if err := ctx.Err(); err != nil {
		return FetchResult{}, err
	}
	data, err := os.ReadFile(req.Connection)
	if err != nil {
		return FetchResult{}, err
	}
	return FetchResult{Bytes: data}, nil
}
