package srl

import (
	"bufio"
	"context"
	"net"
)

// SocketAdapter dials req.Connection (host:port) and writes req.Query as a
// single line, returning the first line the peer writes back (including
// its trailing newline), or whatever arrived before the peer closed if no
// newline came (spec §4.6 kind=Socket). There is no ecosystem library for raw TCP
// request/response framing in the example corpus, so this adapter is
// built directly on net — see DESIGN.md.
type SocketAdapter struct{}

func (SocketAdapter) Fetch(ctx context.Context, req FetchRequest) (FetchResult, error) {
	dialer := net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", req.Connection)
	if err != nil {
		return FetchResult{}, err
	}
	defer conn.Close()

	if req.Query != "" {
		if _, err := conn.Write([]byte(req.Query + "\n")); err != nil {
			return FetchResult{}, err
		}
	}

	reader := bufio.NewReader(conn)
	data, err := reader.ReadBytes('\n')
	if err != nil && len(data) == 0 {
		return FetchResult{}, err
	}
	return FetchResult{Bytes: data}, nil
}
