package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"

	"github.com/google/uuid"

	"github.com/galligan/pickme/internal/daemonproto"
)

// Client talks the NDJSON protocol to a running daemon: one connection per
// request, one line each way.
type Client struct {
	socketPath string
}

// NewClient creates a client for the daemon at socketPath.
func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath}
}

// Search sends a search request. limit 0 leaves the choice to the daemon.
func (c *Client) Search(ctx context.Context, q, cwd string, limit int) (daemonproto.Response, error) {
	return c.roundTrip(ctx, daemonproto.SearchRequest{
		ID:    uuid.NewString(),
		Query: q,
		Cwd:   cwd,
		Limit: limit,
	})
}

// Health sends a health request.
func (c *Client) Health(ctx context.Context) (daemonproto.Response, error) {
	return c.roundTrip(ctx, daemonproto.HealthRequest{ID: uuid.NewString()})
}

// Invalidate bumps the daemon's generation. root is advisory and may be
// empty.
func (c *Client) Invalidate(ctx context.Context, root string) (daemonproto.Response, error) {
	return c.roundTrip(ctx, daemonproto.InvalidateRequest{ID: uuid.NewString(), Root: root})
}

// Stop asks the daemon to shut down.
func (c *Client) Stop(ctx context.Context) (daemonproto.Response, error) {
	return c.roundTrip(ctx, daemonproto.StopRequest{ID: uuid.NewString()})
}

func (c *Client) roundTrip(ctx context.Context, req any) (daemonproto.Response, error) {
	var resp daemonproto.Response

	payload, err := json.Marshal(req)
	if err != nil {
		return resp, fmt.Errorf("encode request: %w", err)
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return resp, fmt.Errorf("dial daemon: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	if err := daemonproto.WriteLine(bufio.NewWriter(conn), payload); err != nil {
		return resp, fmt.Errorf("send request: %w", err)
	}

	line, err := daemonproto.ReadLine(bufio.NewReader(conn))
	if err != nil {
		return resp, fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(line, &resp); err != nil {
		return resp, fmt.Errorf("decode response: %w", err)
	}
	return resp, nil
}
