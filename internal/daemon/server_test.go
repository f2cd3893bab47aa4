package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galligan/pickme/internal/daemonproto"
)

func startTestServer(t *testing.T, handler HandlerFunc) string {
	t.Helper()

	socketPath := filepath.Join(t.TempDir(), "test.sock")
	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	server := NewServer(listener, handler)
	go server.Serve()
	t.Cleanup(func() { server.Close() })

	return socketPath
}

func echoHandler(ctx context.Context, req daemonproto.Request) daemonproto.Response {
	return daemonproto.NewAckResponse(req.RequestID())
}

func TestServerRoundTrip(t *testing.T) {
	socketPath := startTestServer(t, echoHandler)
	client := NewClient(socketPath)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	resp, err := client.Health(ctx)
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.NotEmpty(t, resp.ID)
}

func TestServerRejectsMalformedJSON(t *testing.T) {
	socketPath := startTestServer(t, echoHandler)

	conn, err := net.Dial("unix", socketPath)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("{not json\n"))
	require.NoError(t, err)

	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	require.NoError(t, err)

	assert.JSONEq(t, `{"id":"","ok":false,"error":"invalid JSON"}`, string(buf[:n]))
}

func TestServerEchoesIDOnValidationFailure(t *testing.T) {
	socketPath := startTestServer(t, echoHandler)

	conn, err := net.Dial("unix", socketPath)
	require.NoError(t, err)
	defer conn.Close()

	// Valid JSON, unknown type: the parseable id must be echoed.
	_, err = conn.Write([]byte(`{"id":"abc","type":"bogus"}` + "\n"))
	require.NoError(t, err)

	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	require.NoError(t, err)

	var resp daemonproto.Response
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf[:n]), &resp))
	assert.Equal(t, "abc", resp.ID)
	assert.False(t, resp.OK)
	assert.NotEmpty(t, resp.Error)
}

func TestServerOneResponsePerConnection(t *testing.T) {
	socketPath := startTestServer(t, echoHandler)

	conn, err := net.Dial("unix", socketPath)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte(`{"id":"a","type":"health"}` + "\n"))
	require.NoError(t, err)

	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	require.Greater(t, n, 0)

	// The server closes after its single response.
	conn.SetReadDeadline(time.Now().Add(time.Second))
	n, err = conn.Read(buf)
	assert.Error(t, err)
	assert.Zero(t, n)
}
