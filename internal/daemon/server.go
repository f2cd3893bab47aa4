package daemon

import (
	"bufio"
	"context"
	"errors"
	"log"
	"net"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/galligan/pickme/internal/daemonproto"
)

// HandlerFunc processes one decoded request and produces its response.
type HandlerFunc func(ctx context.Context, req daemonproto.Request) daemonproto.Response

// Server accepts connections on the daemon socket. Each connection carries
// exactly one NDJSON request line and receives exactly one response line;
// the server holds no per-connection state.
type Server struct {
	listener net.Listener
	handler  HandlerFunc

	closed atomic.Bool
	wg     sync.WaitGroup
}

// NewServer wraps an already-bound listener. The caller owns socket setup
// (directory mode, singleton enforcement, stale-socket unlink).
func NewServer(listener net.Listener, handler HandlerFunc) *Server {
	return &Server{listener: listener, handler: handler}
}

// Serve accepts connections until Close. Each connection is handled on its
// own goroutine.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.closed.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

// Close stops accepting and waits for in-flight connections to finish.
func (s *Server) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	err := s.listener.Close()
	s.wg.Wait()
	return err
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	// Correlation id for diagnostics only; the wire protocol's own id is
	// whatever the client sent.
	connID := uuid.NewString()

	reader := bufio.NewReader(conn)
	line, err := daemonproto.ReadLine(reader)
	if err != nil {
		log.Printf("server: conn %s: read: %v", connID, err)
		return
	}

	resp := s.respond(line)

	payload, err := resp.Encode()
	if err != nil {
		log.Printf("server: conn %s: encode response: %v", connID, err)
		return
	}
	if err := daemonproto.WriteLine(bufio.NewWriter(conn), payload); err != nil {
		log.Printf("server: conn %s: write: %v", connID, err)
	}
}

// respond decodes one request line and dispatches it. Malformed JSON gets
// an "invalid JSON" error with an empty id; a structurally invalid request
// echoes the payload's id when one was parseable.
func (s *Server) respond(line []byte) daemonproto.Response {
	req, err := daemonproto.DecodeRequest(line)
	if err != nil {
		if daemonproto.IsMalformedJSON(err) {
			return daemonproto.NewErrorResponse("", errors.New("invalid JSON"))
		}
		return daemonproto.NewErrorResponse(daemonproto.PeekID(line), err)
	}
	return s.handler(context.Background(), req)
}
