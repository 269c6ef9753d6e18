package owclient

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-ownet/logger"
	"github.com/arloliu/go-ownet/ownet"
)

// fakeConn replays scripted response bytes and records every sent frame.
type fakeConn struct {
	sent    [][]byte
	rx      bytes.Buffer
	sendErr error
	closed  bool
}

func (c *fakeConn) Send(data []byte) error {
	if c.closed {
		return &ownet.TransportError{Kind: ownet.KindClosed, Op: "send", Err: net.ErrClosed}
	}
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, append([]byte(nil), data...))

	return nil
}

func (c *fakeConn) Recv(n int) ([]byte, error) {
	if c.rx.Len() < n {
		return nil, &ownet.TransportError{Kind: ownet.KindClosed, Op: "recv", Err: io.EOF}
	}

	return c.rx.Next(n), nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

// reply appends a response frame to the conn.
func (c *fakeConn) reply(h ownet.ResponseHeader, payload []byte) *fakeConn {
	c.rx.Write(ownet.EncodeResponse(h, payload))
	return c
}

// fakeTransport hands out scripted conns in order.
type fakeTransport struct {
	conns   []*fakeConn
	dialErr error
	dials   int
}

func (t *fakeTransport) Dial(_ context.Context, _ string, _ int) (Conn, error) {
	t.dials++
	if t.dialErr != nil {
		return nil, t.dialErr
	}
	if len(t.conns) < t.dials {
		return nil, &ownet.TransportError{Kind: ownet.KindRefused, Op: "dial", Err: errors.New("no more conns")}
	}

	return t.conns[t.dials-1], nil
}

var (
	okPersist = ownet.ResponseHeader{Flags: ownet.FlagPersistence}
	okClose   = ownet.ResponseHeader{}
)

func testLogger() logger.Logger {
	return logger.NewSlogWriter(io.Discard, logger.DebugLevel, false)
}

func newTestSession(t *testing.T, tr Transport, opts ...Option) Session {
	t.Helper()

	opts = append([]Option{WithTransport(tr), WithLogger(testLogger())}, opts...)
	cfg, err := NewConfig("owserver.test", DefaultPort, opts...)
	require.NoError(t, err)

	return NewSession(cfg)
}

// sentRequest decodes the i-th frame sent over conn.
func sentRequest(t *testing.T, conn *fakeConn, i int) (ownet.Header, []byte) {
	t.Helper()

	require.Greater(t, len(conn.sent), i)
	h, payload, err := ownet.DecodeRequest(conn.sent[i])
	require.NoError(t, err)

	return h, payload
}

// handler answers one decoded request with zero or more raw response frames.
type handler func(h ownet.Header, payload []byte) [][]byte

// fakeServer is a minimal owserver listening on a loopback port.
type fakeServer struct {
	ln      net.Listener
	handle  handler
	wg      sync.WaitGroup
	mu      sync.Mutex
	accepts int
}

func newFakeServer(t *testing.T, h handler) *fakeServer {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &fakeServer{ln: ln, handle: h}
	s.wg.Add(1)
	go s.serve()

	t.Cleanup(func() {
		_ = ln.Close()
		s.wg.Wait()
	})

	return s
}

func (s *fakeServer) port() int {
	return s.ln.Addr().(*net.TCPAddr).Port //nolint: forcetypeassert
}

func (s *fakeServer) acceptCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.accepts
}

func (s *fakeServer) serve() {
	defer s.wg.Done()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}

		s.mu.Lock()
		s.accepts++
		s.mu.Unlock()

		s.wg.Add(1)
		go s.serveConn(conn)
	}
}

func (s *fakeServer) serveConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	for {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

		hdrBuf := make([]byte, ownet.HeaderSize)
		if _, err := io.ReadFull(conn, hdrBuf); err != nil {
			return
		}
		h, err := ownet.DecodeRequestHeader(hdrBuf)
		if err != nil {
			return
		}

		payload := make([]byte, h.Payload)
		if _, err := io.ReadFull(conn, payload); err != nil {
			return
		}

		persist := false
		for _, frame := range s.handle(h, payload) {
			if _, err := conn.Write(frame); err != nil {
				return
			}
			rh, _ := ownet.DecodeResponseHeader(frame)
			persist = rh.PersistenceGranted()
		}

		if !persist || !h.Flags.Has(ownet.FlagPersistence) {
			return
		}
	}
}
