package owclient

import (
	"context"
	"errors"

	"github.com/arloliu/go-ownet/ownet"
)

// Exchange performs one request/response exchange over a live connection.
//
// It returns the final response header, the payload, and an error: a *ownet.ProtocolError when
// the server rejected the request (the header is valid in that case) or a transport error.
type Exchange func(ctx context.Context, conn Conn) (ownet.ResponseHeader, []byte, error)

// Session is an immutable owserver session value.
//
// Every operation returns the updated Session; callers must continue with the returned value.
// Copies of a Session share its connection, so an older copy must not be used once a newer one
// has been obtained.
type Session struct {
	cfg   *Config
	flags ownet.Flag
	conn  Conn
}

// NewSession creates a session without a connection. The connection is opened by the first command.
func NewSession(cfg *Config) Session {
	return Session{cfg: cfg, flags: cfg.defaultFlags}
}

// New creates a session for host:port whose requests carry defaultFlags.
func New(host string, port int, defaultFlags ownet.Flag, opts ...Option) (Session, error) {
	cfg, err := NewConfig(host, port, append(opts, WithDefaultFlags(defaultFlags))...)
	if err != nil {
		return Session{}, err
	}

	return NewSession(cfg), nil
}

// Address returns the owserver address.
func (s Session) Address() string {
	return s.cfg.Address()
}

// Flags returns the default request flags of the session.
func (s Session) Flags() ownet.Flag {
	return s.flags
}

// WithFlags returns a copy of the session with different default flags.
func (s Session) WithFlags(flags ownet.Flag) Session {
	s.flags = flags
	return s
}

// Connected reports whether the session holds a connection.
func (s Session) Connected() bool {
	return s.conn != nil
}

// Connect opens a new connection, closing the current one first.
//
// On failure the returned session has no connection.
func (s Session) Connect(ctx context.Context) (Session, error) {
	s, _ = s.Close()

	conn, err := s.cfg.transport.Dial(ctx, s.cfg.host, s.cfg.port)
	if err != nil {
		s.cfg.logger.Debug("failed to connect", "error", err)
		return s, classifyNetError("dial", err)
	}

	s.cfg.metrics.incConnectCount()
	s.cfg.logger.Debug("connected")
	s.conn = conn

	return s, nil
}

// EnsureConnected connects if the session has no connection and returns it unchanged otherwise.
func (s Session) EnsureConnected(ctx context.Context) (Session, error) {
	if s.conn != nil {
		return s, nil
	}

	return s.Connect(ctx)
}

// Close closes the connection, if any, and returns the session without it.
func (s Session) Close() (Session, error) {
	if s.conn == nil {
		return s, nil
	}

	err := s.conn.Close()
	s.conn = nil

	return s, err
}

// Run executes exchange over a live connection.
//
// The session connects on demand. If the exchange fails because the connection was closed or
// is not connected, the session reconnects and runs the exchange exactly once more; the outcome
// of that second attempt is returned as is. Protocol errors are never retried.
//
// After a completed exchange the connection is kept only if the response granted persistence.
// After a transport failure the connection is closed so that the next command reconnects.
func (s Session) Run(ctx context.Context, exchange Exchange) (Session, ownet.ResponseHeader, []byte, error) {
	live, err := s.EnsureConnected(ctx)
	if err != nil {
		s.cfg.metrics.incTransportErrCount()
		return s, ownet.ResponseHeader{}, nil, err
	}

	hdr, payload, err := exchange(ctx, live.conn)
	if ownet.IsRetryable(err) {
		live.cfg.logger.Warn("connection lost, reconnecting", "error", err)
		live.cfg.metrics.incRetryCount()

		live, err = live.Connect(ctx)
		if err != nil {
			live.cfg.metrics.incTransportErrCount()
			return live, ownet.ResponseHeader{}, nil, err
		}

		hdr, payload, err = exchange(ctx, live.conn)
	}

	return live.settle(hdr, err), hdr, payload, err
}

// settle updates the connection state after an exchange.
func (s Session) settle(hdr ownet.ResponseHeader, err error) Session {
	var pe *ownet.ProtocolError
	if err != nil && !errors.As(err, &pe) {
		s.cfg.metrics.incTransportErrCount()
		s.cfg.logger.Debug("exchange failed, closing connection", "error", err)
		s, _ = s.Close()

		return s
	}

	if pe != nil {
		s.cfg.metrics.incProtocolErrCount()
	}

	if hdr.PersistenceGranted() {
		return s
	}

	s.cfg.metrics.incPersistenceDropCount()
	s.cfg.logger.Debug("persistence not granted, closing connection")
	s, _ = s.Close()

	return s
}
