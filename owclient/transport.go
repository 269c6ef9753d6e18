package owclient

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"strconv"
	"syscall"
	"time"

	"github.com/arloliu/go-ownet/ownet"
)

// Transport opens byte-stream connections to an owserver.
type Transport interface {
	// Dial opens a connection to host:port.
	Dial(ctx context.Context, host string, port int) (Conn, error)
}

// Conn is a reliable byte stream.
//
// Implementations should report failures as *ownet.TransportError so that the session can tell
// retryable failures from fatal ones; other errors are treated as non-retryable.
type Conn interface {
	// Send writes all of data.
	Send(data []byte) error
	// Recv reads exactly n bytes.
	Recv(n int) ([]byte, error)
	Close() error
}

// TCPTransport dials owserver over TCP.
type TCPTransport struct {
	// DialTimeout bounds connection establishment. Zero means no timeout besides ctx.
	DialTimeout time.Duration
	// ReadTimeout is applied as a deadline to every Recv. Zero disables it.
	ReadTimeout time.Duration
	// WriteTimeout is applied as a deadline to every Send. Zero disables it.
	WriteTimeout time.Duration
}

var _ Transport = (*TCPTransport)(nil)

func (t *TCPTransport) Dial(ctx context.Context, host string, port int) (Conn, error) {
	dialer := &net.Dialer{KeepAlive: 30 * time.Second}

	if t.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.DialTimeout)
		defer cancel()
	}

	conn, err := dialer.DialContext(ctx, "tcp", joinHostPort(host, port))
	if err != nil {
		return nil, classifyNetError("dial", err)
	}

	return &tcpConn{conn: conn, readTimeout: t.ReadTimeout, writeTimeout: t.WriteTimeout}, nil
}

type tcpConn struct {
	conn         net.Conn
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func (c *tcpConn) Send(data []byte) error {
	if c.writeTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return classifyNetError("send", err)
		}
	}

	// net.Conn.Write returns a non-nil error on short writes
	if _, err := c.conn.Write(data); err != nil {
		return classifyNetError("send", err)
	}

	return nil
}

func (c *tcpConn) Recv(n int) ([]byte, error) {
	if c.readTimeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
			return nil, classifyNetError("recv", err)
		}
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(c.conn, buf); err != nil {
		return nil, classifyNetError("recv", err)
	}

	return buf, nil
}

func (c *tcpConn) Close() error {
	return c.conn.Close()
}

// classifyNetError wraps err into an *ownet.TransportError with a kind derived from the cause.
func classifyNetError(op string, err error) error {
	if err == nil {
		return nil
	}

	var te *ownet.TransportError
	if errors.As(err, &te) {
		return err
	}

	return &ownet.TransportError{Kind: netErrorKind(err), Op: op, Err: err}
}

func netErrorKind(err error) ownet.TransportErrorKind {
	switch {
	case errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, net.ErrClosed),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNABORTED),
		errors.Is(err, syscall.EPIPE):
		return ownet.KindClosed
	case errors.Is(err, syscall.ENOTCONN):
		return ownet.KindNotConnected
	case errors.Is(err, syscall.ECONNREFUSED):
		return ownet.KindRefused
	case errors.Is(err, syscall.EHOSTUNREACH),
		errors.Is(err, syscall.ENETUNREACH):
		return ownet.KindUnreachable
	case errors.Is(err, os.ErrDeadlineExceeded),
		errors.Is(err, context.DeadlineExceeded):
		return ownet.KindTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ownet.KindTimeout
	}

	return ownet.KindOther
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
