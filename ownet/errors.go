package ownet

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrShortHeader indicates that fewer than HeaderSize bytes were given to a header decoder.
	ErrShortHeader = errors.New("header shorter than 24 bytes")

	// ErrUnknownFlag indicates that a flag name is not defined.
	ErrUnknownFlag = errors.New("unknown flag")

	// ErrInvalidValue indicates that a value can't be written to the server.
	ErrInvalidValue = errors.New("invalid value")

	// ErrTooManyKeepalives indicates that the server kept sending continuation headers
	// beyond the configured limit without delivering a payload.
	ErrTooManyKeepalives = errors.New("too many keep-alive packets")

	// ErrPayloadTooLarge indicates that a response announced a payload above the configured limit.
	ErrPayloadTooLarge = errors.New("payload too large")
)

// ProtocolError is returned when the server answers with a negative return code.
// The connection itself is healthy; the server rejected the request.
type ProtocolError struct {
	// Code is the absolute value of the return code.
	Code int32
	// Text is the human readable description of Code, empty until resolved by an ErrorTable.
	Text string
}

func (e *ProtocolError) Error() string {
	if e.Text == "" {
		return "owserver error " + strconv.Itoa(int(e.Code))
	}

	return fmt.Sprintf("owserver error %d: %s", e.Code, e.Text)
}

// Is reports whether target is a *ProtocolError with the same code.
func (e *ProtocolError) Is(target error) bool {
	t, ok := target.(*ProtocolError)
	if !ok {
		return false
	}

	return t.Code == e.Code
}

// TransportErrorKind classifies transport failures.
type TransportErrorKind uint8

const (
	KindOther TransportErrorKind = iota
	// KindClosed means the peer closed the connection, or it was reset mid-exchange.
	KindClosed
	// KindNotConnected means there is no usable socket.
	KindNotConnected
	KindRefused
	KindUnreachable
	KindTimeout
	// KindDecode means the peer sent a malformed frame.
	KindDecode
)

func (k TransportErrorKind) String() string {
	switch k {
	case KindClosed:
		return "closed"
	case KindNotConnected:
		return "not connected"
	case KindRefused:
		return "refused"
	case KindUnreachable:
		return "unreachable"
	case KindTimeout:
		return "timeout"
	case KindDecode:
		return "decode"
	default:
		return "other"
	}
}

// TransportError reports a failure of the underlying byte stream.
type TransportError struct {
	Kind TransportErrorKind
	// Op is the failed operation: "dial", "send" or "recv".
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.String()
	}

	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure warrants one reconnect and retry.
func (e *TransportError) Retryable() bool {
	return e.Kind == KindClosed || e.Kind == KindNotConnected
}

// IsRetryable reports whether err wraps a retryable *TransportError.
func IsRetryable(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable()
	}

	return false
}

// DecodeError reports a malformed frame.
type DecodeError struct {
	// Len is the length of the rejected input.
	Len int
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode frame (%d bytes): %v", e.Len, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
