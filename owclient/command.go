package owclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arloliu/go-ownet/ownet"
)

// request describes one command exchange.
type request struct {
	typ     ownet.MsgType
	payload []byte
	flags   ownet.Flag
	size    int32
	// expectPayload makes an empty successful response a continuation signal instead of the result.
	expectPayload bool
}

// exchange returns the Exchange performing req: it sends the request once, then reads headers
// until a terminal response arrives.
//
// A header with a negative payload length is a keep-alive for every command. A header with an
// empty payload is a keep-alive only for commands that expect a payload. The number of
// keep-alives is bounded by the configured limit.
func (s Session) exchange(req request) Exchange {
	frame := ownet.EncodeRequest(req.typ, req.payload, req.flags, req.size, 0)
	reader := frameReader{maxPayload: s.cfg.maxPayloadSize}
	maxKeepalives := s.cfg.maxKeepalives
	metrics := s.cfg.metrics

	return func(ctx context.Context, conn Conn) (ownet.ResponseHeader, []byte, error) {
		metrics.incRequestCount()
		if err := conn.Send(frame); err != nil {
			return ownet.ResponseHeader{}, nil, classifyNetError("send", err)
		}

		for keepalives := 0; ; keepalives++ {
			if err := ctx.Err(); err != nil {
				return ownet.ResponseHeader{}, nil, &ownet.TransportError{Kind: ownet.KindTimeout, Op: "recv", Err: err}
			}

			hdr, err := reader.readHeader(conn)
			if err != nil {
				return hdr, nil, err
			}

			if hdr.Failed() {
				return hdr, nil, hdr.Err()
			}

			if hdr.Payload > 0 {
				payload, err := reader.readPayload(conn, hdr.Payload)
				return hdr, payload, err
			}

			if hdr.Payload == 0 && !req.expectPayload {
				return hdr, nil, nil
			}

			metrics.incKeepaliveCount()
			if keepalives >= maxKeepalives {
				return hdr, nil, &ownet.TransportError{
					Kind: ownet.KindTimeout,
					Op:   "recv",
					Err:  fmt.Errorf("%w: %d", ownet.ErrTooManyKeepalives, keepalives),
				}
			}
		}
	}
}

func (s Session) do(ctx context.Context, req request, extra ownet.Flag) (Session, ownet.ResponseHeader, []byte, error) {
	req.flags = ownet.FlagsFrom(s.flags, extra)
	return s.Run(ctx, s.exchange(req))
}

// Ping sends a NOP request. A nil error means the link is alive.
func (s Session) Ping(ctx context.Context, extra ownet.Flag) (Session, error) {
	s, _, _, err := s.do(ctx, request{typ: ownet.MsgNop}, extra)
	return s, err
}

// Present reports whether path exists.
//
// A protocol error is reported as false with a nil error; transport errors are returned.
func (s Session) Present(ctx context.Context, path string, extra ownet.Flag) (Session, bool, error) {
	s, _, _, err := s.do(ctx, request{
		typ:     ownet.MsgPresent,
		payload: ownet.PathPayload(path, nil),
	}, extra)
	if err != nil {
		if isProtocolError(err) {
			return s, false, nil
		}
		return s, false, err
	}

	return s, true, nil
}

// Dir lists the entries below path in the order sent by the server.
func (s Session) Dir(ctx context.Context, path string, extra ownet.Flag) (Session, []string, error) {
	s, _, payload, err := s.do(ctx, request{
		typ:           ownet.MsgDirAllSlash,
		payload:       ownet.PathPayload(path, nil),
		expectPayload: true,
	}, extra)
	if err != nil {
		return s, nil, err
	}

	return s, splitDir(payload), nil
}

// Read returns the raw value of path. Parsing the value is up to the caller.
func (s Session) Read(ctx context.Context, path string, extra ownet.Flag) (Session, []byte, error) {
	s, _, payload, err := s.do(ctx, request{
		typ:           ownet.MsgRead,
		payload:       ownet.PathPayload(path, nil),
		size:          ownet.DefaultReadSize,
		expectPayload: true,
	}, extra)
	if err != nil {
		return s, nil, err
	}

	return s, payload, nil
}

// Write writes value to path. value may be a bool, an ownet.Switch, a []byte or a string;
// see ownet.EncodeValue.
func (s Session) Write(ctx context.Context, path string, value any, extra ownet.Flag) (Session, error) {
	data, err := ownet.EncodeValue(value)
	if err != nil {
		return s, err
	}

	s, _, _, err = s.do(ctx, request{
		typ:     ownet.MsgWrite,
		payload: ownet.PathPayload(path, data),
		size:    int32(len(data)), //nolint: gosec
	}, extra)

	return s, err
}

func splitDir(payload []byte) []string {
	list := strings.TrimRight(string(bytes.TrimRight(payload, "\x00")), ",")
	if list == "" {
		return []string{}
	}

	return strings.Split(list, ",")
}

func isProtocolError(err error) bool {
	var pe *ownet.ProtocolError
	return errors.As(err, &pe)
}
