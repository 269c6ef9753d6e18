package owclient

import (
	"fmt"

	"github.com/arloliu/go-ownet/ownet"
)

// frameReader reads response frames from a Conn.
//
// frameReader is NOT goroutine-safe; a session performs one exchange at a time.
type frameReader struct {
	maxPayload int
}

// readHeader reads and decodes one 24-byte response header.
func (fr frameReader) readHeader(conn Conn) (ownet.ResponseHeader, error) {
	buf, err := conn.Recv(ownet.HeaderSize)
	if err != nil {
		return ownet.ResponseHeader{}, classifyNetError("recv", err)
	}

	hdr, err := ownet.DecodeResponseHeader(buf)
	if err != nil {
		return ownet.ResponseHeader{}, &ownet.TransportError{Kind: ownet.KindDecode, Op: "recv", Err: err}
	}

	return hdr, nil
}

// readPayload reads the n payload bytes announced by a header.
func (fr frameReader) readPayload(conn Conn, n int32) ([]byte, error) {
	if fr.maxPayload > 0 && int(n) > fr.maxPayload {
		return nil, &ownet.TransportError{
			Kind: ownet.KindDecode,
			Op:   "recv",
			Err:  fmt.Errorf("%w: %d > %d", ownet.ErrPayloadTooLarge, n, fr.maxPayload),
		}
	}

	payload, err := conn.Recv(int(n))
	if err != nil {
		return nil, classifyNetError("recv", err)
	}

	return payload, nil
}
