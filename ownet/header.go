package ownet

import (
	"encoding/binary"
	"fmt"
)

const (
	// HeaderSize is the size of an owserver header in bytes.
	HeaderSize = 24
	// Version is the protocol version sent in every request.
	Version = 0
	// DefaultReadSize is the buffer size announced by read requests, large enough for any property value.
	DefaultReadSize = 65536
)

// Header is the header of a request frame.
type Header struct {
	Version int32
	// Payload is the length of the payload following the header.
	Payload int32
	Type    MsgType
	Flags   Flag
	// Size is the maximum accepted result size for reads, or the value length for writes.
	Size   int32
	Offset int32
}

// ResponseHeader is the header of a response frame.
//
// The return code occupies the slot used by the message type in requests.
type ResponseHeader struct {
	Version int32
	// Payload is the number of payload bytes following the header. A negative value marks a keep-alive.
	Payload int32
	// Ret is the return code: non-negative on success, a negated error code otherwise.
	Ret   int32
	Flags Flag
	Size  int32
	// Offset is echoed by the server and has no meaning for the client.
	Offset int32
}

// PersistenceGranted reports whether the server keeps the connection open after this response.
func (h ResponseHeader) PersistenceGranted() bool {
	return h.Flags&FlagPersistence != 0
}

// Failed reports whether the response carries a negative return code.
func (h ResponseHeader) Failed() bool {
	return h.Ret < 0
}

// Err returns a *ProtocolError for a failed response, nil otherwise.
func (h ResponseHeader) Err() error {
	if h.Ret >= 0 {
		return nil
	}

	return &ProtocolError{Code: -h.Ret}
}

// EncodeRequest builds a request frame: the 24-byte header followed by payload.
//
// The payload length field is set to len(payload). size is the maximum accepted result size for
// read-like requests or the value length for writes.
func EncodeRequest(typ MsgType, payload []byte, flags Flag, size int32, offset int32) []byte {
	buf := make([]byte, HeaderSize+len(payload))
	putHeader(buf, Version, int32(len(payload)), int32(typ), uint32(flags), size, offset) //nolint: gosec
	copy(buf[HeaderSize:], payload)

	return buf
}

// EncodeResponse builds a response frame. The Payload field of h is ignored and set to len(payload),
// unless payload is empty and h.Payload is negative, in which case a keep-alive header is produced.
func EncodeResponse(h ResponseHeader, payload []byte) []byte {
	payloadLen := int32(len(payload)) //nolint: gosec
	if payloadLen == 0 && h.Payload < 0 {
		payloadLen = h.Payload
	}

	buf := make([]byte, HeaderSize+len(payload))
	putHeader(buf, h.Version, payloadLen, h.Ret, uint32(h.Flags), h.Size, h.Offset)
	copy(buf[HeaderSize:], payload)

	return buf
}

// DecodeRequestHeader decodes the header of a request frame.
func DecodeRequestHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, &DecodeError{Len: len(data), Err: ErrShortHeader}
	}

	return Header{
		Version: getInt32(data, 0),
		Payload: getInt32(data, 4),
		Type:    MsgType(getInt32(data, 8)),
		Flags:   Flag(binary.BigEndian.Uint32(data[12:])),
		Size:    getInt32(data, 16),
		Offset:  getInt32(data, 20),
	}, nil
}

// DecodeRequest decodes a full request frame and returns its header and payload.
func DecodeRequest(data []byte) (Header, []byte, error) {
	h, err := DecodeRequestHeader(data)
	if err != nil {
		return h, nil, err
	}

	if h.Payload < 0 || int(h.Payload) > len(data)-HeaderSize {
		return h, nil, &DecodeError{
			Len: len(data),
			Err: fmt.Errorf("payload length %d exceeds frame", h.Payload),
		}
	}

	return h, data[HeaderSize : HeaderSize+int(h.Payload)], nil
}

// DecodeResponseHeader decodes the header of a response frame.
func DecodeResponseHeader(data []byte) (ResponseHeader, error) {
	if len(data) < HeaderSize {
		return ResponseHeader{}, &DecodeError{Len: len(data), Err: ErrShortHeader}
	}

	return ResponseHeader{
		Version: getInt32(data, 0),
		Payload: getInt32(data, 4),
		Ret:     getInt32(data, 8),
		Flags:   Flag(binary.BigEndian.Uint32(data[12:])),
		Size:    getInt32(data, 16),
		Offset:  getInt32(data, 20),
	}, nil
}

// PathPayload returns path terminated by a NUL byte, followed by value if any.
func PathPayload(path string, value []byte) []byte {
	buf := make([]byte, 0, len(path)+1+len(value))
	buf = append(buf, path...)
	buf = append(buf, 0)

	return append(buf, value...)
}

// putHeader writes the six header fields in order. The third field is the message type in
// requests and the return code in responses.
func putHeader(buf []byte, version, payload, typeOrRet int32, flags uint32, size, offset int32) {
	binary.BigEndian.PutUint32(buf[0:], uint32(version))   //nolint: gosec
	binary.BigEndian.PutUint32(buf[4:], uint32(payload))   //nolint: gosec
	binary.BigEndian.PutUint32(buf[8:], uint32(typeOrRet)) //nolint: gosec
	binary.BigEndian.PutUint32(buf[12:], flags)
	binary.BigEndian.PutUint32(buf[16:], uint32(size))   //nolint: gosec
	binary.BigEndian.PutUint32(buf[20:], uint32(offset)) //nolint: gosec
}

func getInt32(data []byte, off int) int32 {
	return int32(binary.BigEndian.Uint32(data[off:])) //nolint: gosec
}
