package ownet

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRequest(t *testing.T) {
	require := require.New(t)

	payload := PathPayload("/10.67C6697351FF/temperature", nil)
	frame := EncodeRequest(MsgRead, payload, FlagPersistence, DefaultReadSize, 0)
	require.Len(frame, HeaderSize+len(payload))

	require.Equal([]byte{
		0, 0, 0, 0, // version
		0, 0, 0, 29, // payload length
		0, 0, 0, 2, // type
		0, 0, 0, 4, // flags
		0, 1, 0, 0, // size
		0, 0, 0, 0, // offset
	}, frame[:HeaderSize])
	require.Equal(byte(0), frame[len(frame)-1])
}

func TestDecodeRequest_RoundTrip(t *testing.T) {
	tests := []struct {
		description string
		typ         MsgType
		payload     []byte
		flags       Flag
		size        int32
		offset      int32
	}{
		{"nop without payload", MsgNop, nil, FlagPersistence, 0, 0},
		{"read", MsgRead, PathPayload("/28.000028D70000/temperature", nil), FlagsFrom(FlagPersistence, FlagUncached), DefaultReadSize, 0},
		{"write", MsgWrite, PathPayload("/05.4AEC29CDBAAB/PIO", []byte("1")), FlagPersistence | TempKelvin, 1, 0},
		{"dir with offset", MsgDirAllSlash, PathPayload("/", nil), FlagOwnet, 0, 17},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			require := require.New(t)

			frame := EncodeRequest(tt.typ, tt.payload, tt.flags, tt.size, tt.offset)
			h, payload, err := DecodeRequest(frame)
			require.NoError(err)

			require.Equal(int32(Version), h.Version)
			require.Equal(int32(len(tt.payload)), h.Payload) //nolint: gosec
			require.Equal(tt.typ, h.Type)
			require.Equal(tt.flags, h.Flags)
			require.Equal(tt.size, h.Size)
			require.Equal(tt.offset, h.Offset)
			if len(tt.payload) == 0 {
				require.Empty(payload)
			} else {
				require.Equal(tt.payload, payload)
			}
		})
	}
}

func TestDecodeRequest_Truncated(t *testing.T) {
	frame := EncodeRequest(MsgRead, PathPayload("/uncached", nil), 0, 0, 0)

	_, _, err := DecodeRequest(frame[:len(frame)-2])
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
}

func TestDecodeResponseHeader(t *testing.T) {
	require := require.New(t)

	data := []byte{
		0, 0, 0, 0,
		0, 0, 0, 12,
		0xFF, 0xFF, 0xFF, 0xFE, // -2
		0, 0, 0, 4,
		0, 0, 0, 12,
		0, 0, 0, 0,
	}

	h, err := DecodeResponseHeader(data)
	require.NoError(err)
	require.Equal(int32(12), h.Payload)
	require.Equal(int32(-2), h.Ret)
	require.Equal(int32(12), h.Size)
	require.True(h.PersistenceGranted())
	require.True(h.Failed())

	var pe *ProtocolError
	require.ErrorAs(h.Err(), &pe)
	require.Equal(int32(2), pe.Code)
}

func TestDecodeHeader_Short(t *testing.T) {
	for _, n := range []int{0, 1, 23} {
		_, err := DecodeResponseHeader(make([]byte, n))
		require.ErrorIs(t, err, ErrShortHeader)

		_, err = DecodeRequestHeader(make([]byte, n))
		require.ErrorIs(t, err, ErrShortHeader)
	}
}

func TestEncodeResponse(t *testing.T) {
	t.Run("payload length follows payload", func(t *testing.T) {
		frame := EncodeResponse(ResponseHeader{Payload: 99, Flags: FlagPersistence}, []byte("abc"))
		h, err := DecodeResponseHeader(frame)
		require.NoError(t, err)
		require.Equal(t, int32(3), h.Payload)
		require.Equal(t, []byte("abc"), frame[HeaderSize:])
	})

	t.Run("keep-alive", func(t *testing.T) {
		frame := EncodeResponse(ResponseHeader{Payload: -1}, nil)
		h, err := DecodeResponseHeader(frame)
		require.NoError(t, err)
		require.Equal(t, int32(-1), h.Payload)
	})
}

func TestPersistenceGranted(t *testing.T) {
	assert.True(t, ResponseHeader{Flags: FlagPersistence}.PersistenceGranted())
	assert.True(t, ResponseHeader{Flags: FlagPersistence | FlagUncached}.PersistenceGranted())
	assert.False(t, ResponseHeader{Flags: FlagUncached}.PersistenceGranted())
	assert.NoError(t, ResponseHeader{Ret: 0}.Err())
}

func TestMsgTypeString(t *testing.T) {
	assert.Equal(t, "nop", MsgNop.String())
	assert.Equal(t, "dirallslash", MsgDirAllSlash.String())
	assert.Equal(t, "unknown(42)", MsgType(42).String())
	assert.True(t, MsgGetSlash.Valid())
	assert.False(t, MsgType(-1).Valid())
}

func TestProtocolErrorIs(t *testing.T) {
	err := error(&ProtocolError{Code: 1, Text: "Startup"})
	assert.True(t, errors.Is(err, &ProtocolError{Code: 1}))
	assert.False(t, errors.Is(err, &ProtocolError{Code: 2}))
	assert.Equal(t, "owserver error 1: Startup", err.Error())
	assert.Equal(t, "owserver error 7", (&ProtocolError{Code: 7}).Error())
}

func TestTransportError(t *testing.T) {
	cause := errors.New("broken pipe")
	err := error(&TransportError{Kind: KindClosed, Op: "send", Err: cause})

	assert.True(t, IsRetryable(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "send: closed: broken pipe", err.Error())

	assert.True(t, IsRetryable(&TransportError{Kind: KindNotConnected}))
	assert.False(t, IsRetryable(&TransportError{Kind: KindRefused}))
	assert.False(t, IsRetryable(&TransportError{Kind: KindTimeout}))
	assert.False(t, IsRetryable(&TransportError{Kind: KindDecode}))
	assert.False(t, IsRetryable(cause))
}
