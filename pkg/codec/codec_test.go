package codec

import (
	"testing"

	"github.com/arcus-sdk/go-arcus/pkg/message"
	"github.com/arcus-sdk/go-arcus/pkg/wire"
	"github.com/stretchr/testify/require"
)

func TestValidateHello(t *testing.T) {
	require.True(t, ValidateHello([]byte{'a', 'r', 'c', 0x01}))
	require.False(t, ValidateHello([]byte{'a', 'r', 'c', 0x02}))
	require.False(t, ValidateHello([]byte{'a', 'r', 'b', 0x01}))
	require.False(t, ValidateHello([]byte{'a', 'r', 'c'}))
}

func TestRoundTrip(t *testing.T) {
	p := message.NewPayload()
	p.SetString("key", "value")
	p.SetInt("count", 3)
	msg := message.New(wire.OpcodeMetadata, p)

	data, err := MessageToData(msg)
	require.NoError(t, err)

	decoded, err := DataToMessage(data)
	require.NoError(t, err)
	require.Equal(t, msg.Code, decoded.Code)

	s, err := decoded.Payload.GetString("key")
	require.NoError(t, err)
	require.Equal(t, "value", s)

	n, err := decoded.Payload.GetInt("count")
	require.NoError(t, err)
	require.Equal(t, int64(3), n)
}

func TestRoundTripEmptyPayload(t *testing.T) {
	msg := message.New(wire.OpcodeHealth, nil)
	data, err := MessageToData(msg)
	require.NoError(t, err)
	require.Len(t, data, wire.HeaderSize)

	decoded, err := DataToMessage(data)
	require.NoError(t, err)
	require.True(t, decoded.Payload.IsEmpty())
}

func TestDataToHeaderTooSmall(t *testing.T) {
	_, err := DataToHeader([]byte{1, 2, 3})
	require.ErrorIs(t, err, ErrHeaderLengthTooSmall)
}

func TestDataToHeaderTooBig(t *testing.T) {
	_, err := DataToHeader(make([]byte, wire.HeaderSize+1))
	require.ErrorIs(t, err, ErrHeaderLengthTooBig)
}

func TestDataToHeaderInvalidFlags(t *testing.T) {
	h := wire.Header{Flags: 1, Opcode: wire.OpcodeHealth}
	_, err := DataToHeader(h.Encode())
	require.ErrorIs(t, err, ErrInvalidHeader)
}

func TestDataToHeaderUnsupportedOpcode(t *testing.T) {
	h := wire.Header{Opcode: wire.Opcode(200)}
	_, err := DataToHeader(h.Encode())
	require.ErrorIs(t, err, ErrInvalidHeader)
}

func TestDataToMessageExpectedLengthTooBig(t *testing.T) {
	h := wire.Header{Opcode: wire.OpcodeMetadata, Length: wire.PayloadMaxSize + 1}
	_, err := DataToMessage(h.Encode())
	require.ErrorIs(t, err, ErrExpectedDataLengthTooBig)
}

func TestDataToMessageTooSmallForPayload(t *testing.T) {
	h := wire.Header{Opcode: wire.OpcodeMetadata, Length: 10}
	buf := append(h.Encode(), []byte("{}")...)
	_, err := DataToMessage(buf)
	require.ErrorIs(t, err, ErrDataLengthTooSmallForPayload)
}

func TestMessageToDataUnsupportedOpcode(t *testing.T) {
	msg := message.New(wire.Opcode(250), nil)
	_, err := MessageToData(msg)
	require.ErrorIs(t, err, ErrUnsupportedOpcode)
}

func TestLargePayloadRoundTrip(t *testing.T) {
	p := message.NewPayload()
	big := make([]byte, 64*1024)
	for i := range big {
		big[i] = 'x'
	}
	p.SetString("blob", string(big))
	msg := message.New(wire.OpcodeMetadata, p)

	data, err := MessageToData(msg)
	require.NoError(t, err)

	decoded, err := DataToMessage(data)
	require.NoError(t, err)
	s, err := decoded.Payload.GetString("blob")
	require.NoError(t, err)
	require.Equal(t, string(big), s)
}

func TestPartialFrameSplitYieldsSameMessage(t *testing.T) {
	p := message.NewPayload()
	p.SetBool("ok", true)
	msg := message.New(wire.OpcodeSoftStop, p)
	data, err := MessageToData(msg)
	require.NoError(t, err)

	// Simulate arbitrary chunking by re-assembling before decode; the
	// Connection's Accumulator is what actually buffers partial chunks, but
	// the codec itself is only ever handed a complete frame.
	var reassembled []byte
	for i := 0; i < len(data); i++ {
		reassembled = append(reassembled, data[i])
	}
	decoded, err := DataToMessage(reassembled)
	require.NoError(t, err)
	require.Equal(t, msg.Code, decoded.Code)
}
