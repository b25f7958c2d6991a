package codec

import (
	"fmt"

	"github.com/arcus-sdk/go-arcus/pkg/message"
	"github.com/arcus-sdk/go-arcus/pkg/wire"
)

// ValidateHello reports whether buf is a bit-exact match of the protocol's
// hello constant.
func ValidateHello(buf []byte) bool {
	return wire.ValidateHello(buf)
}

// ValidateHeader checks the fields the codec itself is responsible for:
// flags must be zero and the opcode must be in the supported set. Length is
// validated by DataToMessage, not here.
func ValidateHeader(h wire.Header) bool {
	if h.Flags != 0 {
		return false
	}
	return wire.IsSupported(h.Opcode)
}

// DataToHeader decodes exactly wire.HeaderSize bytes of buf into a Header
// and validates it.
func DataToHeader(buf []byte) (wire.Header, error) {
	if len(buf) < wire.HeaderSize {
		return wire.Header{}, fmt.Errorf("%w: have %d, want %d", ErrHeaderLengthTooSmall, len(buf), wire.HeaderSize)
	}
	if len(buf) > wire.HeaderSize {
		return wire.Header{}, fmt.Errorf("%w: have %d, want %d", ErrHeaderLengthTooBig, len(buf), wire.HeaderSize)
	}
	h := wire.DecodeHeader(buf)
	if !ValidateHeader(h) {
		return wire.Header{}, fmt.Errorf("%w: flags=%d opcode=%d", ErrInvalidHeader, h.Flags, h.Opcode)
	}
	return h, nil
}

// DataToMessage decodes a complete frame (Header || Payload) from buf. buf
// must contain exactly header_size()+header.length bytes; the caller (the
// Connection's parse step) is responsible for buffering a complete frame
// before calling this.
func DataToMessage(buf []byte) (*message.Message, error) {
	if len(buf) < wire.HeaderSize {
		return nil, fmt.Errorf("%w: have %d, want at least %d", ErrDataLengthTooSmallForHeader, len(buf), wire.HeaderSize)
	}
	h, err := DataToHeader(buf[:wire.HeaderSize])
	if err != nil {
		return nil, err
	}
	if h.Length > wire.PayloadMaxSize {
		return nil, fmt.Errorf("%w: declared %d, max %d", ErrExpectedDataLengthTooBig, h.Length, wire.PayloadMaxSize)
	}
	expected := wire.HeaderSize + int(h.Length)
	if len(buf) < expected {
		return nil, fmt.Errorf("%w: have %d, want %d", ErrDataLengthTooSmallForPayload, len(buf), expected)
	}
	payload, err := message.PayloadFromJSON(buf[wire.HeaderSize:expected])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPayloadParseFailed, err)
	}
	return message.New(h.Opcode, payload), nil
}

// MessageToData serializes msg to Header || Payload wire bytes.
func MessageToData(msg *message.Message) ([]byte, error) {
	if !wire.IsSupported(msg.Code) {
		return nil, fmt.Errorf("%w: opcode=%d", ErrUnsupportedOpcode, msg.Code)
	}
	payloadData, err := msg.Payload.ToJSON()
	if err != nil {
		return nil, err
	}
	if msg.Payload.IsEmpty() {
		payloadData = nil
	}
	if len(payloadData) > wire.PayloadMaxSize {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrPayloadSizeTooBig, len(payloadData), wire.PayloadMaxSize)
	}
	h := wire.Header{Opcode: msg.Code, Length: uint32(len(payloadData))}
	out := make([]byte, 0, wire.HeaderSize+len(payloadData))
	out = append(out, h.Encode()...)
	out = append(out, payloadData...)
	return out, nil
}
