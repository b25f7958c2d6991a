package wire

import "encoding/binary"

const (
	// HeaderSize is the fixed size, in bytes, of a wire Header.
	HeaderSize = 8

	// PayloadMaxSize is the largest payload, in bytes, the codec will accept
	// or emit. 128KiB minus the header, matching the recommended compile-time
	// constant in the protocol's reference implementation.
	PayloadMaxSize = 128*1024 - HeaderSize
)

// ByteOrder is the single, documented byte order for every multi-byte wire
// field. Implementers on big-endian hosts must still encode/decode through
// this order.
var ByteOrder = binary.LittleEndian

// Header is the fixed 8-byte frame header that precedes every message
// payload on the wire:
//
//	offset  size   field
//	 0      1      flags     (==0, reserved)
//	 1      1      opcode
//	 2      2      reserved  (==0)
//	 4      4      length    (payload length in bytes, little-endian)
type Header struct {
	Flags    byte
	Opcode   Opcode
	Reserved uint16
	Length   uint32
}

// Equal reports whether h and other match in every field, the definition of
// wire-level header equality used by the handshake reply check.
func (h Header) Equal(other Header) bool {
	return h == other
}

// Encode writes h to a freshly allocated HeaderSize-byte slice in ByteOrder.
// It does not validate h; callers validate before encoding.
func (h Header) Encode() []byte {
	buf := make([]byte, HeaderSize)
	buf[0] = h.Flags
	buf[1] = byte(h.Opcode)
	ByteOrder.PutUint16(buf[2:4], h.Reserved)
	ByteOrder.PutUint32(buf[4:8], h.Length)
	return buf
}

// DecodeHeader reads a Header from the first HeaderSize bytes of buf. The
// caller must ensure len(buf) >= HeaderSize; DecodeHeader does not validate
// the decoded fields (flags, opcode) — see codec.DataToHeader for that.
func DecodeHeader(buf []byte) Header {
	return Header{
		Flags:    buf[0],
		Opcode:   Opcode(buf[1]),
		Reserved: ByteOrder.Uint16(buf[2:4]),
		Length:   ByteOrder.Uint32(buf[4:8]),
	}
}

// HelloHeader is the Header sent in reply to a raw Hello during the
// handshake: opcode=hello, length=0, flags=0, reserved=0.
func HelloHeader() Header {
	return Header{Opcode: OpcodeHello}
}
