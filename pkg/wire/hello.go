package wire

const (
	// HelloSize is the fixed size, in bytes, of the raw pre-handshake hello.
	HelloSize = 4

	// ProtocolVersion is the only version this SDK speaks. A peer presenting
	// any other value fails the handshake.
	ProtocolVersion byte = 0x01
)

// Hello is the bare 4-byte magic sent by the handshake initiator before any
// Header exists on the wire. It is not a Header.
var Hello = [HelloSize]byte{'a', 'r', 'c', ProtocolVersion}

// ValidateHello reports whether buf is byte-exact equal to Hello. Any
// single-bit mutation, including a version byte mismatch, fails this check.
func ValidateHello(buf []byte) bool {
	if len(buf) != HelloSize {
		return false
	}
	for i := range Hello {
		if buf[i] != Hello[i] {
			return false
		}
	}
	return true
}
