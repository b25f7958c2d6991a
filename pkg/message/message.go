package message

import "github.com/arcus-sdk/go-arcus/pkg/wire"

// Message is the in-memory unit exchanged over an Arcus Connection: an
// opcode paired with a JSON Payload. Once popped from a Ring, a Message is
// owned by its reader — there is no aliasing after removal.
type Message struct {
	Code    wire.Opcode
	Payload *Payload
}

// New builds a Message with the given opcode and payload. A nil payload is
// treated as an empty one.
func New(code wire.Opcode, payload *Payload) *Message {
	if payload == nil {
		payload = NewPayload()
	}
	return &Message{Code: code, Payload: payload}
}

// Health returns the opcode=health Message the HealthChecker enqueues as an
// outbound heartbeat.
func Health() *Message {
	return New(wire.OpcodeHealth, NewPayload())
}
