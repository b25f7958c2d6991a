package client

import "github.com/arcus-sdk/go-arcus/pkg/connection"

// Status is the façade's coarse view of Connection.Status, collapsing every
// handshake sub-state into a single "handshake" value.
type Status int

const (
	StatusUninitialized Status = iota
	StatusConnecting
	StatusHandshake
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusConnecting:
		return "connecting"
	case StatusHandshake:
		return "handshake"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

func fromConnectionStatus(s connection.Status) Status {
	switch s {
	case connection.StatusHandshakeNotStarted,
		connection.StatusHandshakeHelloScheduled,
		connection.StatusHandshakeHelloReceived,
		connection.StatusHandshakeHelloSent:
		return StatusHandshake
	case connection.StatusReady:
		return StatusReady
	default:
		return StatusError
	}
}
