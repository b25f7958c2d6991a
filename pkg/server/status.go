package server

import "github.com/arcus-sdk/go-arcus/pkg/connection"

// Status is the façade's coarse view of the current agent connection,
// adding waiting_for_client ahead of the handshake sub-states the way the
// reference server's status() distinguishes "listening, nobody connected
// yet" from "someone connected but the handshake hasn't finished".
type Status int

const (
	StatusUninitialized Status = iota
	StatusWaitingForClient
	StatusHandshake
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusWaitingForClient:
		return "waiting_for_client"
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
