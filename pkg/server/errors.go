package server

import "errors"

var (
	// ErrNotInitialized is returned by any operation besides Init called
	// before Init succeeds.
	ErrNotInitialized = errors.New("server: not initialized")
	// ErrAlreadyInitialized is returned by Init called a second time
	// without an intervening Shutdown.
	ErrAlreadyInitialized = errors.New("server: already initialized")
	// ErrConnectionNotReady is returned by the Send* methods when no agent
	// is connected or the handshake has not completed.
	ErrConnectionNotReady = errors.New("server: connection not ready")
	// ErrValidation is wrapped by every payload-shape rejection the façade
	// performs before an outgoing message reaches the Connection core.
	ErrValidation = errors.New("server: payload validation failed")
)
