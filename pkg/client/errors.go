package client

import "errors"

var (
	// ErrNotInitialized is returned by any operation besides Init called
	// before Init succeeds.
	ErrNotInitialized = errors.New("client: not initialized")
	// ErrAlreadyInitialized is returned by Init called a second time
	// without an intervening Shutdown.
	ErrAlreadyInitialized = errors.New("client: already initialized")
	// ErrConnectionNotReady is returned by the Send* methods when the
	// underlying Connection has not completed its handshake.
	ErrConnectionNotReady = errors.New("client: connection not ready")
	// ErrValidation is wrapped by every payload-shape rejection the façade
	// performs before an outgoing message reaches the Connection core.
	ErrValidation = errors.New("client: payload validation failed")
)
