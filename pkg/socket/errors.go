// Package socket wraps a single TCP connection with the non-blocking,
// partial-transfer semantics the Connection core's framing loop needs: a
// zero-timeout readiness probe, sends/receives that may transfer less than
// requested, and a process-wide init/cleanup guard.
package socket

import "errors"

var (
	// ErrCreateFailed is returned when the underlying TCP dial/listen fails.
	ErrCreateFailed = errors.New("socket: create failed")
	// ErrBindFailed is returned when binding to the requested port fails.
	ErrBindFailed = errors.New("socket: bind failed")
	// ErrListenFailed is returned when starting to listen fails.
	ErrListenFailed = errors.New("socket: listen failed")
	// ErrAcceptFailed is returned when accepting an incoming connection fails.
	ErrAcceptFailed = errors.New("socket: accept failed")
	// ErrConnectFailed is returned when an outbound connect attempt fails.
	ErrConnectFailed = errors.New("socket: connect failed")
	// ErrSendFailed is returned when a send encounters a non-blocking error.
	ErrSendFailed = errors.New("socket: send failed")
	// ErrReceiveFailed is returned when a receive encounters a non-blocking
	// error, including a peer-closed connection (EOF).
	ErrReceiveFailed = errors.New("socket: receive failed")
	// ErrSelectFailed is returned when the readiness probe detects a
	// socket-level error (distinct from "not yet ready").
	ErrSelectFailed = errors.New("socket: select failed")
	// ErrUninitialized is returned by any operation attempted before Init or
	// after Close.
	ErrUninitialized = errors.New("socket: uninitialized")
	// ErrAlreadyInitialized is returned by Init when called twice without an
	// intervening Close.
	ErrAlreadyInitialized = errors.New("socket: already initialized")
)
