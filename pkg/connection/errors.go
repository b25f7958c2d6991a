package connection

import "errors"

// Error taxonomy for the Connection core, matching §7 of the protocol
// design. Codec errors from the parse step are returned as pkg/codec's own
// sentinels, so errors.Is matches them. Socket-level errors are wrapped in
// one of these sentinels with their text only (%v), so errors.Is matches
// the connection sentinel and not the pkg/socket one.
var (
	ErrHandshakeTimeout              = errors.New("connection: handshake timeout")
	ErrHealthTimeout                 = errors.New("connection: health timeout")
	ErrHelloInvalid                  = errors.New("connection: hello invalid")
	ErrHelloMessageSendFailed        = errors.New("connection: hello message send failed")
	ErrHelloMessageReceiveFailed     = errors.New("connection: hello message receive failed")
	ErrHelloMessageReplyInvalid      = errors.New("connection: hello message reply invalid")
	ErrHelloMessageHeaderTooBig      = errors.New("connection: hello message header too big")
	ErrMessageReceiveFailed          = errors.New("connection: message receive failed")
	ErrReadTooBigForStream           = errors.New("connection: read too big for stream")
	ErrOutMessageTooBigForStream     = errors.New("connection: outgoing message too big for stream")
	ErrOutgoingQueueInsufficientSpace = errors.New("connection: outgoing queue insufficient space")
	ErrReceiveBeforeSend             = errors.New("connection: peer spoke before receiving hello")
	ErrSendFail                      = errors.New("connection: send failed")
	ErrUnknownStatus                 = errors.New("connection: unknown status")
	ErrUpdateAfterError              = errors.New("connection: update called after error")
	ErrUpdateReadyFail                = errors.New("connection: socket readiness probe failed")
	ErrAlreadyInitialized             = errors.New("connection: already initialized")
	ErrNotInitialized                 = errors.New("connection: not initialized")
	ErrInitiateHandshakeInvalidState  = errors.New("connection: initiate_handshake called outside handshake_not_started")
)
