// Package codec implements the pure, stateless functions that map between
// wire bytes and (Header, Message): validate_hello, data_to_header,
// data_to_message and message_to_data.
package codec

import "errors"

var (
	// ErrHeaderLengthTooSmall is returned when fewer than wire.HeaderSize
	// bytes are given to DataToHeader.
	ErrHeaderLengthTooSmall = errors.New("codec: header length too small")
	// ErrHeaderLengthTooBig is returned when more than wire.HeaderSize bytes
	// are given to DataToHeader.
	ErrHeaderLengthTooBig = errors.New("codec: header length too big")
	// ErrDataLengthTooSmallForHeader is returned when fewer than
	// wire.HeaderSize bytes are given to DataToMessage.
	ErrDataLengthTooSmallForHeader = errors.New("codec: data length too small for header")
	// ErrDataLengthTooSmallForPayload is returned when the data given to
	// DataToMessage is shorter than header.Length declares.
	ErrDataLengthTooSmallForPayload = errors.New("codec: data length too small for payload")
	// ErrExpectedDataLengthTooBig is returned when a decoded header declares
	// a payload length exceeding wire.PayloadMaxSize.
	ErrExpectedDataLengthTooBig = errors.New("codec: expected data length too big")
	// ErrInvalidHeader is returned when flags != 0 or the opcode is not in
	// the supported set.
	ErrInvalidHeader = errors.New("codec: invalid header")
	// ErrPayloadParseFailed is returned when the payload bytes do not decode
	// as a JSON object.
	ErrPayloadParseFailed = errors.New("codec: payload parse failed")
	// ErrPayloadSizeTooBig is returned by MessageToData when the encoded
	// payload would exceed wire.PayloadMaxSize.
	ErrPayloadSizeTooBig = errors.New("codec: payload size too big")
	// ErrUnsupportedOpcode is returned by MessageToData when the message's
	// opcode is not in the supported set.
	ErrUnsupportedOpcode = errors.New("codec: trying to encode unsupported opcode")
)
