package message

import (
	"errors"
	"fmt"
)

// Sentinel errors for Payload access and parsing. Use errors.Is against
// these, or errors.As against KeyNotFoundError/TypeError for the offending
// key and expected type.
var (
	// ErrParseFailed is returned when payload bytes do not decode as a JSON
	// object.
	ErrParseFailed = errors.New("message: payload parse failed")
	// ErrKeyNotFound is returned by a typed accessor when the key is absent.
	ErrKeyNotFound = errors.New("message: key not found")
	// ErrWrongType is returned by a typed accessor when the key's value does
	// not match the requested JSON type.
	ErrWrongType = errors.New("message: wrong type")
	// ErrUnsupportedOpcode names an opcode outside the closed set. No
	// function in this package returns it; codec.MessageToData reports
	// unsupported opcodes with codec.ErrUnsupportedOpcode.
	ErrUnsupportedOpcode = errors.New("message: unsupported opcode")
)

// KeyNotFoundError names the missing key.
type KeyNotFoundError struct {
	Key string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("message: key %q not found", e.Key)
}

// Unwrap lets errors.Is(err, ErrKeyNotFound) succeed.
func (e *KeyNotFoundError) Unwrap() error { return ErrKeyNotFound }

// TypeError names the key and the JSON type that was expected.
type TypeError struct {
	Key      string
	Expected string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("message: key %q: expecting %s", e.Key, e.Expected)
}

// Unwrap lets errors.Is(err, ErrWrongType) succeed.
func (e *TypeError) Unwrap() error { return ErrWrongType }
