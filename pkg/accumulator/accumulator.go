// Package accumulator implements the byte buffer backing one direction of an
// Arcus socket stream: an append-only sink with a consume-from-front source.
package accumulator

import (
	"errors"
	"fmt"
)

// ErrCapacityExceeded is returned by Append when the write would grow the
// buffer past its fixed capacity.
var ErrCapacityExceeded = errors.New("accumulator: capacity exceeded")

// ErrTrimTooLarge is returned by Trim/Get/Peek when n exceeds the buffer's
// current size.
var ErrTrimTooLarge = errors.New("accumulator: n exceeds buffered size")

// Accumulator is a fixed-capacity byte buffer. Size never exceeds Capacity.
// Peek never mutates; Trim discards from the front; Get returns a
// contiguous copy of the next n bytes. The implementation compacts on
// Trim, so Get/Peek never need to wrap.
type Accumulator struct {
	capacity int
	buf      []byte
}

// New returns an Accumulator with the given fixed backing capacity.
func New(capacity int) *Accumulator {
	return &Accumulator{capacity: capacity, buf: make([]byte, 0, capacity)}
}

// Capacity returns the fixed backing capacity in bytes.
func (a *Accumulator) Capacity() int {
	return a.capacity
}

// Size returns the number of buffered, unconsumed bytes.
func (a *Accumulator) Size() int {
	return len(a.buf)
}

// Free returns Capacity - Size, the room available for the next Append.
func (a *Accumulator) Free() int {
	return a.capacity - len(a.buf)
}

// Append adds data to the end of the buffer. It fails with
// ErrCapacityExceeded, leaving the buffer unchanged, if data would not fit.
func (a *Accumulator) Append(data []byte) error {
	if len(data) > a.Free() {
		return fmt.Errorf("%w: have %d free, need %d", ErrCapacityExceeded, a.Free(), len(data))
	}
	a.buf = append(a.buf, data...)
	return nil
}

// Peek returns a copy of the next n bytes without consuming them. It fails
// with ErrTrimTooLarge if n exceeds Size.
func (a *Accumulator) Peek(n int) ([]byte, error) {
	if n > len(a.buf) {
		return nil, fmt.Errorf("%w: have %d, want %d", ErrTrimTooLarge, len(a.buf), n)
	}
	out := make([]byte, n)
	copy(out, a.buf[:n])
	return out, nil
}

// Get returns a contiguous copy of the next n bytes and, unlike Peek, is the
// accessor callers use when they intend to then Trim the same n.
func (a *Accumulator) Get(n int) ([]byte, error) {
	return a.Peek(n)
}

// Trim discards the next n bytes from the front of the buffer. It fails
// with ErrTrimTooLarge, leaving the buffer unchanged, if n exceeds Size.
func (a *Accumulator) Trim(n int) error {
	if n > len(a.buf) {
		return fmt.Errorf("%w: have %d, want %d", ErrTrimTooLarge, len(a.buf), n)
	}
	remaining := len(a.buf) - n
	copy(a.buf[:remaining], a.buf[n:])
	a.buf = a.buf[:remaining]
	return nil
}

// Reset empties the buffer, retaining its backing capacity.
func (a *Accumulator) Reset() {
	a.buf = a.buf[:0]
}
