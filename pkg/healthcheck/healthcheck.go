// Package healthcheck implements the Arcus Connection's liveness heartbeat:
// a periodic outbound "health" message and an inbound silence deadline.
package healthcheck

import (
	"errors"
	"time"

	"github.com/arcus-sdk/go-arcus/pkg/message"
	"github.com/arcus-sdk/go-arcus/pkg/ring"
)

const (
	// DefaultSendInterval is how often a Connection emits an outbound
	// health heartbeat absent any other outgoing traffic.
	DefaultSendInterval = 3 * time.Second
	// DefaultReceiveInterval is how long a Connection tolerates total
	// inbound silence before declaring the peer unhealthy.
	DefaultReceiveInterval = 10 * time.Second
)

// ErrTimeout is returned by Tick when the peer has been silent for at least
// ReceiveInterval.
var ErrTimeout = errors.New("healthcheck: peer silent past receive interval")

// Checker tracks the two clocks a Connection needs for liveness: time since
// the last outbound byte (drives the heartbeat) and time since the last
// inbound byte (drives the timeout). It never touches the socket directly —
// Connection calls NotifySent/NotifyReceived as bytes actually cross the
// wire, and Tick each update.
type Checker struct {
	sendInterval    time.Duration
	receiveInterval time.Duration
	lastSend        time.Time
	lastReceive     time.Time
}

// New returns a Checker armed with the given intervals, both clocks reset
// to now.
func New(sendInterval, receiveInterval time.Duration, now time.Time) *Checker {
	if sendInterval <= 0 {
		sendInterval = DefaultSendInterval
	}
	if receiveInterval <= 0 {
		receiveInterval = DefaultReceiveInterval
	}
	return &Checker{
		sendInterval:    sendInterval,
		receiveInterval: receiveInterval,
		lastSend:        now,
		lastReceive:     now,
	}
}

// NotifySent records that at least one byte left the wire at now.
func (c *Checker) NotifySent(now time.Time) {
	c.lastSend = now
}

// NotifyReceived records that at least one byte arrived from the wire at
// now. Inbound health messages count for this even though they never reach
// the incoming Ring.
func (c *Checker) NotifyReceived(now time.Time) {
	c.lastReceive = now
}

// Tick runs one health step: if the send interval has elapsed, it enqueues
// a health Message onto outgoing (dropped silently if the Ring is full —
// the next tick tries again, since lastSend is only advanced by
// NotifySent). If the receive interval has elapsed, it returns ErrTimeout.
func (c *Checker) Tick(now time.Time, outgoing *ring.Ring[*message.Message]) error {
	if now.Sub(c.lastSend) >= c.sendInterval {
		_ = outgoing.Push(message.Health())
	}
	if now.Sub(c.lastReceive) >= c.receiveInterval {
		return ErrTimeout
	}
	return nil
}
