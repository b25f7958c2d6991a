// Package connection implements the Arcus Connection core: the handshake
// state machine, the steady-state framing pump, and the bounded
// incoming/outgoing message queues that sit between a raw socket.Socket and
// the Client/Server façades. This is the piece everything else in the SDK
// is built to keep thin.
package connection

import (
	"fmt"
	"time"

	"github.com/arcus-sdk/go-arcus/pkg/accumulator"
	"github.com/arcus-sdk/go-arcus/pkg/codec"
	"github.com/arcus-sdk/go-arcus/pkg/healthcheck"
	"github.com/arcus-sdk/go-arcus/pkg/message"
	"github.com/arcus-sdk/go-arcus/pkg/ring"
	"github.com/arcus-sdk/go-arcus/pkg/socket"
	"github.com/arcus-sdk/go-arcus/pkg/wire"
	"go.uber.org/atomic"
)

// Status is the Connection's handshake/lifecycle state.
type Status int

const (
	// StatusHandshakeNotStarted is the initial state for the handshake
	// responder (the role that waits for a raw hello before speaking).
	StatusHandshakeNotStarted Status = iota
	// StatusHandshakeHelloScheduled is the initiator's state after
	// InitiateHandshake, before the raw hello has fully left the wire.
	StatusHandshakeHelloScheduled
	// StatusHandshakeHelloReceived is the responder's state after validating
	// the peer's raw hello, before the reply Header has fully left the wire.
	StatusHandshakeHelloReceived
	// StatusHandshakeHelloSent is the initiator's state after the raw hello
	// has fully left the wire, waiting for the reply Header.
	StatusHandshakeHelloSent
	// StatusReady is the steady state: framing, queues and health all active.
	StatusReady
	// StatusError is terminal: Update fails with ErrUpdateAfterError until
	// Shutdown resets the Connection.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusHandshakeNotStarted:
		return "handshake_not_started"
	case StatusHandshakeHelloScheduled:
		return "handshake_hello_scheduled"
	case StatusHandshakeHelloReceived:
		return "handshake_hello_received"
	case StatusHandshakeHelloSent:
		return "handshake_hello_sent"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Observer receives lifecycle notifications from a Connection. It is the
// seam pkg/metrics hangs Prometheus collectors off without the core
// importing a metrics client directly. A nil Observer is valid; every
// notification is a no-op against it.
type Observer interface {
	HandshakeCompleted()
	HandshakeFailed(err error)
	HealthTimeout()
	MessageSent()
	MessageReceived()
}

func notify(o Observer, f func(Observer)) {
	if o != nil {
		f(o)
	}
}

// Config bounds and tunes a Connection. The zero value is valid; Defaults
// fills in every unset field.
type Config struct {
	IncomingQueueCapacity int
	OutgoingQueueCapacity int
	StreamCapacity        int
	HandshakeTimeout      time.Duration
	HealthSendInterval    time.Duration
	HealthReceiveInterval time.Duration
	Observer              Observer
}

func (c *Config) setDefaults() {
	if c.IncomingQueueCapacity <= 0 {
		c.IncomingQueueCapacity = ring.DefaultCapacity
	}
	if c.OutgoingQueueCapacity <= 0 {
		c.OutgoingQueueCapacity = ring.DefaultCapacity
	}
	if c.StreamCapacity <= 0 {
		c.StreamCapacity = 128 * 1024
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = time.Second
	}
	if c.HealthSendInterval <= 0 {
		c.HealthSendInterval = healthcheck.DefaultSendInterval
	}
	if c.HealthReceiveInterval <= 0 {
		c.HealthReceiveInterval = healthcheck.DefaultReceiveInterval
	}
}

// Connection drives one TCP peer through the handshake and then pumps
// framed Messages in both directions. It is not safe for concurrent use;
// callers serialize access the way the teacher's peer loop does, one
// goroutine driving Update.
type Connection struct {
	cfg Config

	sock *socket.Socket

	inStream  *accumulator.Accumulator
	outStream *accumulator.Accumulator

	incoming *ring.Ring[*message.Message]
	outgoing *ring.Ring[*message.Message]

	health *healthcheck.Checker

	// status is stored atomically so a monitoring goroutine (logging,
	// pkg/server's Status façade) can read it safely while the owning
	// goroutine drives Update, the same lock-free pattern the teacher uses
	// for its own connection state.
	status          atomic.Int32
	handshakeStart  time.Time
	handshakeTicked bool
}

// New returns a Connection configured per cfg. Call Init before any other
// method.
func New(cfg Config) *Connection {
	cfg.setDefaults()
	return &Connection{cfg: cfg}
}

// Init attaches sock and resets the Connection to handshake_not_started.
// The caller decides the role: do nothing further to act as the handshake
// responder, or call InitiateHandshake to act as the initiator.
func (c *Connection) Init(sock *socket.Socket, now time.Time) error {
	if c.sock != nil {
		return ErrAlreadyInitialized
	}
	c.sock = sock
	c.inStream = accumulator.New(c.cfg.StreamCapacity)
	c.outStream = accumulator.New(c.cfg.StreamCapacity)
	c.incoming = ring.New[*message.Message](c.cfg.IncomingQueueCapacity)
	c.outgoing = ring.New[*message.Message](c.cfg.OutgoingQueueCapacity)
	c.health = healthcheck.New(c.cfg.HealthSendInterval, c.cfg.HealthReceiveInterval, now)
	c.setStatus(StatusHandshakeNotStarted)
	c.handshakeStart = now
	c.handshakeTicked = false
	return nil
}

// Shutdown releases the underlying socket and returns the Connection to an
// uninitialized state. Shutdown is idempotent.
func (c *Connection) Shutdown() error {
	if c.sock == nil {
		return nil
	}
	err := c.sock.Close()
	c.sock = nil
	c.inStream, c.outStream = nil, nil
	c.incoming, c.outgoing = nil, nil
	c.health = nil
	c.setStatus(StatusHandshakeNotStarted)
	return err
}

// InitiateHandshake switches this Connection into the handshake initiator
// role. It must be called before the first Update, while still
// handshake_not_started.
func (c *Connection) InitiateHandshake() error {
	if c.getStatus() != StatusHandshakeNotStarted {
		return ErrInitiateHandshakeInvalidState
	}
	c.setStatus(StatusHandshakeHelloScheduled)
	return nil
}

// Status returns the current lifecycle state. Safe to call concurrently
// with Update.
func (c *Connection) Status() Status {
	return c.getStatus()
}

func (c *Connection) getStatus() Status {
	return Status(c.status.Load())
}

func (c *Connection) setStatus(s Status) {
	c.status.Store(int32(s))
}

// IncomingCount returns the number of Messages currently queued for the
// caller to consume. Health messages never count here; the parser consumes
// them internally.
func (c *Connection) IncomingCount() int {
	if c.incoming == nil {
		return 0
	}
	return c.incoming.Len()
}

// AddOutgoing invokes build on the caller's behalf only if the outgoing
// queue currently has room, so a caller never pays the cost of building a
// Message it turns out cannot be queued.
func (c *Connection) AddOutgoing(build func() (*message.Message, error)) error {
	if c.outgoing == nil {
		return ErrNotInitialized
	}
	if c.outgoing.Full() {
		return ErrOutgoingQueueInsufficientSpace
	}
	msg, err := build()
	if err != nil {
		return err
	}
	return c.outgoing.Push(msg)
}

// RemoveIncoming presents the head of the incoming queue to reader without
// removing it. The head is popped only if reader returns nil; either way,
// reader's error (possibly nil) is returned, so a reader that isn't ready
// yet can leave the Message queued for the next call.
func (c *Connection) RemoveIncoming(reader func(*message.Message) error) error {
	if c.incoming == nil {
		return ErrNotInitialized
	}
	head, err := c.incoming.Front()
	if err != nil {
		return err
	}
	readerErr := reader(head)
	if readerErr == nil {
		_, _ = c.incoming.Pop()
	}
	return readerErr
}

// Update runs exactly one tick: handshake progress while handshaking, or
// the receive/parse/send/health pump once ready. now drives both the
// handshake deadline and the health checker, so tests can pass a synthetic
// clock instead of sleeping.
func (c *Connection) Update(now time.Time) error {
	if c.sock == nil {
		return ErrNotInitialized
	}
	if c.getStatus() == StatusError {
		return ErrUpdateAfterError
	}

	if c.getStatus() != StatusReady {
		if now.Sub(c.handshakeStart) >= c.cfg.HandshakeTimeout {
			c.fail(ErrHandshakeTimeout)
			return ErrHandshakeTimeout
		}
		return c.stepHandshake(now)
	}

	if err := c.pumpReceive(now); err != nil {
		c.fail(err)
		return err
	}
	if err := c.parseIncoming(); err != nil {
		c.fail(err)
		return err
	}
	if err := c.pumpSend(now); err != nil {
		c.fail(err)
		return err
	}
	if err := c.health.Tick(now, c.outgoing); err != nil {
		c.fail(ErrHealthTimeout)
		notify(c.cfg.Observer, Observer.HealthTimeout)
		return ErrHealthTimeout
	}
	return nil
}

func (c *Connection) fail(err error) {
	c.setStatus(StatusError)
	notify(c.cfg.Observer, func(o Observer) { o.HandshakeFailed(err) })
}

// stepHandshake advances exactly the sub-step matching the current
// handshake status, mirroring the reference implementation's single
// if/else dispatch per update rather than chasing a ready Connection
// through multiple states in one tick.
func (c *Connection) stepHandshake(now time.Time) error {
	switch c.getStatus() {
	case StatusHandshakeNotStarted:
		return c.respondAwaitHello(now)
	case StatusHandshakeHelloReceived:
		return c.respondSendReply(now)
	case StatusHandshakeHelloScheduled:
		return c.initiateSendHello(now)
	case StatusHandshakeHelloSent:
		return c.initiateAwaitReply(now)
	default:
		c.fail(ErrUnknownStatus)
		return ErrUnknownStatus
	}
}

// respondAwaitHello is the responder's first step: accumulate bytes until
// a full raw hello is buffered, then validate it.
func (c *Connection) respondAwaitHello(now time.Time) error {
	if err := c.fillInStream(now); err != nil {
		c.fail(err)
		return err
	}
	if c.inStream.Size() < wire.HelloSize {
		return nil
	}
	raw, _ := c.inStream.Get(wire.HelloSize)
	if !codec.ValidateHello(raw) {
		c.fail(ErrHelloInvalid)
		return ErrHelloInvalid
	}
	_ = c.inStream.Trim(wire.HelloSize)
	c.setStatus(StatusHandshakeHelloReceived)
	return nil
}

// respondSendReply is the responder's second step: send the reply Header,
// tolerating partial writes across ticks via outStream.
func (c *Connection) respondSendReply(now time.Time) error {
	if c.outStream.Size() == 0 {
		if err := c.outStream.Append(wire.HelloHeader().Encode()); err != nil {
			c.fail(ErrHelloMessageHeaderTooBig)
			return ErrHelloMessageHeaderTooBig
		}
	}
	sent, err := c.drainOutStream(now)
	if err != nil {
		c.fail(fmt.Errorf("%w: %v", ErrHelloMessageSendFailed, err))
		return fmt.Errorf("%w: %v", ErrHelloMessageSendFailed, err)
	}
	if sent {
		c.setStatus(StatusReady)
		notify(c.cfg.Observer, Observer.HandshakeCompleted)
	}
	return nil
}

// initiateSendHello is the initiator's first step. It first checks that
// the peer hasn't spoken before receiving our hello — a responder that
// sends bytes this early has broken the protocol's ordering guarantee.
func (c *Connection) initiateSendHello(now time.Time) error {
	ready, err := c.sock.ReadyForRead(0)
	if err != nil {
		c.fail(fmt.Errorf("%w: %v", ErrUpdateReadyFail, err))
		return fmt.Errorf("%w: %v", ErrUpdateReadyFail, err)
	}
	if ready {
		c.fail(ErrReceiveBeforeSend)
		return ErrReceiveBeforeSend
	}

	if c.outStream.Size() == 0 {
		if err := c.outStream.Append(wire.Hello[:]); err != nil {
			c.fail(ErrHelloMessageHeaderTooBig)
			return ErrHelloMessageHeaderTooBig
		}
	}
	sent, err := c.drainOutStream(now)
	if err != nil {
		c.fail(fmt.Errorf("%w: %v", ErrHelloMessageSendFailed, err))
		return fmt.Errorf("%w: %v", ErrHelloMessageSendFailed, err)
	}
	if sent {
		c.setStatus(StatusHandshakeHelloSent)
	}
	return nil
}

// initiateAwaitReply is the initiator's second step: wait for the reply
// Header and check it matches byte-for-byte.
func (c *Connection) initiateAwaitReply(now time.Time) error {
	if err := c.fillInStream(now); err != nil {
		c.fail(fmt.Errorf("%w: %v", ErrHelloMessageReceiveFailed, err))
		return fmt.Errorf("%w: %v", ErrHelloMessageReceiveFailed, err)
	}
	if c.inStream.Size() < wire.HeaderSize {
		return nil
	}
	raw, _ := c.inStream.Get(wire.HeaderSize)
	_ = c.inStream.Trim(wire.HeaderSize)
	h := wire.DecodeHeader(raw)
	if !h.Equal(wire.HelloHeader()) {
		c.fail(ErrHelloMessageReplyInvalid)
		return ErrHelloMessageReplyInvalid
	}
	c.setStatus(StatusReady)
	notify(c.cfg.Observer, Observer.HandshakeCompleted)
	return nil
}

// drainOutStream sends as much of outStream as the socket accepts right
// now. It reports sent=true once outStream has been fully flushed.
func (c *Connection) drainOutStream(now time.Time) (sent bool, err error) {
	if c.outStream.Size() == 0 {
		return true, nil
	}
	chunk, _ := c.outStream.Get(c.outStream.Size())
	n, err := c.sock.Send(chunk)
	if err != nil {
		return false, err
	}
	if n > 0 {
		c.health.NotifySent(now)
		_ = c.outStream.Trim(n)
	}
	return c.outStream.Size() == 0, nil
}

// fillInStream reads everything currently available on the socket into
// inStream, stopping when the socket stops being readable or inStream is
// full. A full inStream with more bytes waiting on the wire is back-
// pressure: the next tick picks up where this one left off.
func (c *Connection) fillInStream(now time.Time) error {
	for {
		if c.inStream.Free() == 0 {
			return nil
		}
		ready, err := c.sock.ReadyForRead(0)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUpdateReadyFail, err)
		}
		if !ready {
			return nil
		}
		scratch := make([]byte, c.inStream.Free())
		n, err := c.sock.Receive(scratch)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMessageReceiveFailed, err)
		}
		if n == 0 {
			return nil
		}
		c.health.NotifyReceived(now)
		if err := c.inStream.Append(scratch[:n]); err != nil {
			return fmt.Errorf("%w: %v", ErrReadTooBigForStream, err)
		}
		if n < len(scratch) {
			return nil
		}
	}
}

// pumpReceive is fillInStream under the name the steady-state pump uses;
// kept distinct from the handshake's use of fillInStream so each call site
// documents its own intent.
func (c *Connection) pumpReceive(now time.Time) error {
	return c.fillInStream(now)
}

// parseIncoming consumes complete frames from inStream, pushing each
// decoded Message onto incoming — except health messages, which are
// consumed here and never surfaced to callers. Parsing stops, leaving
// bytes buffered for the next tick, when a frame is incomplete or incoming
// is full.
func (c *Connection) parseIncoming() error {
	for {
		if c.inStream.Size() < wire.HeaderSize {
			return nil
		}
		headerBytes, _ := c.inStream.Peek(wire.HeaderSize)
		h, err := codec.DataToHeader(headerBytes)
		if err != nil {
			return err
		}
		if int(h.Length) > wire.PayloadMaxSize {
			return fmt.Errorf("%w: declared %d", codec.ErrExpectedDataLengthTooBig, h.Length)
		}
		total := wire.HeaderSize + int(h.Length)
		if c.inStream.Size() < total {
			return nil
		}
		if c.incoming.Full() {
			return nil
		}
		frame, _ := c.inStream.Get(total)
		_ = c.inStream.Trim(total)
		msg, err := codec.DataToMessage(frame)
		if err != nil {
			return err
		}
		if msg.Code == wire.OpcodeHealth {
			continue
		}
		_ = c.incoming.Push(msg)
		notify(c.cfg.Observer, Observer.MessageReceived)
	}
}

// pumpSend flushes outStream to the socket and, once empty, refills it
// from outgoing until either outgoing drains or outStream reaches its
// capacity. A partial socket write on a readable/writable socket means
// back-pressure: this stops and retries on the next tick rather than
// looping.
func (c *Connection) pumpSend(now time.Time) error {
	for {
		if c.outStream.Size() > 0 {
			chunk, _ := c.outStream.Get(c.outStream.Size())
			n, err := c.sock.Send(chunk)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrSendFail, err)
			}
			if n > 0 {
				c.health.NotifySent(now)
				_ = c.outStream.Trim(n)
				notify(c.cfg.Observer, Observer.MessageSent)
			}
			if n < len(chunk) {
				return nil
			}
			continue
		}
		if c.outgoing.Len() == 0 {
			return nil
		}
		for c.outStream.Free() > 0 && c.outgoing.Len() > 0 {
			msg, err := c.outgoing.Front()
			if err != nil {
				break
			}
			data, err := codec.MessageToData(msg)
			if err != nil {
				return err
			}
			if len(data) > c.outStream.Free() && c.outStream.Size() > 0 {
				break
			}
			_, _ = c.outgoing.Pop()
			if err := c.outStream.Append(data); err != nil {
				return fmt.Errorf("%w: %v", ErrOutMessageTooBigForStream, err)
			}
		}
	}
}
