// Package client implements the Client façade: the orchestration agent's
// side of an Arcus connection. The Client owns the retry loop that dials
// the game server, re-arming the handshake responder role after every
// disconnect.
package client

import (
	"fmt"
	"sync"
	"time"

	"github.com/arcus-sdk/go-arcus/pkg/connection"
	"github.com/arcus-sdk/go-arcus/pkg/message"
	"github.com/arcus-sdk/go-arcus/pkg/socket"
	"github.com/arcus-sdk/go-arcus/pkg/wire"
	"go.uber.org/zap"
)

// DefaultReconnectInterval matches the reference implementation's fixed
// connection_retry_delay_seconds.
const DefaultReconnectInterval = 5 * time.Second

// Config configures a Client. The zero value is invalid; ServerAddress and
// ServerPort are required.
type Config struct {
	ServerAddress     string
	ServerPort        int
	ReconnectInterval time.Duration
	Connection        connection.Config
	Observer          connection.Observer
	Logger            *zap.Logger
}

func (c *Config) setDefaults() {
	if c.ReconnectInterval <= 0 {
		c.ReconnectInterval = DefaultReconnectInterval
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	c.Connection.Observer = c.Observer
}

// Client is the agent-side façade: it dials the game server, acts as the
// handshake responder, and exposes typed Send*/callback methods over the
// Connection core.
type Client struct {
	mu sync.Mutex

	cfg    Config
	logger *zap.Logger

	initialized bool
	connected   bool
	lastAttempt time.Time

	sock *socket.Socket
	conn *connection.Connection

	callbacks Callbacks
}

// New returns an unattached Client. Call Init before Update.
func New(cfg Config) *Client {
	cfg.setDefaults()
	return &Client{cfg: cfg, logger: cfg.Logger}
}

// SetCallbacks overrides the subset of Callbacks fields that are non-nil
// in cb, leaving the rest (including prior SetCallbacks calls) untouched.
func (c *Client) SetCallbacks(cb Callbacks) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callbacks = c.callbacks.merge(cb)
}

// Init prepares the Client to begin connecting on the next Update. It
// zeroes lastAttempt so the first Update always attempts a connection
// immediately.
func (c *Client) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initialized {
		return ErrAlreadyInitialized
	}
	c.conn = connection.New(c.cfg.Connection)
	c.callbacks = defaultCallbacks().merge(c.callbacks)
	c.initialized = true
	c.lastAttempt = time.Time{}
	return nil
}

// Shutdown tears down any active connection and returns the Client to an
// uninitialized state. Shutdown is idempotent.
func (c *Client) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardownLocked()
	c.conn = nil
	c.initialized = false
}

func (c *Client) teardownLocked() {
	if c.conn != nil {
		_ = c.conn.Shutdown()
	}
	if c.sock != nil {
		_ = c.sock.Close()
		c.sock = nil
	}
	c.connected = false
}

// Status reports the façade's coarse lifecycle state.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return StatusUninitialized
	}
	if !c.connected {
		return StatusConnecting
	}
	return fromConnectionStatus(c.conn.Status())
}

// Update runs one tick: retrying the connection if disconnected, driving
// the Connection core otherwise, and dispatching any drained incoming
// Messages to their registered callback. Callback invocation happens after
// the internal lock is released, so a callback is free to call a Send*
// method on this same Client.
func (c *Client) Update(now time.Time) error {
	c.mu.Lock()

	if !c.initialized {
		c.mu.Unlock()
		return ErrNotInitialized
	}

	if !c.connected {
		if now.Sub(c.lastAttempt) < c.cfg.ReconnectInterval {
			c.mu.Unlock()
			return nil
		}
		c.lastAttempt = now
		if err := c.connectLocked(now); err != nil {
			c.mu.Unlock()
			return err
		}
	}

	if err := c.conn.Update(now); err != nil {
		c.logger.Warn("client: connection error, will reconnect", zap.Error(err))
		c.teardownLocked()
		c.mu.Unlock()
		return err
	}

	var drained []*message.Message
	for c.conn.IncomingCount() > 0 {
		var got *message.Message
		err := c.conn.RemoveIncoming(func(m *message.Message) error {
			got = m
			return nil
		})
		if err != nil {
			c.logger.Warn("client: draining incoming failed, will reconnect", zap.Error(err))
			c.teardownLocked()
			c.mu.Unlock()
			return err
		}
		drained = append(drained, got)
	}
	callbacks := c.callbacks
	c.mu.Unlock()

	for _, m := range drained {
		if err := dispatch(callbacks, m); err != nil {
			c.logger.Warn("client: dispatch failed", zap.Error(err))
		}
	}
	return nil
}

func (c *Client) connectLocked(now time.Time) error {
	sock := socket.New()
	if err := sock.Init(); err != nil {
		return err
	}
	if err := sock.Connect(c.cfg.ServerAddress, c.cfg.ServerPort); err != nil {
		_ = sock.Close()
		return err
	}
	if err := c.conn.Init(sock, now); err != nil {
		_ = sock.Close()
		return err
	}
	c.sock = sock
	c.connected = true
	c.logger.Info("client: connected", zap.String("address", c.cfg.ServerAddress), zap.Int("port", c.cfg.ServerPort))
	return nil
}

func (c *Client) sendOutgoing(code wire.Opcode, payload *message.Payload) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return ErrNotInitialized
	}
	if !c.connected || c.conn.Status() != connection.StatusReady {
		return ErrConnectionNotReady
	}
	return c.conn.AddOutgoing(func() (*message.Message, error) {
		return message.New(code, payload), nil
	})
}

// SendSoftStopRequest asks the game server to begin a graceful shutdown
// within timeoutSeconds.
func (c *Client) SendSoftStopRequest(timeoutSeconds int) error {
	if timeoutSeconds < 0 {
		return fmt.Errorf("%w: timeout must be >= 0", ErrValidation)
	}
	p := message.NewPayload()
	p.SetInt("timeout", int64(timeoutSeconds))
	return c.sendOutgoing(wire.OpcodeSoftStop, p)
}

// SendAllocatedRequest notifies the game server that an orchestrator has
// allocated it for the given players.
func (c *Client) SendAllocatedRequest(players []interface{}) error {
	if players == nil {
		return fmt.Errorf("%w: players must not be nil", ErrValidation)
	}
	p := message.NewPayload()
	p.SetArray("players", players)
	return c.sendOutgoing(wire.OpcodeAllocated, p)
}

// SendMetaDataRequest pushes arbitrary orchestrator metadata to the game
// server.
func (c *Client) SendMetaDataRequest(data *message.Payload) error {
	if data == nil {
		return fmt.Errorf("%w: data must not be nil", ErrValidation)
	}
	return c.sendOutgoing(wire.OpcodeMetadata, data)
}

// SendLiveStateRequest asks the game server to report its current live
// state.
func (c *Client) SendLiveStateRequest() error {
	return c.sendOutgoing(wire.OpcodeLiveStateRequest, message.NewPayload())
}

// SendHostInformationResponse answers a prior HostInformationRequest
// callback with the orchestrator-supplied host information payload.
func (c *Client) SendHostInformationResponse(data *message.Payload) error {
	if data == nil {
		return fmt.Errorf("%w: data must not be nil", ErrValidation)
	}
	return c.sendOutgoing(wire.OpcodeHostInformationResponse, data)
}

// SendApplicationInstanceInformationResponse answers a prior
// ApplicationInstanceInformationRequest callback.
func (c *Client) SendApplicationInstanceInformationResponse(data *message.Payload) error {
	if data == nil {
		return fmt.Errorf("%w: data must not be nil", ErrValidation)
	}
	return c.sendOutgoing(wire.OpcodeApplicationInstanceInformationResponse, data)
}

// SendApplicationInstanceGetStatusResponse answers a prior
// ApplicationInstanceGetStatusRequest callback with the instance's current
// status.
func (c *Client) SendApplicationInstanceGetStatusResponse(status int) error {
	p := message.NewPayload()
	p.SetInt("status", int64(status))
	return c.sendOutgoing(wire.OpcodeApplicationInstanceGetStatusResponse, p)
}

// SendApplicationInstanceSetStatusResponse answers a prior
// ApplicationInstanceSetStatusRequest callback, reporting whether the
// status change succeeded.
func (c *Client) SendApplicationInstanceSetStatusResponse(success bool) error {
	p := message.NewPayload()
	p.SetBool("success", success)
	return c.sendOutgoing(wire.OpcodeApplicationInstanceSetStatusResponse, p)
}
