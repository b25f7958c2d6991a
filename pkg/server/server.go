// Package server implements the Server façade: the game server process's
// side of an Arcus connection. The Server listens for exactly one
// orchestration agent at a time (multi-peer multiplexing is an explicit
// non-goal) and acts as the handshake initiator once a peer is accepted.
package server

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

// ApplicationInstanceStatus mirrors the orchestration API's status enum;
// values are fixed to match the wire contract other One API tooling expects.
type ApplicationInstanceStatus int

const (
	ApplicationInstanceStatusStarting  ApplicationInstanceStatus = 3
	ApplicationInstanceStatusOnline    ApplicationInstanceStatus = 4
	ApplicationInstanceStatusAllocated ApplicationInstanceStatus = 5
)

// Config configures a Server. A ListenPort of 0 asks the OS for a free
// port (see Port); unset fields get defaults.
type Config struct {
	ListenPort int
	Backlog    int
	Connection connection.Config
	Observer   connection.Observer
	Logger     *zap.Logger
}

func (c *Config) setDefaults() {
	if c.Backlog <= 0 {
		c.Backlog = 128
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	c.Connection.Observer = c.Observer
}

// Server is the game-side façade: it listens for one orchestration agent,
// acts as the handshake initiator against it, and exposes typed Send*/
// callback methods over the Connection core.
type Server struct {
	mu sync.Mutex

	cfg    Config
	logger *zap.Logger

	initialized bool

	listener *socket.Listener
	accepted chan acceptResult

	sock *socket.Socket
	conn *connection.Connection

	callbacks Callbacks
}

// acceptResult is handed from the background accept loop to Update over a
// buffered channel, since net.Listener exposes no non-blocking accept
// primitive to poll the way the protocol's Socket contract otherwise
// requires (see socket.Listener.Accept).
type acceptResult struct {
	sock *socket.Socket
	ip   string
	port int
	err  error
}

// New returns an unattached Server. Call Init, which binds and listens,
// before Update.
func New(cfg Config) *Server {
	cfg.setDefaults()
	return &Server{cfg: cfg, logger: cfg.Logger}
}

// SetCallbacks overrides the subset of Callbacks fields that are non-nil
// in cb, leaving the rest (including prior SetCallbacks calls) untouched.
func (s *Server) SetCallbacks(cb Callbacks) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = s.callbacks.merge(cb)
}

// Init creates the listening socket and the per-peer Connection, binding
// and listening on cfg.ListenPort.
func (s *Server) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return ErrAlreadyInitialized
	}
	ln := socket.NewListener()
	if err := ln.Init(); err != nil {
		return err
	}
	if err := ln.Bind(s.cfg.ListenPort); err != nil {
		_ = ln.Close()
		return err
	}
	if err := ln.Listen(s.cfg.Backlog); err != nil {
		_ = ln.Close()
		return err
	}
	s.listener = ln
	s.accepted = make(chan acceptResult, 1)
	s.conn = connection.New(s.cfg.Connection)
	s.callbacks = defaultCallbacks().merge(s.callbacks)
	s.initialized = true
	s.logger.Info("server: listening", zap.Int("port", ln.Port()))
	go s.acceptLoop(ln, s.accepted)
	return nil
}

// acceptLoop runs on its own goroutine for the lifetime of the listener,
// blocking on Accept and forwarding each result to Update. It exits once
// the listener is closed and Accept starts failing.
func (s *Server) acceptLoop(ln *socket.Listener, results chan<- acceptResult) {
	for {
		sock, ip, port, err := ln.Accept()
		select {
		case results <- acceptResult{sock: sock, ip: ip, port: port, err: err}:
		default:
			// A peer is already queued or connected; this protocol is
			// single-peer by design, so drop the extra dialer.
			if sock != nil {
				_ = sock.Close()
			}
		}
		if err != nil {
			return
		}
	}
}

// Shutdown closes any active agent connection and the listener, returning
// the Server to an uninitialized state. Shutdown is idempotent.
func (s *Server) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeClientLocked()
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
	s.conn = nil
	s.initialized = false
}

func (s *Server) closeClientLocked() {
	if s.conn != nil && s.sock != nil {
		_ = s.conn.Shutdown()
	}
	if s.sock != nil {
		_ = s.sock.Close()
		s.sock = nil
	}
}

// Port returns the bound listen port, resolved to the OS-assigned value
// when Config.ListenPort was 0. Valid only after Init.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return 0
	}
	return s.listener.Port()
}

// Status reports the façade's coarse lifecycle state.
func (s *Server) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return StatusUninitialized
	}
	if s.sock == nil {
		return StatusWaitingForClient
	}
	return fromConnectionStatus(s.conn.Status())
}

// Update runs one tick: accepting a new agent if none is connected,
// driving the Connection core otherwise, and dispatching any drained
// incoming Messages to their registered callback. Callback invocation
// happens after the internal lock is released, so a callback is free to
// call a Send* method on this same Server.
func (s *Server) Update(now time.Time) error {
	s.mu.Lock()

	if !s.initialized {
		s.mu.Unlock()
		return ErrNotInitialized
	}

	if err := s.acceptLocked(now); err != nil {
		s.mu.Unlock()
		return err
	}

	if s.sock == nil {
		s.mu.Unlock()
		return nil
	}

	if err := s.conn.Update(now); err != nil {
		s.logger.Warn("server: connection error, awaiting new agent", zap.Error(err))
		s.closeClientLocked()
		s.mu.Unlock()
		return err
	}

	var drained []*message.Message
	for s.conn.IncomingCount() > 0 {
		var got *message.Message
		err := s.conn.RemoveIncoming(func(m *message.Message) error {
			got = m
			return nil
		})
		if err != nil {
			s.logger.Warn("server: draining incoming failed, awaiting new agent", zap.Error(err))
			s.closeClientLocked()
			s.mu.Unlock()
			return err
		}
		drained = append(drained, got)
	}
	callbacks := s.callbacks
	s.mu.Unlock()

	for _, m := range drained {
		if err := dispatch(callbacks, m); err != nil {
			s.logger.Warn("server: dispatch failed", zap.Error(err))
		}
	}
	return nil
}

// acceptLocked drains at most one pending accept result per tick without
// blocking, ignoring it if a peer is already connected: the protocol is
// single-peer by design, so a second dialer is simply dropped.
func (s *Server) acceptLocked(now time.Time) error {
	if s.sock != nil {
		return nil
	}
	select {
	case res := <-s.accepted:
		if res.err != nil {
			return fmt.Errorf("server: accept: %w", res.err)
		}
		if err := s.conn.Init(res.sock, now); err != nil {
			_ = res.sock.Close()
			return fmt.Errorf("server: connection init: %w", err)
		}
		if err := s.conn.InitiateHandshake(); err != nil {
			_ = res.sock.Close()
			_ = s.conn.Shutdown()
			return fmt.Errorf("server: initiate handshake: %w", err)
		}
		s.sock = res.sock
		s.logger.Info("server: agent connected", zap.String("ip", res.ip), zap.Int("port", res.port))
		return nil
	default:
		return nil
	}
}

func (s *Server) sendOutgoing(code wire.Opcode, payload *message.Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return ErrNotInitialized
	}
	if s.sock == nil || s.conn.Status() != connection.StatusReady {
		return ErrConnectionNotReady
	}
	return s.conn.AddOutgoing(func() (*message.Message, error) {
		return message.New(code, payload), nil
	})
}

// SendLiveStateResponse reports the game's current live state to the
// connected agent.
func (s *Server) SendLiveStateResponse(players, maxPlayers int, name, mapName, mode, version string, additional *message.Payload) error {
	p := message.NewPayload()
	p.SetInt("players", int64(players))
	p.SetInt("max_players", int64(maxPlayers))
	p.SetString("name", name)
	p.SetString("map", mapName)
	p.SetString("mode", mode)
	p.SetString("version", version)
	if additional != nil {
		p.SetObject("additional_data", additional)
	}
	return s.sendOutgoing(wire.OpcodeLiveStateResponse, p)
}

// SendPlayerJoinedEvent notifies the agent that playerID joined the game.
func (s *Server) SendPlayerJoinedEvent(playerID int) error {
	p := message.NewPayload()
	p.SetInt("player_id", int64(playerID))
	return s.sendOutgoing(wire.OpcodePlayerJoinedEventResponse, p)
}

// SendPlayerLeftEvent notifies the agent that playerID left the game.
func (s *Server) SendPlayerLeftEvent(playerID int) error {
	p := message.NewPayload()
	p.SetInt("player_id", int64(playerID))
	return s.sendOutgoing(wire.OpcodePlayerLeftResponse, p)
}

// SendHostInformationRequest asks the agent to report host information.
func (s *Server) SendHostInformationRequest() error {
	return s.sendOutgoing(wire.OpcodeHostInformationRequest, message.NewPayload())
}

// SendApplicationInstanceInformationRequest asks the agent to report
// application instance information.
func (s *Server) SendApplicationInstanceInformationRequest() error {
	return s.sendOutgoing(wire.OpcodeApplicationInstanceInformationRequest, message.NewPayload())
}

// SendApplicationInstanceGetStatusRequest asks the agent for the
// application instance's current status.
func (s *Server) SendApplicationInstanceGetStatusRequest() error {
	return s.sendOutgoing(wire.OpcodeApplicationInstanceGetStatusRequest, message.NewPayload())
}

// SendApplicationInstanceSetStatusRequest asks the agent to set the
// application instance's status.
func (s *Server) SendApplicationInstanceSetStatusRequest(status ApplicationInstanceStatus) error {
	p := message.NewPayload()
	p.SetInt("status", int64(status))
	return s.sendOutgoing(wire.OpcodeApplicationInstanceSetStatusRequest, p)
}
