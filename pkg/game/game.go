// Package game is a fake game server harness built on pkg/server. Its
// purpose, like the reference SDK's integration test game, is to
// facilitate manual and automated testing of the Arcus SDK and to
// illustrate an integration — its public surface is not meant to model a
// real game.
package game

import (
	"sync"
	"time"

	"github.com/arcus-sdk/go-arcus/pkg/message"
	"github.com/arcus-sdk/go-arcus/pkg/server"
	"go.uber.org/zap"
)

// State is the game's live state, reported to the connected agent via
// live_state_response whenever it changes.
type State struct {
	Players    int
	MaxPlayers int
	Name       string
	Map        string
	Mode       string
	Version    string
}

func (s State) equal(o State) bool { return s == o }

// Config configures a Game.
type Config struct {
	Server server.Config
	Logger *zap.Logger
}

// Game owns a Server façade and answers its callbacks, tracking receive
// counts the way the reference fake game exposes soft_stop_receive_count,
// allocated_receive_count, etc. for integration tests.
type Game struct {
	mu sync.Mutex

	srv    *server.Server
	logger *zap.Logger

	state     State
	lastSent  State
	sentOnce  bool
	quiet     bool

	softStopCount                       int
	allocatedCount                      int
	metadataCount                       int
	hostInformationRequestCount         int
	applicationInstanceInformationCount int

	softStopTimeout  int
	softStopReceived bool
}

// New returns an unattached Game wrapping a new Server built from cfg.
func New(cfg Config) *Game {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.Server.Logger = logger
	g := &Game{
		srv:    server.New(cfg.Server),
		logger: logger,
	}
	g.srv.SetCallbacks(server.Callbacks{
		SoftStop:                 g.onSoftStop,
		Allocated:                g.onAllocated,
		MetaData:                 g.onMetaData,
		LiveStateRequest:         g.onLiveStateRequest,
		HostInformationResponse:  g.onHostInformationResponse,
		ApplicationInstanceInformationResponse: g.onApplicationInstanceInformationResponse,
	})
	return g
}

// Init starts listening for the orchestration agent.
func (g *Game) Init() error {
	return g.srv.Init()
}

// Shutdown tears down the underlying Server.
func (g *Game) Shutdown() {
	g.srv.Shutdown()
}

// Server exposes the underlying façade for tests and operator tooling that
// needs direct access (e.g. the console's status and set_status commands).
func (g *Game) Server() *server.Server { return g.srv }

// SetQuiet suppresses warning logs for expected test failures, mirroring
// the reference game's set_quiet.
func (g *Game) SetQuiet(quiet bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.quiet = quiet
}

// SetState records the game's current live state. It is reported to the
// agent on the next Update only if it differs from the last reported
// state, avoiding redundant live_state_response traffic.
func (g *Game) SetState(s State) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = s
}

// SetPlayerCount updates only the player count, leaving the rest of the
// state untouched.
func (g *Game) SetPlayerCount(count int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state.Players = count
}

// PlayerJoined reports a joining player to the agent and bumps the local
// player count.
func (g *Game) PlayerJoined(playerID int) error {
	g.mu.Lock()
	g.state.Players++
	g.mu.Unlock()
	return g.srv.SendPlayerJoinedEvent(playerID)
}

// PlayerLeft reports a leaving player to the agent and drops the local
// player count.
func (g *Game) PlayerLeft(playerID int) error {
	g.mu.Lock()
	if g.state.Players > 0 {
		g.state.Players--
	}
	g.mu.Unlock()
	return g.srv.SendPlayerLeftEvent(playerID)
}

// Update runs one tick of the underlying Server and, if the game's state
// has changed since the last report, sends a fresh live_state_response.
func (g *Game) Update(now time.Time) error {
	if err := g.srv.Update(now); err != nil {
		return err
	}

	g.mu.Lock()
	state := g.state
	needsSend := !g.sentOnce || !state.equal(g.lastSent)
	g.mu.Unlock()

	if !needsSend {
		return nil
	}
	if err := g.srv.SendLiveStateResponse(state.Players, state.MaxPlayers, state.Name, state.Map, state.Mode, state.Version, nil); err != nil {
		if !g.isQuiet() {
			g.logger.Warn("game: send live state failed", zap.Error(err))
		}
		return nil
	}
	g.mu.Lock()
	g.lastSent = state
	g.sentOnce = true
	g.mu.Unlock()
	return nil
}

func (g *Game) isQuiet() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.quiet
}

func (g *Game) onSoftStop(timeout int) {
	g.mu.Lock()
	g.softStopCount++
	g.softStopTimeout = timeout
	g.softStopReceived = true
	g.mu.Unlock()
	g.logger.Info("game: soft_stop received", zap.Int("timeout", timeout))
}

func (g *Game) onAllocated(players []interface{}) {
	g.mu.Lock()
	g.allocatedCount++
	g.mu.Unlock()
	g.logger.Info("game: allocated received", zap.Int("players", len(players)))
}

func (g *Game) onMetaData(data *message.Payload) {
	g.mu.Lock()
	g.metadataCount++
	g.mu.Unlock()
	g.logger.Info("game: metadata received", zap.Strings("keys", data.Keys()))
}

func (g *Game) onLiveStateRequest() {
	g.mu.Lock()
	g.sentOnce = false
	g.mu.Unlock()
}

func (g *Game) onHostInformationResponse(*message.Payload) {
	g.mu.Lock()
	g.hostInformationRequestCount++
	g.mu.Unlock()
}

func (g *Game) onApplicationInstanceInformationResponse(*message.Payload) {
	g.mu.Lock()
	g.applicationInstanceInformationCount++
	g.mu.Unlock()
}

// HostInformationResponseCount returns how many host_information_response
// messages have been received, for integration tests.
func (g *Game) HostInformationResponseCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.hostInformationRequestCount
}

// ApplicationInstanceInformationResponseCount returns how many
// application_instance_information_response messages have been received,
// for integration tests.
func (g *Game) ApplicationInstanceInformationResponseCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.applicationInstanceInformationCount
}

// SoftStopReceiveCount returns how many soft_stop messages have been
// received, for integration tests.
func (g *Game) SoftStopReceiveCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.softStopCount
}

// AllocatedReceiveCount returns how many allocated messages have been
// received, for integration tests.
func (g *Game) AllocatedReceiveCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.allocatedCount
}

// MetadataReceiveCount returns how many metadata messages have been
// received, for integration tests.
func (g *Game) MetadataReceiveCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.metadataCount
}

// SoftStopRequested reports whether a soft_stop message has been received
// and, if so, the timeout it carried.
func (g *Game) SoftStopRequested() (bool, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.softStopReceived, g.softStopTimeout
}
