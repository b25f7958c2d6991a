package client

import (
	"testing"
	"time"

	"github.com/arcus-sdk/go-arcus/pkg/codec"
	"github.com/arcus-sdk/go-arcus/pkg/message"
	"github.com/arcus-sdk/go-arcus/pkg/socket"
	"github.com/arcus-sdk/go-arcus/pkg/wire"
	"github.com/stretchr/testify/require"
)

// rawServer accepts one connection and plays the raw initiator role the
// Server façade performs, without depending on pkg/server.
type rawServer struct {
	ln   *socket.Listener
	peer *socket.Socket
}

func newRawServer(t *testing.T) *rawServer {
	t.Helper()
	ln := socket.NewListener()
	require.NoError(t, ln.Init())
	require.NoError(t, ln.Bind(0))
	require.NoError(t, ln.Listen(8))
	return &rawServer{ln: ln}
}

func (r *rawServer) port() int { return r.ln.Port() }

// acceptAndSendHello accepts the pending connection and sends the raw
// hello, playing the Server façade's initiator role. It does not wait for
// the reply — the caller drives the Client's Update loop afterwards and
// checks for the reply separately, since the reply is only sent once a
// Client Update call has processed the hello.
func (r *rawServer) acceptAndSendHello(t *testing.T) {
	t.Helper()
	s, _, _, err := r.ln.Accept()
	require.NoError(t, err)
	r.peer = s

	_, err = r.peer.Send(wire.Hello[:])
	require.NoError(t, err)
}

func (r *rawServer) awaitReply(t *testing.T) {
	t.Helper()
	require.Eventually(t, func() bool {
		buf := make([]byte, wire.HeaderSize)
		n, err := r.peer.Receive(buf)
		require.NoError(t, err)
		return n == wire.HeaderSize
	}, time.Second, 5*time.Millisecond)
}

func (r *rawServer) sendMessage(t *testing.T, msg *message.Message) {
	t.Helper()
	data, err := codec.MessageToData(msg)
	require.NoError(t, err)
	_, err = r.peer.Send(data)
	require.NoError(t, err)
}

func (r *rawServer) close() {
	if r.peer != nil {
		_ = r.peer.Close()
	}
	_ = r.ln.Close()
}

func TestClientHandshakeAndDispatch(t *testing.T) {
	rs := newRawServer(t)
	defer rs.close()

	c := New(Config{ServerAddress: "127.0.0.1", ServerPort: rs.port()})
	require.NoError(t, c.Init())
	defer c.Shutdown()

	var joined int
	c.SetCallbacks(Callbacks{PlayerJoined: func(id int) { joined = id }})

	now := time.Now()
	require.NoError(t, c.Update(now))
	rs.acceptAndSendHello(t)

	require.Eventually(t, func() bool {
		now = now.Add(time.Millisecond)
		require.NoError(t, c.Update(now))
		return c.Status() == StatusReady
	}, time.Second, time.Millisecond)

	rs.awaitReply(t)

	p := message.NewPayload()
	p.SetInt("player_id", 7)
	rs.sendMessage(t, message.New(wire.OpcodePlayerJoinedEventResponse, p))

	require.Eventually(t, func() bool {
		now = now.Add(time.Millisecond)
		require.NoError(t, c.Update(now))
		return joined == 7
	}, time.Second, time.Millisecond)
}

func TestClientUpdateBeforeInitFails(t *testing.T) {
	c := New(Config{ServerAddress: "127.0.0.1", ServerPort: 1})
	require.ErrorIs(t, c.Update(time.Now()), ErrNotInitialized)
}

func TestClientSendBeforeReadyFails(t *testing.T) {
	c := New(Config{ServerAddress: "127.0.0.1", ServerPort: 1})
	require.NoError(t, c.Init())
	defer c.Shutdown()
	require.ErrorIs(t, c.SendLiveStateRequest(), ErrConnectionNotReady)
}

func TestSendSoftStopValidatesTimeout(t *testing.T) {
	c := New(Config{ServerAddress: "127.0.0.1", ServerPort: 1})
	require.NoError(t, c.Init())
	defer c.Shutdown()
	require.ErrorIs(t, c.SendSoftStopRequest(-1), ErrValidation)
}

func TestCallbacksMergePreservesUnsetFields(t *testing.T) {
	c := New(Config{ServerAddress: "127.0.0.1", ServerPort: 1})
	require.NoError(t, c.Init())
	defer c.Shutdown()

	var joinedCalls, leftCalls int
	c.SetCallbacks(Callbacks{PlayerJoined: func(int) { joinedCalls++ }})
	c.SetCallbacks(Callbacks{PlayerLeft: func(int) { leftCalls++ }})

	require.NoError(t, dispatch(c.callbacks, message.New(wire.OpcodePlayerJoinedEventResponse, func() *message.Payload {
		p := message.NewPayload()
		p.SetInt("player_id", 1)
		return p
	}())))
	require.NoError(t, dispatch(c.callbacks, message.New(wire.OpcodePlayerLeftResponse, func() *message.Payload {
		p := message.NewPayload()
		p.SetInt("player_id", 1)
		return p
	}())))
	require.Equal(t, 1, joinedCalls)
	require.Equal(t, 1, leftCalls)
}
