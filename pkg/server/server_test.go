package server

import (
	"testing"
	"time"

	"github.com/arcus-sdk/go-arcus/pkg/codec"
	"github.com/arcus-sdk/go-arcus/pkg/message"
	"github.com/arcus-sdk/go-arcus/pkg/socket"
	"github.com/arcus-sdk/go-arcus/pkg/wire"
	"github.com/stretchr/testify/require"
)

// rawAgent dials the Server and plays the raw responder role the Client
// façade performs, without depending on pkg/client.
type rawAgent struct {
	sock *socket.Socket
}

func dialRawAgent(t *testing.T, port int) *rawAgent {
	t.Helper()
	var sock *socket.Socket
	require.Eventually(t, func() bool {
		s := socket.New()
		if err := s.Init(); err != nil {
			return false
		}
		if err := s.Connect("127.0.0.1", port); err != nil {
			_ = s.Close()
			return false
		}
		sock = s
		return true
	}, time.Second, 5*time.Millisecond)
	return &rawAgent{sock: sock}
}

func (a *rawAgent) awaitHelloAndReply(t *testing.T) {
	t.Helper()
	buf := make([]byte, wire.HelloSize)
	require.Eventually(t, func() bool {
		n, err := a.sock.Receive(buf)
		require.NoError(t, err)
		return n == wire.HelloSize
	}, time.Second, 5*time.Millisecond)
	require.True(t, codec.ValidateHello(buf))

	_, err := a.sock.Send(wire.HelloHeader().Encode())
	require.NoError(t, err)
}

func (a *rawAgent) sendMessage(t *testing.T, msg *message.Message) {
	t.Helper()
	data, err := codec.MessageToData(msg)
	require.NoError(t, err)
	_, err = a.sock.Send(data)
	require.NoError(t, err)
}

func (a *rawAgent) close() {
	_ = a.sock.Close()
}

func TestServerHandshakeAndDispatch(t *testing.T) {
	s := New(Config{ListenPort: 0})
	require.NoError(t, s.Init())
	defer s.Shutdown()

	var softStopTimeout int
	s.SetCallbacks(Callbacks{SoftStop: func(timeout int) { softStopTimeout = timeout }})

	now := time.Now()
	require.NoError(t, s.Update(now))

	agent := dialRawAgent(t, s.listener.Port())
	defer agent.close()

	require.Eventually(t, func() bool {
		now = now.Add(time.Millisecond)
		require.NoError(t, s.Update(now))
		return s.sock != nil
	}, time.Second, time.Millisecond)

	agent.awaitHelloAndReply(t)

	require.Eventually(t, func() bool {
		now = now.Add(time.Millisecond)
		require.NoError(t, s.Update(now))
		return s.Status() == StatusReady
	}, time.Second, time.Millisecond)

	p := message.NewPayload()
	p.SetInt("timeout", 30)
	agent.sendMessage(t, message.New(wire.OpcodeSoftStop, p))

	require.Eventually(t, func() bool {
		now = now.Add(time.Millisecond)
		require.NoError(t, s.Update(now))
		return softStopTimeout == 30
	}, time.Second, time.Millisecond)
}

func TestServerUpdateBeforeInitFails(t *testing.T) {
	s := New(Config{ListenPort: 0})
	require.ErrorIs(t, s.Update(time.Now()), ErrNotInitialized)
}

func TestServerSendBeforeReadyFails(t *testing.T) {
	s := New(Config{ListenPort: 0})
	require.NoError(t, s.Init())
	defer s.Shutdown()
	require.ErrorIs(t, s.SendHostInformationRequest(), ErrConnectionNotReady)
}

func TestCallbacksMergePreservesUnsetFields(t *testing.T) {
	s := New(Config{ListenPort: 0})
	require.NoError(t, s.Init())
	defer s.Shutdown()

	var softStopCalls, liveStateCalls int
	s.SetCallbacks(Callbacks{SoftStop: func(int) { softStopCalls++ }})
	s.SetCallbacks(Callbacks{LiveStateRequest: func() { liveStateCalls++ }})

	p := message.NewPayload()
	p.SetInt("timeout", 1)
	require.NoError(t, dispatch(s.callbacks, message.New(wire.OpcodeSoftStop, p)))
	require.NoError(t, dispatch(s.callbacks, message.New(wire.OpcodeLiveStateRequest, message.NewPayload())))
	require.Equal(t, 1, softStopCalls)
	require.Equal(t, 1, liveStateCalls)
}
