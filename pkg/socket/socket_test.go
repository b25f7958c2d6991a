package socket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func dialedPair(t *testing.T) (server, client *Socket, cleanup func()) {
	t.Helper()

	ln := NewListener()
	require.NoError(t, ln.Init())
	require.NoError(t, ln.Bind(0))
	require.NoError(t, ln.Listen(8))

	accepted := make(chan *Socket, 1)
	go func() {
		s, _, _, err := ln.Accept()
		require.NoError(t, err)
		accepted <- s
	}()

	c := New()
	require.NoError(t, c.Init())
	require.NoError(t, c.Connect("127.0.0.1", ln.Port()))

	s := <-accepted
	return s, c, func() {
		_ = s.Close()
		_ = c.Close()
		_ = ln.Close()
	}
}

func TestSendReceiveRoundTrip(t *testing.T) {
	server, client, cleanup := dialedPair(t)
	defer cleanup()

	n, err := client.Send([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, 5, n)

	require.Eventually(t, func() bool {
		ready, err := server.ReadyForRead(10 * time.Millisecond)
		require.NoError(t, err)
		return ready
	}, time.Second, 10*time.Millisecond)

	buf := make([]byte, 5)
	n, err = server.Receive(buf)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "hello", string(buf))
}

func TestReceiveWouldBlock(t *testing.T) {
	server, _, cleanup := dialedPair(t)
	defer cleanup()

	buf := make([]byte, 5)
	n, err := server.Receive(buf)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestReceiveAfterPeerClose(t *testing.T) {
	server, client, cleanup := dialedPair(t)
	defer cleanup()

	require.NoError(t, client.Close())

	require.Eventually(t, func() bool {
		buf := make([]byte, 5)
		_, err := server.Receive(buf)
		return err != nil
	}, time.Second, 10*time.Millisecond)
}

func TestSubsystemRefcounting(t *testing.T) {
	before := ActiveCount()
	s := New()
	require.NoError(t, s.Init())
	require.Equal(t, before+1, ActiveCount())
	require.NoError(t, s.Close())
	require.Equal(t, before, ActiveCount())
}

func TestUninitializedOperationsFail(t *testing.T) {
	s := New()
	_, err := s.Send([]byte("x"))
	require.ErrorIs(t, err, ErrUninitialized)
	_, err = s.Receive(make([]byte, 1))
	require.ErrorIs(t, err, ErrUninitialized)
}
