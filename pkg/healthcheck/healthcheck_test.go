package healthcheck

import (
	"testing"
	"time"

	"github.com/arcus-sdk/go-arcus/pkg/message"
	"github.com/arcus-sdk/go-arcus/pkg/ring"
	"github.com/arcus-sdk/go-arcus/pkg/wire"
	"github.com/stretchr/testify/require"
)

func TestTickEmitsHeartbeatAfterSendInterval(t *testing.T) {
	now := time.Now()
	c := New(5*time.Second, time.Minute, now)
	out := ring.New[*message.Message](4)

	require.NoError(t, c.Tick(now.Add(time.Second), out))
	require.Equal(t, 0, out.Len())

	require.NoError(t, c.Tick(now.Add(6*time.Second), out))
	require.Equal(t, 1, out.Len())

	msg, err := out.Pop()
	require.NoError(t, err)
	require.Equal(t, wire.OpcodeHealth, msg.Code)
}

func TestHeartbeatDroppedSilentlyWhenRingFull(t *testing.T) {
	now := time.Now()
	c := New(time.Second, time.Minute, now)
	out := ring.New[*message.Message](1)
	require.NoError(t, out.Push(message.New(wire.OpcodeMetadata, nil)))

	err := c.Tick(now.Add(2*time.Second), out)
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
}

func TestNotifySentDelaysNextHeartbeat(t *testing.T) {
	now := time.Now()
	c := New(5*time.Second, time.Minute, now)
	out := ring.New[*message.Message](4)

	c.NotifySent(now.Add(4 * time.Second))
	require.NoError(t, c.Tick(now.Add(6*time.Second), out))
	require.Equal(t, 0, out.Len())
}

func TestTimeoutAfterReceiveInterval(t *testing.T) {
	now := time.Now()
	c := New(time.Minute, 5*time.Second, now)
	out := ring.New[*message.Message](4)

	err := c.Tick(now.Add(time.Second), out)
	require.NoError(t, err)

	err = c.Tick(now.Add(6*time.Second), out)
	require.ErrorIs(t, err, ErrTimeout)
}

func TestNotifyReceivedResetsTimeout(t *testing.T) {
	now := time.Now()
	c := New(time.Minute, 5*time.Second, now)
	out := ring.New[*message.Message](4)

	c.NotifyReceived(now.Add(4 * time.Second))
	err := c.Tick(now.Add(6*time.Second), out)
	require.NoError(t, err)
}
