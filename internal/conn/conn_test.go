package conn

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/boardlink/internal/constants"
)

func pipeConn(t *testing.T) (client, server net.Conn) {
	t.Helper()
	client, server = net.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return client, server
}

func TestNewAssignsConnectingState(t *testing.T) {
	_, server := pipeConn(t)
	c, err := New(server, 1, constants.EraModern)
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, StateConnecting, c.State())
	assert.False(t, c.AcceptsGameMessages())
}

func TestAcceptsGameMessagesOnlyInLobbyOrMatch(t *testing.T) {
	_, server := pipeConn(t)
	c, err := New(server, 1, constants.EraModern)
	require.NoError(t, err)
	defer c.Close()

	c.SetState(StateHandshaking)
	assert.False(t, c.AcceptsGameMessages())
	c.SetState(StateLobby)
	assert.True(t, c.AcceptsGameMessages())
	c.SetState(StateInMatch)
	assert.True(t, c.AcceptsGameMessages())
}

func TestSendDeliversPayloadThroughPipe(t *testing.T) {
	client, server := pipeConn(t)
	c, err := New(server, 1, constants.EraModern)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Send([]byte("hello")))

	buf := make([]byte, 5)
	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := client.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))
}

func TestCloseAsyncIsIdempotent(t *testing.T) {
	_, server := pipeConn(t)
	c, err := New(server, 1, constants.EraModern)
	require.NoError(t, err)
	c.CloseAsync()
	c.CloseAsync()
	assert.Equal(t, StateClosed, c.State())
}

func TestSendAfterCloseFails(t *testing.T) {
	_, server := pipeConn(t)
	c, err := New(server, 1, constants.EraModern)
	require.NoError(t, err)
	c.CloseAsync()
	time.Sleep(10 * time.Millisecond)
	err = c.Send([]byte("x"))
	assert.Error(t, err)
}

func TestTouchUpdatesIdleFor(t *testing.T) {
	_, server := pipeConn(t)
	c, err := New(server, 1, constants.EraModern)
	require.NoError(t, err)
	defer c.Close()

	time.Sleep(10 * time.Millisecond)
	before := c.IdleFor()
	c.Touch()
	after := c.IdleFor()
	assert.Less(t, after, before)
}

func TestPUIDAndSessionKeyRoundTrip(t *testing.T) {
	_, server := pipeConn(t)
	c, err := New(server, 1, constants.EraLegacy)
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, constants.DefaultSessionKey, c.SessionKey())
	c.SetPUID("user-1")
	c.SetSessionKey(0x1234)
	assert.Equal(t, "user-1", c.PUID())
	assert.Equal(t, uint32(0x1234), c.SessionKey())
}
