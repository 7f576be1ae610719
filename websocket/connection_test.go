//go:build unit
// +build unit

// Unit tests for connection.go and hub.go. These tests use a fakeConn to
// simulate a WSConn so that room membership, delivery and pings can be
// checked without doing any real network I/O.

package websocket

import (
	"encoding/json"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-hackhub/models"
)

// fakeConn implements the WSConn interface and records pings.
type fakeConn struct {
	mu           sync.Mutex
	pingCaptured bool
}

func (fc *fakeConn) WriteMessage(messageType int, data []byte) error {
	if messageType == websocket.PingMessage {
		fc.mu.Lock()
		fc.pingCaptured = true
		fc.mu.Unlock()
	}
	return nil
}

func (fc *fakeConn) pinged() bool {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.pingCaptured
}

func (fc *fakeConn) SetWriteDeadline(t time.Time) error { return nil }

func (fc *fakeConn) ReadMessage() (int, []byte, error) {
	return websocket.TextMessage, []byte(`{"action": "dummy"}`), nil
}

func (fc *fakeConn) Close() error { return nil }

func (fc *fakeConn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 12345}
}

func (fc *fakeConn) SetReadLimit(limit int64) {}

func (fc *fakeConn) SetReadDeadline(t time.Time) error { return nil }

func (fc *fakeConn) SetPongHandler(h func(string) error) {}

// newTestConnection registers a connection for member on a fresh hub.
func newTestConnection(h *Hub, member Member) *Connection {
	c := newConnection(h, &fakeConn{}, member)
	h.register(c)
	return c
}

func readEnvelope(t *testing.T, c *Connection) Envelope {
	t.Helper()
	select {
	case msg := <-c.send:
		var env Envelope
		require.NoError(t, json.Unmarshal(msg, &env))
		return env
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Expected a message, but none was received")
	}
	return Envelope{}
}

func TestRegisterAndUnregisterConnection(t *testing.T) {
	h := NewHub(nil, nil)
	c := newTestConnection(h, Member{Username: "ada"})
	assert.Equal(t, 1, h.ConnectionCount())

	assert.True(t, h.join(c, "ada"))
	h.unregister(c)

	assert.Equal(t, 0, h.ConnectionCount())
	assert.Equal(t, 0, h.RoomSize("ada"))

	_, open := <-c.send
	assert.False(t, open, "send channel is closed on unregister")

	// a second unregister is harmless
	h.unregister(c)
}

func TestJoin_Authorization(t *testing.T) {
	h := NewHub(nil, nil)
	client := newTestConnection(h, Member{Username: "ada"})
	org := newTestConnection(h, Member{Username: "acme", Organization: true})

	assert.True(t, h.join(client, "ada"), "own room")
	assert.False(t, h.join(client, "grace"), "someone else's room")
	assert.False(t, h.join(client, OrganizationRoom), "clients are not organizations")
	assert.True(t, h.join(org, OrganizationRoom))
	assert.False(t, h.join(org, ""), "empty room")
}

func TestHandleIncoming_JoinAndLeave(t *testing.T) {
	h := NewHub(nil, nil)
	c := newTestConnection(h, Member{Username: "ada"})

	c.handleIncoming(ClientMessage{Action: "join", Room: "ada"})
	env := readEnvelope(t, c)
	assert.Equal(t, EventJoined, env.Event)
	assert.Equal(t, 1, h.RoomSize("ada"))

	c.handleIncoming(ClientMessage{Action: "join", Room: OrganizationRoom})
	env = readEnvelope(t, c)
	assert.Equal(t, EventError, env.Event)
	assert.Equal(t, 0, h.RoomSize(OrganizationRoom))

	c.handleIncoming(ClientMessage{Action: "leave", Room: "ada"})
	env = readEnvelope(t, c)
	assert.Equal(t, EventLeft, env.Event)
	assert.Equal(t, 0, h.RoomSize("ada"))
}

func TestPublish_OnlyRoomMembersReceive(t *testing.T) {
	h := NewHub(nil, nil)
	ada := newTestConnection(h, Member{Username: "ada"})
	grace := newTestConnection(h, Member{Username: "grace"})
	require.True(t, h.join(ada, "ada"))
	require.True(t, h.join(grace, "grace"))

	h.Publish("ada", models.EventNewInvite, map[string]string{"inviteId": "i1"})

	env := readEnvelope(t, ada)
	assert.Equal(t, models.EventNewInvite, env.Event)
	assert.Equal(t, "ada", env.Room)
	assert.Len(t, grace.send, 0)
}

func TestPublish_DropsWhenBufferFull(t *testing.T) {
	h := NewHub(nil, nil)
	c := &Connection{hub: h, conn: &fakeConn{}, send: make(chan []byte, 1), member: Member{Username: "ada"}, rooms: map[string]bool{}}
	h.register(c)
	require.True(t, h.join(c, "ada"))

	h.Publish("ada", models.EventNewInvite, nil)
	h.Publish("ada", models.EventNewInvite, nil) // dropped, must not block

	assert.Len(t, c.send, 1)
}

func TestWritePump_Ping(t *testing.T) {
	original := pingPeriod
	pingPeriod = 20 * time.Millisecond
	defer func() { pingPeriod = original }()

	h := NewHub(nil, nil)
	fc := &fakeConn{}
	c := newConnection(h, fc, Member{Username: "ada"})

	done := make(chan struct{})
	go func() {
		c.writePump()
		close(done)
	}()

	time.Sleep(pingPeriod * 3)
	close(c.send)
	<-done

	assert.True(t, fc.pinged(), "Expected writePump to send at least one ping")
}
