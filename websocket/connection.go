// file: websocket/connection.go
package websocket

import (
	"encoding/json"
	"net"
	"time"

	"github.com/gorilla/websocket"
	"go-hackhub/logger"
)

// WSConn is an interface for the WebSocket connection.
type WSConn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	ReadMessage() (int, []byte, error)
	Close() error
	RemoteAddr() net.Addr
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
}

// Connection represents a single WebSocket connection for one client.
// rooms is guarded by the hub mutex.
type Connection struct {
	hub    *Hub
	conn   WSConn
	send   chan []byte
	member Member
	rooms  map[string]bool
}

// Configuration values; variables so tests can shorten them.
var (
	writeWait            = 10 * time.Second
	pongWait             = 60 * time.Second
	pingPeriod           = (pongWait * 9) / 10
	maxMessageSize int64 = 2048
	sendBuffer           = 256
)

func newConnection(h *Hub, conn WSConn, member Member) *Connection {
	return &Connection{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		member: member,
		rooms:  make(map[string]bool),
	}
}

// ClientMessage is the JSON structure of messages from clients.
type ClientMessage struct {
	Action string `json:"action"`
	Room   string `json:"room"`
}

// readPump handles inbound messages from the client.
func (c *Connection) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			logger.Debug.Printf("[readPump] Read error from %v: %v", c.conn.RemoteAddr(), err)
			break
		}
		if messageType != websocket.TextMessage {
			logger.Debug.Printf("[readPump] Ignoring non-text messageType=%d", messageType)
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			logger.Warn.Printf("[readPump] Invalid JSON from %v: %v", c.conn.RemoteAddr(), err)
			continue
		}
		c.handleIncoming(msg)
	}
}

// writePump handles outbound messages to the client, including periodic pings.
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				logger.Debug.Printf("[writePump] Send channel closed for %v", c.conn.RemoteAddr())
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn.Printf("[writePump] Error writing to %v: %v", c.conn.RemoteAddr(), err)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Warn.Printf("[writePump] Ping error for %v: %v", c.conn.RemoteAddr(), err)
				return
			}
		}
	}
}

// handleIncoming processes an inbound client message.
func (c *Connection) handleIncoming(msg ClientMessage) {
	logger.Debug.Printf("[handleIncoming] Action=%s, Room=%s, User=%s", msg.Action, msg.Room, c.member.Username)
	switch msg.Action {
	case "join":
		if !c.hub.join(c, msg.Room) {
			logger.Warn.Printf("[handleIncoming] User %s may not join room %q", c.member.Username, msg.Room)
			c.reply(Envelope{Event: EventError, Room: msg.Room, Error: "not allowed to join room"})
			return
		}
		logger.Info.Printf("[handleIncoming] User %s joined room %s", c.member.Username, msg.Room)
		c.reply(Envelope{Event: EventJoined, Room: msg.Room})
	case "leave":
		c.hub.leave(c, msg.Room)
		c.reply(Envelope{Event: EventLeft, Room: msg.Room})
	default:
		logger.Debug.Printf("[handleIncoming] Unhandled action: %s", msg.Action)
	}
}

// reply queues a message for this connection only.
func (c *Connection) reply(env Envelope) {
	out, err := json.Marshal(env)
	if err != nil {
		logger.Error.Printf("[reply] Error marshalling reply: %v", err)
		return
	}
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if _, ok := c.hub.connections[c]; !ok {
		return
	}
	select {
	case c.send <- out:
	default:
		logger.Warn.Printf("[reply] Dropping reply for connection %v", c.conn.RemoteAddr())
	}
}
