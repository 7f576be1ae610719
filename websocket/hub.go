// Package websocket relays platform notifications to connected clients.
// Clients are grouped in rooms: one per username and one shared by every
// organization. Delivery is fire-and-forget.
// file: websocket/hub.go
package websocket

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go-hackhub/logger"
	"go-hackhub/metrics"
)

// OrganizationRoom is the room shared by all ORGANIZATION users.
const OrganizationRoom = "organization"

// Relay control events; domain events are declared in models.
const (
	EventJoined = "joined"
	EventLeft   = "left"
	EventError  = "error"
)

// Member identifies the authenticated user behind a connection.
type Member struct {
	Username     string
	Organization bool
}

// Envelope is the JSON shape of every outbound message.
type Envelope struct {
	Event string      `json:"event"`
	Room  string      `json:"room,omitempty"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Hub tracks connections and their rooms.
type Hub struct {
	mu          sync.RWMutex
	connections map[*Connection]bool
	rooms       map[string]map[*Connection]bool

	upgrader websocket.Upgrader
	metrics  metrics.Publisher
}

// NewHub creates a Hub accepting upgrades from allowedOrigins. An empty list
// accepts any origin.
func NewHub(allowedOrigins []string, m metrics.Publisher) *Hub {
	if m == nil {
		m = metrics.Noop{}
	}
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Hub{
		connections: make(map[*Connection]bool),
		rooms:       make(map[string]map[*Connection]bool),
		metrics:     m,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

// ServeWs upgrades the HTTP request to a WebSocket connection for member and
// starts the read and write pumps.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request, member Member) {
	logger.Info.Printf("[ServeWs] Upgrading to WS: remoteAddr=%v, user=%q", r.RemoteAddr, member.Username)
	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error
		logger.Error.Printf("[ServeWs] WebSocket upgrade error: %v", err)
		return
	}

	c := newConnection(h, wsConn, member)
	h.register(c)

	go c.readPump()
	go c.writePump()
}

// register adds c to the hub.
func (h *Hub) register(c *Connection) {
	h.mu.Lock()
	h.connections[c] = true
	count := len(h.connections)
	h.mu.Unlock()

	h.metrics.RelayConnections(count)
}

// unregister removes c from the hub and every room it joined, then closes its
// send channel so writePump exits.
func (h *Hub) unregister(c *Connection) {
	h.mu.Lock()
	if _, ok := h.connections[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.connections, c)
	for room := range c.rooms {
		h.removeFromRoomLocked(c, room)
	}
	close(c.send)
	count := len(h.connections)
	h.mu.Unlock()

	h.metrics.RelayConnections(count)
}

func (h *Hub) removeFromRoomLocked(c *Connection, room string) {
	members := h.rooms[room]
	delete(members, c)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
	delete(c.rooms, room)
}

// canJoin reports whether member may listen on room.
func canJoin(member Member, room string) bool {
	if room == OrganizationRoom {
		return member.Organization
	}
	return room != "" && room == member.Username
}

// join subscribes c to room if its member is allowed to.
func (h *Hub) join(c *Connection, room string) bool {
	if !canJoin(c.member, room) {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[c]; !ok {
		return false
	}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Connection]bool)
	}
	h.rooms[room][c] = true
	c.rooms[room] = true
	return true
}

// leave unsubscribes c from room.
func (h *Hub) leave(c *Connection, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.rooms[room] {
		h.removeFromRoomLocked(c, room)
	}
}

// Publish sends event to every connection in room. Connections whose send
// buffer is full miss the event.
func (h *Hub) Publish(room, event string, data interface{}) {
	msg, err := json.Marshal(Envelope{Event: event, Room: room, Data: data})
	if err != nil {
		logger.Error.Printf("[Hub.Publish] Error marshalling %s event: %v", event, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for c := range h.rooms[room] {
		select {
		case c.send <- msg:
			delivered++
		default:
			logger.Warn.Printf("[Hub.Publish] Dropping %s for connection %v", event, c.conn.RemoteAddr())
		}
	}
	logger.Debug.Printf("[Hub.Publish] event=%s room=%s delivered=%d", event, room, delivered)
}

// ConnectionCount returns the number of live connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// RoomSize returns the number of connections listening on room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
