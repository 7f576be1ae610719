package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-hackhub/models"
)

func startTestServer(t *testing.T, h *Hub, member Member) *websocket.Conn {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeWs(w, r, member)
	}))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err, "WebSocket connection should succeed")
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// End to end: the client joins its room over the wire and receives a published event.
func TestServeWs_JoinAndReceive(t *testing.T) {
	h := NewHub(nil, nil)
	conn := startTestServer(t, h, Member{Username: "ada"})

	require.NoError(t, conn.WriteJSON(ClientMessage{Action: "join", Room: "ada"}))
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var joined Envelope
	require.NoError(t, conn.ReadJSON(&joined))
	assert.Equal(t, EventJoined, joined.Event)

	h.Publish("ada", models.EventNewInvite, map[string]string{"from": "grace"})

	var env Envelope
	require.NoError(t, conn.ReadJSON(&env))
	assert.Equal(t, models.EventNewInvite, env.Event)
}

func TestServeWs_RejectsPlainHTTP(t *testing.T) {
	h := NewHub(nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	w := httptest.NewRecorder()

	h.ServeWs(w, req, Member{Username: "ada"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, h.ConnectionCount())
}

func TestServeWs_RejectsForeignOrigin(t *testing.T) {
	h := NewHub([]string{"https://hub.example"}, nil)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeWs(w, r, Member{Username: "ada"})
	}))
	defer server.Close()

	header := http.Header{}
	header.Set("Origin", "https://evil.example")
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), header)

	assert.Error(t, err)
	if resp != nil {
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	}
}
