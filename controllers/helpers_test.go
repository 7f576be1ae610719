// file: controllers/helpers_test.go
package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go-hackhub/services"
	"go-hackhub/store"
	"go-hackhub/websocket"
	"golang.org/x/crypto/bcrypt"
)

const testSessionName = "testsession"

// testAPI is a fully wired router over an in-memory store.
type testAPI struct {
	router *gin.Engine
	store  *store.MemoryStore
	hub    *websocket.Hub
}

// setupTestRouter creates a new Gin engine with session middleware and every route mounted.
func setupTestRouter(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()

	// Set up sessions with cookie store.
	sessionStore := cookie.NewStore([]byte("test-secret"))
	router.Use(sessions.Sessions(testSessionName, sessionStore))

	s := store.NewMemoryStore()
	hub := websocket.NewHub(nil, nil)
	notifier := websocket.NewMessenger(hub)
	locks := services.NewKeyedMutex()

	users := services.NewUserService(s)
	users.Cost = bcrypt.MinCost
	hackathons := services.NewHackathonService(s, notifier, nil, locks, "http://hub.test")
	attendants := services.NewAttendantService(s, notifier, nil, locks)

	RegisterRoutes(router, Controllers{
		Auth:          NewAuthController(users),
		Users:         NewUserController(users),
		Hackathons:    NewHackathonController(hackathons, attendants),
		Attendants:    NewAttendantController(attendants),
		Notifications: NewNotificationController(hub),
	})
	return &testAPI{router: router, store: s, hub: hub}
}

// do sends a request with an optional JSON body and session cookie.
func (api *testAPI) do(method, path string, body interface{}, session *http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != nil {
		req.AddCookie(session)
	}
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	return w
}

// signup creates a user through the API and returns its id and session cookie.
func (api *testAPI) signup(t *testing.T, username, role string) (string, *http.Cookie) {
	t.Helper()
	w := api.do(http.MethodPost, "/signup", gin.H{
		"username": username, "password": "secret1", "role": role, "name": username,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var user struct {
		ID string `json:"_id"`
	}
	decode(t, w, &user)
	return user.ID, sessionCookie(t, w)
}

// sessionCookie extracts the session cookie set by a response.
func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == testSessionName {
			return c
		}
	}
	t.Fatalf("response set no %s cookie", testSessionName)
	return nil
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

// errorBody returns the "error" field of a JSON error response.
func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	decode(t, w, &body)
	return body["error"]
}
