// main_test.go
package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-hackhub/config"
	"go-hackhub/metrics"
	"go-hackhub/store"
)

func testConfig() *config.Config {
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.SessionName = "testsession"
	return cfg
}

// TestHealthEndpoint checks the fully wired router answers /health.
func TestHealthEndpoint(t *testing.T) {
	a := newApp(testConfig(), store.NewMemoryStore(), metrics.Noop{}, cookie.NewStore([]byte("secret")))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp := httptest.NewRecorder()
	a.handler().ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "OK", resp.Body.String())
}

// TestSignupThenMe walks a session through the wired router with the default memstore.
func TestSignupThenMe(t *testing.T) {
	a := newApp(testConfig(), store.NewMemoryStore(), metrics.Noop{}, nil)

	body := `{"username":"ada","password":"secret1","role":"CLIENT"}`
	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	a.router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	cookies := resp.Result().Cookies()
	require.NotEmpty(t, cookies)

	req = httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.AddCookie(cookies[0])
	resp = httptest.NewRecorder()
	a.router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"username":"ada"`)
}

func TestCORSPreflight(t *testing.T) {
	cfg := testConfig()
	cfg.AllowedOrigins = []string{"http://localhost:3000"}
	a := newApp(cfg, store.NewMemoryStore(), metrics.Noop{}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/hackathons", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp := httptest.NewRecorder()
	a.router.ServeHTTP(resp, req)

	assert.Equal(t, "http://localhost:3000", resp.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header().Get("Access-Control-Allow-Credentials"))
}

func TestHandler_Tracing(t *testing.T) {
	cfg := testConfig()
	a := newApp(cfg, store.NewMemoryStore(), metrics.Noop{}, nil)
	_, plain := a.handler().(*gin.Engine)
	assert.True(t, plain)

	cfg.TracingEnabled = true
	_, plain = a.handler().(*gin.Engine)
	assert.False(t, plain, "tracing wraps the router")
}

func TestOpenStore(t *testing.T) {
	cfg := testConfig()

	s, err := openStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &store.MemoryStore{}, s)

	cfg.DBDriver = "sqlite"
	cfg.DBDSN = "file:" + filepath.Join(t.TempDir(), "hub.db")
	s, err = openStore(context.Background(), cfg)
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &store.SQLStore{}, s)

	cfg.DBDriver = "mongo"
	_, err = openStore(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNewPublisher_Disabled(t *testing.T) {
	pub, err := newPublisher(testConfig())
	require.NoError(t, err)
	assert.Equal(t, metrics.Publisher(metrics.Noop{}), pub)
}
