package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/evently/backend/internal/auth"
	"github.com/evently/backend/internal/db"
	"github.com/evently/backend/internal/metrics"
	"github.com/evently/backend/internal/model"
	"github.com/evently/backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "handler-test-secret"

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testServer struct {
	router  *gin.Engine
	store   *db.Memory
	tokens  *auth.TokenService
	clock   *clock
	metrics *metrics.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clk := &clock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	tokens, err := auth.NewTokenService(testSecret, auth.DefaultAccessTTL, auth.DefaultRefreshTTL, auth.WithClock(clk.Now))
	require.NoError(t, err)

	store := db.NewMemory()
	m := metrics.New()
	log := zerolog.Nop()
	router := NewRouter(RouterDeps{
		Auth:    service.NewAuthService(store, auth.NewHasher(bcrypt.MinCost), tokens, log),
		Events:  service.NewEventService(store, store, log),
		Metrics: m,
		Log:     log,
	})

	return &testServer{router: router, store: store, tokens: tokens, clock: clk, metrics: m}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// signup registers and logs in a user, returning the login payload.
func (s *testServer) signup(t *testing.T, username, password string) model.LoginResult {
	t.Helper()

	w := s.do(t, http.MethodPost, "/users/register", "", model.AuthRequest{Username: username, Password: password})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/users/login", "", model.AuthRequest{Username: username, Password: password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res model.LoginResult
	decode(t, w, &res)
	return res
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var res model.ErrorResponse
	decode(t, w, &res)
	return res
}
