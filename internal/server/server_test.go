package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gocalc "github.com/njchilds90/gocalc"
	"github.com/njchilds90/gocalc/internal/config"
)

func newTestServer(t *testing.T, mutate func(*config.ServerConfig)) (*Server, *bytes.Buffer) {
	t.Helper()
	conf := config.Default().Server
	if mutate != nil {
		mutate(&conf)
	}
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(conf, nil, logger), &logs
}

func do(t *testing.T, s *Server, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, nil)
	w := do(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ok", body["status"])
	_, err := time.Parse(time.RFC3339, body["time"].(string))
	assert.NoError(t, err)
}

func TestSchema(t *testing.T) {
	s, _ := newTestServer(t, nil)
	w := do(t, s, http.MethodGet, "/schema", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	assert.JSONEq(t, gocalc.ToolSpec(), w.Body.String())
}

func TestToolCall(t *testing.T) {
	s, logs := newTestServer(t, nil)
	w := do(t, s, http.MethodPost, "/tool", `{"tool":"integrate","params":{"input":"x*e^x"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "x*exp(x) - exp(x)", body["string"])
	assert.Contains(t, logs.String(), "path=/tool")
	assert.Contains(t, logs.String(), "status=200")
}

func TestToolCallErrorIsReportedInBody(t *testing.T) {
	s, logs := newTestServer(t, nil)
	w := do(t, s, http.MethodPost, "/tool", `{"tool":"integrate","params":{"input":"sin(x^2)"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "No suitable integration method found", body["error"])
	assert.Equal(t, "NO_METHOD_FOUND", body["code"])
	assert.Contains(t, logs.String(), "tool call failed")
}

func TestToolCallBadRequests(t *testing.T) {
	s, _ := newTestServer(t, func(c *config.ServerConfig) { c.MaxBodyBytes = 64 })
	cases := []struct {
		name   string
		body   string
		status int
		msg    string
	}{
		{"empty", "", http.StatusBadRequest, "payload missing"},
		{"malformed", `{"tool":`, http.StatusBadRequest, "unexpected EOF"},
		{"unknown field", `{"tool":"diff","extra":1}`, http.StatusBadRequest, "unknown field"},
		{"trailing", `{"tool":"diff"} {}`, http.StatusBadRequest, "trailing data"},
		{"too large", `{"tool":"diff","params":{"input":"` + strings.Repeat("x+", 64) + `x"}}`, http.StatusRequestEntityTooLarge, "too large"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/tool", c.body)
			assert.Equal(t, c.status, w.Code)
			assert.Contains(t, decode(t, w)["error"], c.msg)
		})
	}
}

func TestToolCallMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t, nil)
	w := do(t, s, http.MethodGet, "/tool", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestID(t *testing.T) {
	s, _ := newTestServer(t, nil)

	w := do(t, s, http.MethodGet, "/health", "")
	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	assert.NoError(t, err)

	id := uuid.NewString()
	w = do(t, s, http.MethodGet, "/health", "", RequestIDHeader, id)
	assert.Equal(t, id, w.Header().Get(RequestIDHeader))

	w = do(t, s, http.MethodGet, "/health", "", RequestIDHeader, "not-a-uuid")
	assert.NotEqual(t, "not-a-uuid", w.Header().Get(RequestIDHeader))
}

func TestCORS(t *testing.T) {
	s, _ := newTestServer(t, func(c *config.ServerConfig) {
		c.AllowOrigins = []string{"https://allowed.test"}
	})

	w := do(t, s, http.MethodGet, "/health", "", "Origin", "https://allowed.test")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://allowed.test", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(t, s, http.MethodGet, "/health", "", "Origin", "https://other.test")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCORSDisabledWithoutOrigins(t *testing.T) {
	s, _ := newTestServer(t, func(c *config.ServerConfig) { c.AllowOrigins = nil })
	w := do(t, s, http.MethodGet, "/health", "", "Origin", "https://any.test")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestUsesGivenIntegrator(t *testing.T) {
	conf := config.Default().Server
	s := New(conf, gocalc.NewIntegrator(gocalc.WithMaxDepth(1)), slog.New(slog.NewTextHandler(io.Discard, nil)))
	w := do(t, s, http.MethodPost, "/tool", `{"tool":"integrate","params":{"input":"x*e^x"}}`)
	assert.Equal(t, "MAX_DEPTH_EXCEEDED", decode(t, w)["code"])
}

func TestToolRejectsDeepMaxDepth(t *testing.T) {
	s, _ := newTestServer(t, nil)
	w := do(t, s, http.MethodPost, "/tool", `{"tool":"integrate","params":{"input":"e^x*sin(x)","max_depth":64}}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "param max_depth must be between 1 and 16", decode(t, w)["error"])
}

func TestRunStopsOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	s, _ := newTestServer(t, func(c *config.ServerConfig) { c.Addr = addr })
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}
