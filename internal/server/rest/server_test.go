package rest

import (
	"context"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil, nil)
	resp := do(t, s, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]any{"ok": true}, decode(t, resp))
}

func TestRequestID_GeneratedAndEchoed(t *testing.T) {
	s := newTestServer(t, nil, nil)

	resp := do(t, s, http.MethodGet, "/health", "", nil)
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))

	resp = do(t, s, http.MethodGet, "/health", "", map[string]string{requestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", resp.Header.Get(requestIDHeader))
}

func TestUnknownRoute_RendersMessage(t *testing.T) {
	s := newTestServer(t, nil, nil)
	resp := do(t, s, http.MethodGet, "/nope", "", nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, decode(t, resp)["message"], "/nope")
}

func TestPanic_Recovered(t *testing.T) {
	s := newTestServer(t, nil, nil)
	s.App().Get("/boom", func(*fiber.Ctx) error { panic("boom") })

	resp := do(t, s, http.MethodGet, "/boom", "", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, msgServerError, decode(t, resp)["message"])
}

func TestCorsConfig(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		creds   bool
	}{
		{"explicit", []string{"http://localhost:3000", "https://garden.example"}, true},
		{"wildcard", []string{"*"}, false},
		{"none", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := corsConfig(tt.origins)
			assert.Equal(t, tt.creds, cfg.AllowCredentials)
		})
	}
}

func TestCors_PreflightAllowsConfiguredOrigin(t *testing.T) {
	s := newTestServer(t, nil, nil)
	resp := do(t, s, http.MethodOptions, "/api/auth/login", "", map[string]string{
		"Origin":                        "http://localhost:3000",
		"Access-Control-Request-Method": "POST",
	})

	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := newTestServer(t, nil, nil)
	s.address = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestRun_WaitsForInFlightRequests(t *testing.T) {
	s := newTestServer(t, nil, nil)
	s.address = freeAddr(t)

	var finished atomic.Bool
	entered := make(chan struct{})
	s.App().Get("/slow", func(c *fiber.Ctx) error {
		close(entered)
		time.Sleep(300 * time.Millisecond)
		finished.Store(true)
		return c.SendString("done")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", s.address)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)

	go func() {
		if resp, err := http.Get("http://" + s.address + "/slow"); err == nil {
			_ = resp.Body.Close()
		}
	}()
	<-entered
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
		assert.True(t, finished.Load(), "Run returned before the handler finished")
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
