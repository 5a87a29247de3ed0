package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func router(h *Health) *gin.Engine {
	r := gin.New()
	r.GET("/livez", h.Live)
	r.GET("/readyz", h.Ready)
	return r
}

func get(t *testing.T, h *Health, path string) (int, statusResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	router(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var body statusResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return w.Code, body
}

func failing(msg string) CheckFunc {
	return func(context.Context) error { return errors.New(msg) }
}

func passing() CheckFunc {
	return func(context.Context) error { return nil }
}

func pollN(p *probe, n int) {
	for range n {
		p.poll(context.Background())
	}
}

func TestLive_Passing(t *testing.T) {
	h := New()
	h.AddLivenessCheck("goroutines", time.Second, passing())

	code, body := get(t, h, "/livez")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)
}

func TestLive_FailureThreshold(t *testing.T) {
	h := New()
	h.AddLivenessCheck("db", time.Second, failing("connection refused"))
	p := h.probes[0]

	pollN(p, 2)
	code, _ := get(t, h, "/livez")
	assert.Equal(t, http.StatusOK, code, "below threshold stays healthy")

	pollN(p, 1)
	code, body := get(t, h, "/livez")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "connection refused", body.Checks["db"])
}

func TestProbe_Recovers(t *testing.T) {
	fail := true
	h := New()
	h.AddReadinessCheckWithThresholds("redis", time.Second, func(context.Context) error {
		if fail {
			return errors.New("down")
		}
		return nil
	}, Thresholds{Failure: 1, Success: 2})
	h.SetReady(true)
	p := h.probes[0]

	pollN(p, 1)
	assert.False(t, h.IsReady())

	fail = false
	pollN(p, 1)
	assert.False(t, h.IsReady(), "one success is below the success threshold")
	pollN(p, 1)
	assert.True(t, h.IsReady())
}

func TestReady_ManualGate(t *testing.T) {
	h := New()
	h.AddReadinessCheck("postgres", time.Second, passing())

	code, body := get(t, h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, body.Checks, "_readiness")

	h.SetReady(true)
	code, _ = get(t, h, "/readyz")
	assert.Equal(t, http.StatusOK, code)

	h.SetReady(false)
	assert.False(t, h.IsReady())
}

func TestReady_IgnoresLivenessChecks(t *testing.T) {
	h := New()
	h.AddLivenessCheck("goroutines", time.Second, failing("leak"))
	h.SetReady(true)
	pollN(h.probes[0], 3)

	code, _ := get(t, h, "/readyz")
	assert.Equal(t, http.StatusOK, code)
	code, _ = get(t, h, "/livez")
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestStartStop(t *testing.T) {
	h := New()
	h.AddReadinessCheckWithThresholds("postgres", time.Second, failing("refused"), Thresholds{Failure: 1, Success: 1})
	h.SetReady(true)

	h.Start(context.Background(), 10*time.Millisecond)
	defer h.Stop()

	assert.Eventually(t, func() bool { return !h.IsReady() }, time.Second, 10*time.Millisecond)
	h.Stop()
	h.Stop()
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestPingCheck(t *testing.T) {
	ok := PingCheck(pingerFunc(func(context.Context) error { return nil }))
	require.NoError(t, ok(context.Background()))

	bad := PingCheck(pingerFunc(func(context.Context) error { return errors.New("refused") }))
	require.ErrorContains(t, bad(context.Background()), "refused")
}

func TestGoroutineCountCheck(t *testing.T) {
	require.NoError(t, GoroutineCountCheck(1_000_000)(context.Background()))
	require.Error(t, GoroutineCountCheck(0)(context.Background()))
}
