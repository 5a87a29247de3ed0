package httpmiddleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/sdk/zctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	r := gin.New()
	r.Use(InjectLogger(zap.New(core)), Recovery())
	r.GET("/boom", func(*gin.Context) { panic("kaboom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"internal server error"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "kaboom")
	require.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
}

func TestRequestID(t *testing.T) {
	var seen string
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		seen = RequestIDFromContext(c.Request.Context())
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w = serve(r, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, strings.Repeat("x", 129))
	serve(r, req)
	assert.Len(t, seen, 36)
}

func TestLogging(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(RequestID(), InjectLogger(zap.New(core)), LogRequests())
	r.GET("/api/products/:id", func(c *gin.Context) {
		zctx.From(c.Request.Context()).Info("Inside")
		c.Status(http.StatusTeapot)
	})

	serve(r, httptest.NewRequest(http.MethodGet, "/api/products/7", nil))

	inside := logs.FilterMessage("Inside").All()
	require.Len(t, inside, 1)
	assert.NotEmpty(t, inside[0].ContextMap()["request_id"])

	reqs := logs.FilterMessage("Request").All()
	require.Len(t, reqs, 1)
	fields := reqs[0].ContextMap()
	assert.Equal(t, "/api/products/:id", fields["route"])
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
	assert.Equal(t, http.MethodGet, fields["method"])
}

func corsRouter(cfg CORSConfig) *gin.Engine {
	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestCORS_Preflight(t *testing.T) {
	r := corsRouter(CORSConfig{
		AllowOrigins:     []string{"http://localhost:4444"},
		AllowCredentials: true,
		MaxAge:           600,
	})

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://LOCALHOST:4444")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	w := serve(r, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:4444", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	r := corsRouter(CORSConfig{AllowOrigins: []string{"http://localhost:4444"}})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	w := serve(r, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Values("Vary"), "Origin")
}

func TestCORS_WildcardWithCredentialsEchoesOrigin(t *testing.T) {
	r := corsRouter(CORSConfig{AllowOrigins: []string{"*"}, AllowCredentials: true})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://app.example")
	w := serve(r, req)

	assert.Equal(t, "http://app.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func rateLimited(t *testing.T, max int) *gin.Engine {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	r := gin.New()
	r.Use(RateLimit(ctx, RateLimitConfig{Max: max, Window: time.Minute}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func fromIP(ip string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = ip + ":12345"
	return req
}

func TestRateLimit(t *testing.T) {
	r := rateLimited(t, 2)

	for i := range 2 {
		w := serve(r, fromIP("10.0.0.1"))
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := serve(r, fromIP("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"success":false,"message":"rate limit exceeded"}`, w.Body.String())

	w = serve(r, fromIP("10.0.0.2"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLimiter_SlidingWindow(t *testing.T) {
	l := newLimiter(2, time.Minute)
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	_, _, ok := l.take("k", start)
	require.True(t, ok)
	_, _, ok = l.take("k", start.Add(time.Second))
	require.True(t, ok)
	_, _, ok = l.take("k", start.Add(2*time.Second))
	require.False(t, ok)

	// Halfway through the next window half of the previous count remains:
	// 2*0.5 = 1 is admitted.
	_, _, ok = l.take("k", start.Add(90*time.Second))
	assert.True(t, ok)
	// 2*(29/60) + 1 is still below the limit.
	_, _, ok = l.take("k", start.Add(91*time.Second))
	assert.True(t, ok)
	// 2*(28/60) + 2 is not.
	_, _, ok = l.take("k", start.Add(92*time.Second))
	assert.False(t, ok)

	_, _, ok = l.take("k", start.Add(5*time.Minute))
	assert.True(t, ok)

	l.evict(start.Add(10 * time.Minute))
	assert.Empty(t, l.counts)
}
