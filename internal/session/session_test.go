package session

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/efitness/internal/domain/account"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var alice = Principal{UserID: 7, Role: account.RoleClient, Name: "Alice", Email: "alice@example.com"}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }

	s := Session{ID: "a", Principal: alice, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, store.Save(ctx, s))

	got, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, alice, got.Principal)

	now = now.Add(time.Hour)
	_, err = store.Load(ctx, "a")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = store.Load(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Eviction(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }

	for i := range 100 {
		id := fmt.Sprintf("idle-%d", i)
		require.NoError(t, store.Save(ctx, Session{ID: id, Principal: alice, CreatedAt: now, ExpiresAt: now.Add(time.Minute)}))
	}
	require.NoError(t, store.Save(ctx, Session{ID: "kept", Principal: alice, CreatedAt: now, ExpiresAt: now.Add(24 * time.Hour)}))

	now = now.Add(time.Hour)
	store.evict()
	assert.Equal(t, 1, store.Len())

	_, err := store.Load(ctx, "kept")
	require.NoError(t, err)
}

func TestMemoryStore_RunStopsWithContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client)
	now := time.Now().UTC().Truncate(time.Second)
	s := Session{ID: "abc", Principal: alice, CreatedAt: now, ExpiresAt: now.Add(24 * time.Hour)}
	require.NoError(t, store.Save(ctx, s))

	ttl := mr.TTL(sessionKey("abc"))
	assert.Greater(t, ttl, 23*time.Hour)

	got, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", got.ID)
	assert.Equal(t, alice, got.Principal)
	assert.True(t, now.Equal(got.CreatedAt))
	assert.True(t, s.ExpiresAt.Equal(got.ExpiresAt))

	mr.FastForward(25 * time.Hour)
	_, err = store.Load(ctx, "abc")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Delete(ctx, "abc"))
}

type fakeCarts struct {
	cleared []string
}

func (f *fakeCarts) Clear(_ context.Context, sessionID string) error {
	f.cleared = append(f.cleared, sessionID)
	return nil
}

func newTestRouter(m *Manager) *gin.Engine {
	r := gin.New()
	r.Use(m.Load())
	r.POST("/login", func(c *gin.Context) {
		s, err := m.Start(c, alice)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, s.ID)
	})
	r.POST("/logout", func(c *gin.Context) {
		_ = m.End(c)
		c.Status(http.StatusOK)
	})
	r.GET("/client", Require(account.RoleClient), func(c *gin.Context) {
		c.String(http.StatusOK, MustPrincipal(c).Name)
	})
	r.GET("/admin", Require(account.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/any", Require(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func do(r http.Handler, method, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "gym_sid" {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestManager(t *testing.T) {
	carts := &fakeCarts{}
	m := NewManager(NewMemoryStore(), carts, Config{CookieName: "gym_sid", TTL: time.Hour})
	r := newTestRouter(m)

	t.Run("NoSession", func(t *testing.T) {
		w := do(r, http.MethodGet, "/client", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"success":false,"message":"unauthorized: no active session"}`, w.Body.String())

		w = do(r, http.MethodGet, "/any", &http.Cookie{Name: "gym_sid", Value: "forged"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	w := do(r, http.MethodPost, "/login", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookie(t, w)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, w.Body.String(), cookie.Value)

	t.Run("RoleAdmitted", func(t *testing.T) {
		w := do(r, http.MethodGet, "/client", cookie)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Alice", w.Body.String())

		w = do(r, http.MethodGet, "/any", cookie)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("WrongRole", func(t *testing.T) {
		w := do(r, http.MethodGet, "/admin", cookie)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Logout", func(t *testing.T) {
		w := do(r, http.MethodPost, "/logout", cookie)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{cookie.Value}, carts.cleared)
		assert.Less(t, sessionCookie(t, w).MaxAge, 0)

		w = do(r, http.MethodGet, "/client", cookie)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
