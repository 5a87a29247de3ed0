package session

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xenking/efitness/internal/domain/account"
)

const contextKey = "gym.session"

// Config controls session lifetime and the cookie.
type Config struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Carts is cleared together with the session it belongs to.
type Carts interface {
	Clear(ctx context.Context, sessionID string) error
}

// Manager starts, resolves and ends cookie sessions.
type Manager struct {
	store Store
	carts Carts
	cfg   Config
	now   func() time.Time
}

// NewManager returns a Manager. carts may be nil.
func NewManager(store Store, carts Carts, cfg Config) *Manager {
	return &Manager{store: store, carts: carts, cfg: cfg, now: time.Now}
}

// Start creates a session for p, stores it and sets the cookie.
func (m *Manager) Start(c *gin.Context, p Principal) (Session, error) {
	now := m.now()
	s := Session{
		ID:        uuid.NewString(),
		Principal: p,
		CreatedAt: now,
		ExpiresAt: now.Add(m.cfg.TTL),
	}
	if err := m.store.Save(c.Request.Context(), s); err != nil {
		return Session{}, errors.Wrap(err, "start session")
	}
	m.setCookie(c, s.ID, int(m.cfg.TTL/time.Second))
	c.Set(contextKey, s)
	return s, nil
}

// End deletes the current session and its cart and expires the cookie.
func (m *Manager) End(c *gin.Context) error {
	m.setCookie(c, "", -1)
	id, err := c.Cookie(m.cfg.CookieName)
	if err != nil || id == "" {
		return nil
	}

	ctx := c.Request.Context()
	if m.carts != nil {
		if err := m.carts.Clear(ctx, id); err != nil {
			zctx.From(ctx).Warn("Clear cart on logout", zap.Error(err))
		}
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return errors.Wrap(err, "end session")
	}
	return nil
}

func (m *Manager) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cfg.CookieName, value, maxAge, "/", "", m.cfg.Secure, true)
}

// Load resolves the session cookie and stores the session in the gin
// context. Requests without a valid session pass through anonymous.
func (m *Manager) Load() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(m.cfg.CookieName)
		if err != nil || id == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		s, err := m.store.Load(ctx, id)
		switch {
		case err == nil:
			c.Set(contextKey, s)
		case errors.Is(err, ErrNotFound):
		default:
			zctx.From(ctx).Warn("Load session", zap.Error(err))
		}
		c.Next()
	}
}

// Current returns the session of the request.
func Current(c *gin.Context) (Session, bool) {
	v, ok := c.Get(contextKey)
	if !ok {
		return Session{}, false
	}
	s, ok := v.(Session)
	return s, ok
}

// MustPrincipal returns the principal of a request that passed Require.
func MustPrincipal(c *gin.Context) Principal {
	s, _ := Current(c)
	return s.Principal
}

// Require admits requests whose principal has one of roles. It answers 401
// without a session and 403 for any other role. With no roles every
// authenticated principal is admitted.
func Require(roles ...account.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := Current(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "unauthorized: no active session",
			})
			return
		}
		if len(roles) > 0 && !slices.Contains(roles, s.Principal.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "access denied",
			})
			return
		}
		c.Next()
	}
}
