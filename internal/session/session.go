// Package session keeps authenticated principals behind an opaque cookie.
package session

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/efitness/internal/domain/account"
)

// ErrNotFound is returned when a session id is unknown or expired.
var ErrNotFound = errors.New("session not found")

// Principal is the authenticated user of a session.
type Principal struct {
	UserID int64
	Role   account.Role
	Name   string
	Email  string
}

// Session binds a principal to an opaque id until ExpiresAt.
type Session struct {
	ID        string
	Principal Principal
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store persists sessions.
type Store interface {
	Save(ctx context.Context, s Session) error
	// Load returns ErrNotFound for unknown or expired sessions.
	Load(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}
