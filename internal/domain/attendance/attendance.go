package attendance

import (
	"context"
	"time"

	"github.com/xenking/efitness/internal/domain/apperr"
)

// MethodManual is the default check-in method.
const MethodManual = "Manual"

var (
	ErrAlreadyCheckedIn  = apperr.Conflict("already checked in today")
	ErrNoCheckIn         = apperr.Conflict("no check-in record found for today")
	ErrAlreadyCheckedOut = apperr.Conflict("already checked out")
	ErrCheckOutTooEarly  = apperr.Validation("check-out must be after check-in")
)

// Record is a client's visit on one business day.
type Record struct {
	ID           int64
	ClientID     int64
	CheckInAt    time.Time
	CheckOutAt   *time.Time
	Method       string
	BusinessDate time.Time
}

// State is the attendance state of a client on a business day.
type State int

const (
	NotCheckedIn State = iota
	CheckedIn
	CheckedOut
)

// State derives the record's state. A nil record has not checked in.
func (r *Record) State() State {
	switch {
	case r == nil:
		return NotCheckedIn
	case r.CheckOutAt == nil:
		return CheckedIn
	default:
		return CheckedOut
	}
}

// ClientCount is the number of visits of one client.
type ClientCount struct {
	ClientID int64
	Count    int
}

// Store persists attendance records. At most one record exists per client
// and business date.
type Store interface {
	// Create returns ErrAlreadyCheckedIn when the client already has a
	// record for the business date.
	Create(ctx context.Context, r *Record) (int64, error)
	// ForDay returns nil without error when no record exists.
	ForDay(ctx context.Context, clientID int64, day time.Time) (*Record, error)
	// SetCheckOut stores the check-out instant unless one is already set and
	// reports whether it did.
	SetCheckOut(ctx context.Context, id int64, at time.Time) (bool, error)
	Recent(ctx context.Context, clientID int64, limit int) ([]Record, error)
	Counts(ctx context.Context) ([]ClientCount, error)
	ListAll(ctx context.Context) ([]Record, error)
	CheckIns(ctx context.Context, clientID int64) ([]Record, error)
	CheckOuts(ctx context.Context, clientID int64) ([]Record, error)
}
