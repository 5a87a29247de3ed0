package subscription

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/efitness/internal/domain/apperr"
)

const PaymentCompleted = "Completed"

var (
	ErrPlanNotFound    = apperr.NotFound("plan not found")
	ErrNotFound        = apperr.NotFound("subscription not found")
	ErrPaymentNotFound = apperr.NotFound("payment not found")
	ErrMissingFields   = apperr.Validation("missing required fields")
	ErrInvalidStart    = apperr.Validation("invalid start date")
)

// Plan is a purchasable membership.
type Plan struct {
	ID             int64
	PlanName       string
	Description    string
	DurationMonths int
	Price          decimal.Decimal
}

// PlanPatch holds optional plan fields.
type PlanPatch struct {
	PlanName       *string
	Description    *string
	DurationMonths *int
	Price          *decimal.Decimal
}

// Empty reports whether no field is set.
func (p PlanPatch) Empty() bool {
	return p == PlanPatch{}
}

// Subscription is a client's membership period. EndDate is fixed at
// creation.
type Subscription struct {
	ID        int64
	ClientID  int64
	PlanID    int64
	StartDate time.Time
	EndDate   time.Time
	IsActive  bool

	// Joined for views.
	ClientName  string
	ClientEmail string
	Plan        *Plan
	Payment     *Payment
}

// Payment settles a subscription.
type Payment struct {
	ID             int64
	ClientID       int64
	SubscriptionID int64
	Amount         decimal.Decimal
	PaymentDate    time.Time
	Method         string
	Status         string
	TransactionRef string
}

// Store persists plans, subscriptions and their payments.
type Store interface {
	ListPlans(ctx context.Context) ([]Plan, error)
	GetPlan(ctx context.Context, id int64) (*Plan, error)
	CreatePlan(ctx context.Context, p *Plan) (int64, error)
	UpdatePlan(ctx context.Context, id int64, p PlanPatch) error
	DeletePlan(ctx context.Context, id int64) error

	// CreateWithPayment inserts both rows in one transaction and returns
	// their ids.
	CreateWithPayment(ctx context.Context, s *Subscription, p *Payment) (subID, paymentID int64, err error)
	ActiveForClient(ctx context.Context, clientID int64) ([]Subscription, error)
	PaymentsForClient(ctx context.Context, clientID int64) ([]Payment, error)
	PaymentForClient(ctx context.Context, clientID, paymentID int64) (*Payment, error)
	ListAll(ctx context.Context) ([]Subscription, error)
	// Delete removes a subscription and its payments in one transaction.
	Delete(ctx context.Context, id int64) error
	// SetStatus updates the subscription flag and its payment status in one
	// transaction.
	SetStatus(ctx context.Context, id int64, active bool, paymentStatus string) error
}
