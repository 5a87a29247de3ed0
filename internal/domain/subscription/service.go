package subscription

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/xenking/efitness/internal/domain/apperr"
	"github.com/xenking/efitness/internal/domain/calendar"
	"github.com/xenking/efitness/internal/events"
)

// PurchaseRequest is a client's plan purchase.
type PurchaseRequest struct {
	ClientID       int64
	PlanID         int64
	StartDate      string
	PaymentMethod  string
	TransactionRef string
}

// Purchase is the result of a successful plan purchase.
type Purchase struct {
	SubscriptionID int64
	PaymentID      int64
	StartDate      time.Time
	EndDate        time.Time
	Amount         string
}

// Directory resolves client contact details for receipts.
type Directory interface {
	Contact(ctx context.Context, clientID int64) (name, email string, err error)
}

// Service implements plan management and subscription purchases.
type Service struct {
	store     Store
	directory Directory
	publisher events.Publisher
	now       func() time.Time
	purchases metric.Int64Counter
}

// NewService creates a subscription Service.
func NewService(store Store, directory Directory, publisher events.Publisher, meter metric.Meter) (*Service, error) {
	purchases, err := meter.Int64Counter("gym.subscription.purchases",
		metric.WithDescription("Completed subscription purchases"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "purchases counter")
	}
	return &Service{
		store:     store,
		directory: directory,
		publisher: publisher,
		now:       time.Now,
		purchases: purchases,
	}, nil
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func validatePlan(p *Plan) error {
	p.PlanName = strings.TrimSpace(p.PlanName)
	switch {
	case p.PlanName == "":
		return apperr.Validation("plan name is required")
	case p.DurationMonths <= 0:
		return apperr.Validation("duration months must be positive")
	case p.Price.IsNegative():
		return apperr.Validation("price must not be negative")
	}
	p.Price = p.Price.Round(2)
	return nil
}

// ListPlans returns all plans ordered by id.
func (s *Service) ListPlans(ctx context.Context) ([]Plan, error) {
	plans, err := s.store.ListPlans(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list plans")
	}
	return plans, nil
}

// CreatePlan validates and stores a plan.
func (s *Service) CreatePlan(ctx context.Context, p Plan) (int64, error) {
	if err := validatePlan(&p); err != nil {
		return 0, err
	}
	return s.store.CreatePlan(ctx, &p)
}

// UpdatePlan applies a plan patch.
func (s *Service) UpdatePlan(ctx context.Context, id int64, p PlanPatch) error {
	if p.Empty() {
		return apperr.ErrNothingToUpdate
	}
	if p.PlanName != nil && strings.TrimSpace(*p.PlanName) == "" {
		return apperr.Validation("plan name is required")
	}
	if p.DurationMonths != nil && *p.DurationMonths <= 0 {
		return apperr.Validation("duration months must be positive")
	}
	if p.Price != nil {
		if p.Price.IsNegative() {
			return apperr.Validation("price must not be negative")
		}
		v := p.Price.Round(2)
		p.Price = &v
	}
	return s.store.UpdatePlan(ctx, id, p)
}

// DeletePlan removes a plan.
func (s *Service) DeletePlan(ctx context.Context, id int64) error {
	return s.store.DeletePlan(ctx, id)
}

// Purchase subscribes the client to a plan and records the payment
// atomically.
func (s *Service) Purchase(ctx context.Context, req PurchaseRequest) (*Purchase, error) {
	req.PaymentMethod = strings.TrimSpace(req.PaymentMethod)
	req.TransactionRef = strings.TrimSpace(req.TransactionRef)
	if req.PlanID <= 0 || strings.TrimSpace(req.StartDate) == "" || req.PaymentMethod == "" || req.TransactionRef == "" {
		return nil, ErrMissingFields
	}

	plan, err := s.store.GetPlan(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	start, ok := calendar.ParseDate(strings.TrimSpace(req.StartDate))
	if !ok {
		return nil, ErrInvalidStart
	}
	end := AddMonths(start, plan.DurationMonths)

	sub := &Subscription{
		ClientID:  req.ClientID,
		PlanID:    plan.ID,
		StartDate: start,
		EndDate:   end,
		IsActive:  true,
	}
	pay := &Payment{
		ClientID:       req.ClientID,
		Amount:         plan.Price,
		PaymentDate:    s.now().UTC(),
		Method:         req.PaymentMethod,
		Status:         PaymentCompleted,
		TransactionRef: req.TransactionRef,
	}
	subID, payID, err := s.store.CreateWithPayment(ctx, sub, pay)
	if err != nil {
		return nil, errors.Wrap(err, "create subscription")
	}

	s.purchases.Add(ctx, 1)
	out := &Purchase{
		SubscriptionID: subID,
		PaymentID:      payID,
		StartDate:      start,
		EndDate:        end,
		Amount:         plan.Price.StringFixed(2),
	}
	if err := s.publisher.Publish(ctx, events.Event{
		Type:    events.SubscriptionPurchased,
		Key:     strconv.FormatInt(req.ClientID, 10),
		Time:    s.now(),
		Payload: purchasedEvent{ClientID: req.ClientID, PlanID: plan.ID, Purchase: out},
	}); err != nil {
		zctx.From(ctx).Warn("Publish subscription event", zap.Int64("subscription_id", subID), zap.Error(err))
	}
	return out, nil
}

// Active returns the client's active subscriptions with their plans.
func (s *Service) Active(ctx context.Context, clientID int64) ([]Subscription, error) {
	subs, err := s.store.ActiveForClient(ctx, clientID)
	if err != nil {
		return nil, errors.Wrap(err, "list active subscriptions")
	}
	return subs, nil
}

// Payments returns the client's payments, newest first.
func (s *Service) Payments(ctx context.Context, clientID int64) ([]Payment, error) {
	payments, err := s.store.PaymentsForClient(ctx, clientID)
	if err != nil {
		return nil, errors.Wrap(err, "list payments")
	}
	return payments, nil
}

// ListAll returns every subscription with client, plan and payment.
func (s *Service) ListAll(ctx context.Context) ([]Subscription, error) {
	subs, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list subscriptions")
	}
	return subs, nil
}

// Delete removes a subscription and its payments.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}

// SetStatus updates the active flag and the payment status together.
func (s *Service) SetStatus(ctx context.Context, id int64, active *bool, paymentStatus string) error {
	paymentStatus = strings.TrimSpace(paymentStatus)
	if active == nil || paymentStatus == "" {
		return apperr.Validation("isActive and paymentStatus are required")
	}
	return s.store.SetStatus(ctx, id, *active, paymentStatus)
}

type purchasedEvent struct {
	ClientID int64
	PlanID   int64
	Purchase *Purchase
}

func (p purchasedEvent) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("subscriptionId", func(e *jx.Encoder) { e.Int64(p.Purchase.SubscriptionID) })
		e.Field("paymentId", func(e *jx.Encoder) { e.Int64(p.Purchase.PaymentID) })
		e.Field("clientId", func(e *jx.Encoder) { e.Int64(p.ClientID) })
		e.Field("planId", func(e *jx.Encoder) { e.Int64(p.PlanID) })
		e.Field("startDate", func(e *jx.Encoder) { e.Str(p.Purchase.StartDate.Format(time.DateOnly)) })
		e.Field("endDate", func(e *jx.Encoder) { e.Str(p.Purchase.EndDate.Format(time.DateOnly)) })
		e.Field("amount", func(e *jx.Encoder) { e.Str(p.Purchase.Amount) })
	})
}
