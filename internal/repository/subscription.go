package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/efitness/internal/domain/apperr"
	"github.com/xenking/efitness/internal/domain/subscription"
)

const (
	planColumns = `id, plan_name, COALESCE(description, ''), duration_months, price`

	listPlansSQL  = `SELECT ` + planColumns + ` FROM subscription_plans ORDER BY id`
	getPlanSQL    = `SELECT ` + planColumns + ` FROM subscription_plans WHERE id = $1`
	deletePlanSQL = `DELETE FROM subscription_plans WHERE id = $1`

	insertPlanSQL = `INSERT INTO subscription_plans (plan_name, description, duration_months, price)
		VALUES ($1, $2, $3, $4) RETURNING id`

	insertSubscriptionSQL = `INSERT INTO subscriptions (client_id, plan_id, start_date, end_date, is_active)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`

	insertPaymentSQL = `INSERT INTO payments (client_id, subscription_id, amount, payment_date, method, status, transaction_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	activeSubscriptionsSQL = `SELECT s.id, s.client_id, s.plan_id, s.start_date, s.end_date, s.is_active,
			p.id, p.plan_name, COALESCE(p.description, ''), p.duration_months, p.price
		FROM subscriptions s JOIN subscription_plans p ON p.id = s.plan_id
		WHERE s.client_id = $1 AND s.is_active
		ORDER BY s.end_date DESC`

	paymentColumns = `id, client_id, COALESCE(subscription_id, 0), amount, payment_date, method, status, transaction_ref`

	paymentsForClientSQL = `SELECT ` + paymentColumns + ` FROM payments
		WHERE client_id = $1 ORDER BY payment_date DESC, id DESC`

	paymentForClientSQL = `SELECT ` + paymentColumns + ` FROM payments
		WHERE client_id = $1 AND id = $2`

	listSubscriptionsSQL = `SELECT s.id, s.client_id, s.plan_id, s.start_date, s.end_date, s.is_active,
			a.full_name, a.email,
			p.id, p.plan_name, COALESCE(p.description, ''), p.duration_months, p.price,
			pay.id, pay.amount, pay.payment_date, pay.method, pay.status, pay.transaction_ref
		FROM subscriptions s
		JOIN accounts a ON a.id = s.client_id
		JOIN subscription_plans p ON p.id = s.plan_id
		LEFT JOIN LATERAL (
			SELECT id, amount, payment_date, method, status, transaction_ref
			FROM payments WHERE subscription_id = s.id
			ORDER BY payment_date DESC, id DESC LIMIT 1
		) pay ON TRUE
		ORDER BY s.start_date DESC, s.id DESC`

	deleteSubscriptionPaymentsSQL = `DELETE FROM payments WHERE subscription_id = $1`
	deleteSubscriptionSQL         = `DELETE FROM subscriptions WHERE id = $1`

	setSubscriptionActiveSQL = `UPDATE subscriptions SET is_active = $1 WHERE id = $2`
	setPaymentStatusSQL      = `UPDATE payments SET status = $1 WHERE subscription_id = $2`
)

var errPlanInUse = apperr.Conflict("plan has subscriptions and cannot be deleted")

var _ subscription.Store = (*SubscriptionRepository)(nil)

// SubscriptionRepository implements subscription.Store backed by PostgreSQL.
type SubscriptionRepository struct {
	pool *pgxpool.Pool
}

// NewSubscriptionRepository returns a SubscriptionRepository that uses the
// given pool.
func NewSubscriptionRepository(pool *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{pool: pool}
}

func (r *SubscriptionRepository) ListPlans(ctx context.Context) ([]subscription.Plan, error) {
	rows, err := r.pool.Query(ctx, listPlansSQL)
	if err != nil {
		return nil, fmt.Errorf("listing plans: %w", err)
	}
	return pgx.CollectRows(rows, scanPlan)
}

func (r *SubscriptionRepository) GetPlan(ctx context.Context, id int64) (*subscription.Plan, error) {
	rows, err := r.pool.Query(ctx, getPlanSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting plan %d: %w", id, err)
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanPlan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, subscription.ErrPlanNotFound
		}
		return nil, fmt.Errorf("getting plan %d: %w", id, err)
	}
	return &p, nil
}

func (r *SubscriptionRepository) CreatePlan(ctx context.Context, p *subscription.Plan) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, insertPlanSQL, p.PlanName, p.Description, p.DurationMonths, p.Price).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting plan: %w", err)
	}
	return id, nil
}

func (r *SubscriptionRepository) UpdatePlan(ctx context.Context, id int64, p subscription.PlanPatch) error {
	var s setList
	setIf(&s, "plan_name", p.PlanName)
	setIf(&s, "description", p.Description)
	setIf(&s, "duration_months", p.DurationMonths)
	setIf(&s, "price", p.Price)
	return s.exec(ctx, r.pool, "subscription_plans", subscription.ErrPlanNotFound, where("id", id))
}

func (r *SubscriptionRepository) DeletePlan(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deletePlanSQL, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return errPlanInUse
		}
		return fmt.Errorf("deleting plan %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return subscription.ErrPlanNotFound
	}
	return nil
}

// CreateWithPayment inserts the subscription and its payment in one
// transaction.
func (r *SubscriptionRepository) CreateWithPayment(ctx context.Context, s *subscription.Subscription, p *subscription.Payment) (subID, paymentID int64, err error) {
	err = inTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, insertSubscriptionSQL,
			s.ClientID, s.PlanID, s.StartDate, s.EndDate, s.IsActive,
		).Scan(&subID)
		if err != nil {
			return fmt.Errorf("inserting subscription: %w", err)
		}

		err = tx.QueryRow(ctx, insertPaymentSQL,
			p.ClientID, subID, p.Amount, p.PaymentDate, p.Method, p.Status, p.TransactionRef,
		).Scan(&paymentID)
		if err != nil {
			return fmt.Errorf("inserting payment of subscription %d: %w", subID, err)
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return subID, paymentID, nil
}

func (r *SubscriptionRepository) ActiveForClient(ctx context.Context, clientID int64) ([]subscription.Subscription, error) {
	rows, err := r.pool.Query(ctx, activeSubscriptionsSQL, clientID)
	if err != nil {
		return nil, fmt.Errorf("listing subscriptions of client %d: %w", clientID, err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (subscription.Subscription, error) {
		var (
			s    subscription.Subscription
			plan subscription.Plan
		)
		err := row.Scan(&s.ID, &s.ClientID, &s.PlanID, &s.StartDate, &s.EndDate, &s.IsActive,
			&plan.ID, &plan.PlanName, &plan.Description, &plan.DurationMonths, &plan.Price)
		s.Plan = &plan
		return s, err
	})
}

func (r *SubscriptionRepository) PaymentsForClient(ctx context.Context, clientID int64) ([]subscription.Payment, error) {
	rows, err := r.pool.Query(ctx, paymentsForClientSQL, clientID)
	if err != nil {
		return nil, fmt.Errorf("listing payments of client %d: %w", clientID, err)
	}
	return pgx.CollectRows(rows, scanPayment)
}

func (r *SubscriptionRepository) PaymentForClient(ctx context.Context, clientID, paymentID int64) (*subscription.Payment, error) {
	rows, err := r.pool.Query(ctx, paymentForClientSQL, clientID, paymentID)
	if err != nil {
		return nil, fmt.Errorf("getting payment %d: %w", paymentID, err)
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanPayment)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, subscription.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("getting payment %d: %w", paymentID, err)
	}
	return &p, nil
}

// ListAll returns every subscription with its client, plan and latest
// payment.
func (r *SubscriptionRepository) ListAll(ctx context.Context) ([]subscription.Subscription, error) {
	rows, err := r.pool.Query(ctx, listSubscriptionsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing subscriptions: %w", err)
	}
	return pgx.CollectRows(rows, scanSubscriptionView)
}

// Delete removes the subscription and its payments in one transaction.
func (r *SubscriptionRepository) Delete(ctx context.Context, id int64) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, deleteSubscriptionPaymentsSQL, id); err != nil {
			return fmt.Errorf("deleting payments of subscription %d: %w", id, err)
		}
		tag, err := tx.Exec(ctx, deleteSubscriptionSQL, id)
		if err != nil {
			return fmt.Errorf("deleting subscription %d: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return subscription.ErrNotFound
		}
		return nil
	})
}

// SetStatus updates the subscription and its payments in one transaction.
// Both must exist.
func (r *SubscriptionRepository) SetStatus(ctx context.Context, id int64, active bool, paymentStatus string) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, setSubscriptionActiveSQL, active, id)
		if err != nil {
			return fmt.Errorf("updating subscription %d: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return subscription.ErrNotFound
		}

		tag, err = tx.Exec(ctx, setPaymentStatusSQL, paymentStatus, id)
		if err != nil {
			return fmt.Errorf("updating payment of subscription %d: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return subscription.ErrPaymentNotFound
		}
		return nil
	})
}

func scanPlan(row pgx.CollectableRow) (subscription.Plan, error) {
	var p subscription.Plan
	err := row.Scan(&p.ID, &p.PlanName, &p.Description, &p.DurationMonths, &p.Price)
	return p, err
}

func scanPayment(row pgx.CollectableRow) (subscription.Payment, error) {
	var p subscription.Payment
	err := row.Scan(&p.ID, &p.ClientID, &p.SubscriptionID, &p.Amount, &p.PaymentDate, &p.Method, &p.Status, &p.TransactionRef)
	return p, err
}

func scanSubscriptionView(row pgx.CollectableRow) (subscription.Subscription, error) {
	var (
		s      subscription.Subscription
		plan   subscription.Plan
		payID  *int64
		amount *decimal.Decimal
		paidAt *time.Time
		method *string
		status *string
		ref    *string
	)
	err := row.Scan(&s.ID, &s.ClientID, &s.PlanID, &s.StartDate, &s.EndDate, &s.IsActive,
		&s.ClientName, &s.ClientEmail,
		&plan.ID, &plan.PlanName, &plan.Description, &plan.DurationMonths, &plan.Price,
		&payID, &amount, &paidAt, &method, &status, &ref)
	if err != nil {
		return s, err
	}
	s.Plan = &plan
	if payID != nil {
		s.Payment = &subscription.Payment{
			ID:             *payID,
			ClientID:       s.ClientID,
			SubscriptionID: s.ID,
			Amount:         *amount,
			PaymentDate:    *paidAt,
			Method:         *method,
			Status:         *status,
			TransactionRef: *ref,
		}
	}
	return s, nil
}
