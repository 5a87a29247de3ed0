package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/efitness/internal/domain/account"
	"github.com/xenking/efitness/internal/domain/dashboard"
)

const (
	countAccountsSQL            = `SELECT count(*) FROM accounts WHERE role = $1`
	countActiveSubscriptionsSQL = `SELECT count(*) FROM subscriptions WHERE is_active`
	productRevenueSQL           = `SELECT COALESCE(sum(amount), 0) FROM product_payments`
	subscriptionRevenueSQL      = `SELECT COALESCE(sum(amount), 0) FROM payments WHERE status = 'Completed'`
	countOrdersWithStatusSQL    = `SELECT count(*) FROM orders WHERE status = $1`
	countCheckInsSQL            = `SELECT count(*) FROM attendance WHERE business_date = $1`
	countLowStockSQL            = `SELECT count(*) FROM products WHERE is_active AND stock < $1`

	latestWeightSQL = `SELECT weight FROM health_logs WHERE client_id = $1
		ORDER BY log_date DESC, id DESC LIMIT 1`

	countHealthLogsSQL                = `SELECT count(*) FROM health_logs WHERE client_id = $1`
	countUnachievedGoalsSQL           = `SELECT count(*) FROM fitness_goals WHERE client_id = $1 AND NOT is_achieved`
	countClientActiveSubscriptionsSQL = `SELECT count(*) FROM subscriptions WHERE client_id = $1 AND is_active`

	countUnreadSQL = `SELECT count(*) FROM notifications
		WHERE receiver_role = $1 AND receiver_id = $2 AND NOT is_read`

	countDaysAttendedSQL = `SELECT count(DISTINCT business_date) FROM attendance
		WHERE client_id = $1 AND business_date BETWEEN $2 AND $3`

	trainerProfileSQL        = `SELECT full_name, intro_video_url FROM accounts WHERE role = 'trainer' AND id = $1`
	countWorkoutPlansSQL     = `SELECT count(*) FROM workout_plans WHERE trainer_id = $1`
	countUpcomingClassesSQL  = `SELECT count(*) FROM virtual_classes WHERE trainer_id = $1 AND start_time > $2`
	countClientsWithGoalsSQL = `SELECT count(DISTINCT client_id) FROM fitness_goals`
	averageFeedbackSQL       = `SELECT avg(rating)::float8 FROM feedbacks WHERE rating IS NOT NULL`
)

var _ dashboard.Store = (*DashboardRepository)(nil)

// DashboardRepository implements dashboard.Store with one aggregate query per
// figure. Every method borrows its own pooled connection, so the methods can
// run concurrently.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository returns a DashboardRepository that uses the given
// pool.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

func (r *DashboardRepository) count(ctx context.Context, sql string, args ...any) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting: %w", err)
	}
	return n, nil
}

func (r *DashboardRepository) sum(ctx context.Context, sql string) (decimal.Decimal, error) {
	var d decimal.Decimal
	if err := r.pool.QueryRow(ctx, sql).Scan(&d); err != nil {
		return decimal.Zero, fmt.Errorf("summing: %w", err)
	}
	return d, nil
}

func (r *DashboardRepository) CountAccounts(ctx context.Context, role string) (int64, error) {
	return r.count(ctx, countAccountsSQL, role)
}

func (r *DashboardRepository) CountActiveSubscriptions(ctx context.Context) (int64, error) {
	return r.count(ctx, countActiveSubscriptionsSQL)
}

func (r *DashboardRepository) ProductRevenue(ctx context.Context) (decimal.Decimal, error) {
	return r.sum(ctx, productRevenueSQL)
}

func (r *DashboardRepository) SubscriptionRevenue(ctx context.Context) (decimal.Decimal, error) {
	return r.sum(ctx, subscriptionRevenueSQL)
}

func (r *DashboardRepository) CountOrdersWithStatus(ctx context.Context, status string) (int64, error) {
	return r.count(ctx, countOrdersWithStatusSQL, status)
}

func (r *DashboardRepository) CountCheckIns(ctx context.Context, day time.Time) (int64, error) {
	return r.count(ctx, countCheckInsSQL, day)
}

func (r *DashboardRepository) CountLowStock(ctx context.Context, below int) (int64, error) {
	return r.count(ctx, countLowStockSQL, below)
}

// LatestWeight returns nil when the client has no health log.
func (r *DashboardRepository) LatestWeight(ctx context.Context, clientID int64) (*decimal.Decimal, error) {
	var w decimal.Decimal
	err := r.pool.QueryRow(ctx, latestWeightSQL, clientID).Scan(&w)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting latest weight of client %d: %w", clientID, err)
	}
	return &w, nil
}

func (r *DashboardRepository) CountHealthLogs(ctx context.Context, clientID int64) (int64, error) {
	return r.count(ctx, countHealthLogsSQL, clientID)
}

func (r *DashboardRepository) CountUnachievedGoals(ctx context.Context, clientID int64) (int64, error) {
	return r.count(ctx, countUnachievedGoalsSQL, clientID)
}

func (r *DashboardRepository) CountClientActiveSubscriptions(ctx context.Context, clientID int64) (int64, error) {
	return r.count(ctx, countClientActiveSubscriptionsSQL, clientID)
}

func (r *DashboardRepository) CountUnread(ctx context.Context, role string, receiverID int64) (int64, error) {
	return r.count(ctx, countUnreadSQL, role, receiverID)
}

// CountDaysAttended counts distinct business dates in [from, to].
func (r *DashboardRepository) CountDaysAttended(ctx context.Context, clientID int64, from, to time.Time) (int64, error) {
	return r.count(ctx, countDaysAttendedSQL, clientID, from, to)
}

func (r *DashboardRepository) TrainerProfile(ctx context.Context, trainerID int64) (string, *string, error) {
	var (
		name string
		url  *string
	)
	err := r.pool.QueryRow(ctx, trainerProfileSQL, trainerID).Scan(&name, &url)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil, account.ErrNotFound
		}
		return "", nil, fmt.Errorf("getting trainer %d: %w", trainerID, err)
	}
	return name, url, nil
}

func (r *DashboardRepository) CountWorkoutPlans(ctx context.Context, trainerID int64) (int64, error) {
	return r.count(ctx, countWorkoutPlansSQL, trainerID)
}

func (r *DashboardRepository) CountUpcomingClasses(ctx context.Context, trainerID int64, after time.Time) (int64, error) {
	return r.count(ctx, countUpcomingClassesSQL, trainerID, after)
}

func (r *DashboardRepository) CountClientsWithGoals(ctx context.Context) (int64, error) {
	return r.count(ctx, countClientsWithGoalsSQL)
}

// AverageFeedbackRating returns nil when no rated feedback exists.
func (r *DashboardRepository) AverageFeedbackRating(ctx context.Context) (*float64, error) {
	var avg *float64
	if err := r.pool.QueryRow(ctx, averageFeedbackSQL).Scan(&avg); err != nil {
		return nil, fmt.Errorf("averaging feedback rating: %w", err)
	}
	return avg, nil
}
