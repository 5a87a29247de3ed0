// Package dashboard computes per-role KPI summaries from independent
// aggregate queries.
package dashboard

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// LowStockThreshold is the stock level below which a product counts as low.
const LowStockThreshold = 5

// AdminKPIs summarises the whole club.
type AdminKPIs struct {
	TotalClients        int64
	TotalTrainers       int64
	ActiveSubscriptions int64
	ProductRevenue      decimal.Decimal
	SubscriptionRevenue decimal.Decimal
	PendingOrders       int64
	CheckInsToday       int64
	LowStockProducts    int64
}

// ClientKPIs summarises one client.
type ClientKPIs struct {
	ClientID            int64
	LatestWeight        *decimal.Decimal
	HealthLogsSubmitted int64
	UnachievedGoals     int64
	ActiveSubscriptions int64
	UnreadNotifications int64
	DaysAttendedLast30  int64
}

// TrainerKPIs summarises one trainer.
type TrainerKPIs struct {
	TrainerID             int64
	TrainerName           string
	IntroVideoURL         *string
	WorkoutPlansCreated   int64
	UpcomingClasses       int64
	ClientsWithGoals      int64
	AverageFeedbackRating *float64
	UnreadNotifications   int64
}

// Store runs the aggregate queries. Each method is independent and safe to
// call concurrently.
type Store interface {
	CountAccounts(ctx context.Context, role string) (int64, error)
	CountActiveSubscriptions(ctx context.Context) (int64, error)
	ProductRevenue(ctx context.Context) (decimal.Decimal, error)
	SubscriptionRevenue(ctx context.Context) (decimal.Decimal, error)
	CountOrdersWithStatus(ctx context.Context, status string) (int64, error)
	CountCheckIns(ctx context.Context, day time.Time) (int64, error)
	CountLowStock(ctx context.Context, below int) (int64, error)

	LatestWeight(ctx context.Context, clientID int64) (*decimal.Decimal, error)
	CountHealthLogs(ctx context.Context, clientID int64) (int64, error)
	CountUnachievedGoals(ctx context.Context, clientID int64) (int64, error)
	CountClientActiveSubscriptions(ctx context.Context, clientID int64) (int64, error)
	CountUnread(ctx context.Context, role string, receiverID int64) (int64, error)
	CountDaysAttended(ctx context.Context, clientID int64, from, to time.Time) (int64, error)

	TrainerProfile(ctx context.Context, trainerID int64) (name string, introVideoURL *string, err error)
	CountWorkoutPlans(ctx context.Context, trainerID int64) (int64, error)
	CountUpcomingClasses(ctx context.Context, trainerID int64, after time.Time) (int64, error)
	CountClientsWithGoals(ctx context.Context) (int64, error)
	AverageFeedbackRating(ctx context.Context) (*float64, error)
}
