package dashboard

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/efitness/internal/domain/calendar"
)

const attendanceWindowDays = 30

// Service computes dashboards.
type Service struct {
	store Store
	now   calendar.Clock
}

// NewService creates a dashboard Service.
func NewService(store Store, now calendar.Clock) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, now: now}
}

func count(ctx context.Context, g *errgroup.Group, name string, dst *int64, fn func(ctx context.Context) (int64, error)) {
	g.Go(func() error {
		v, err := fn(ctx)
		if err != nil {
			return errors.Wrap(err, name)
		}
		*dst = v
		return nil
	})
}

// Admin returns club-wide KPIs.
func (s *Service) Admin(ctx context.Context) (*AdminKPIs, error) {
	var k AdminKPIs
	today := calendar.Day(s.now())

	g, ctx := errgroup.WithContext(ctx)
	count(ctx, g, "clients", &k.TotalClients, func(ctx context.Context) (int64, error) {
		return s.store.CountAccounts(ctx, "client")
	})
	count(ctx, g, "trainers", &k.TotalTrainers, func(ctx context.Context) (int64, error) {
		return s.store.CountAccounts(ctx, "trainer")
	})
	count(ctx, g, "active subscriptions", &k.ActiveSubscriptions, s.store.CountActiveSubscriptions)
	count(ctx, g, "pending orders", &k.PendingOrders, func(ctx context.Context) (int64, error) {
		return s.store.CountOrdersWithStatus(ctx, "Pending")
	})
	count(ctx, g, "check-ins today", &k.CheckInsToday, func(ctx context.Context) (int64, error) {
		return s.store.CountCheckIns(ctx, today)
	})
	count(ctx, g, "low stock", &k.LowStockProducts, func(ctx context.Context) (int64, error) {
		return s.store.CountLowStock(ctx, LowStockThreshold)
	})
	g.Go(func() error {
		v, err := s.store.ProductRevenue(ctx)
		if err != nil {
			return errors.Wrap(err, "product revenue")
		}
		k.ProductRevenue = v
		return nil
	})
	g.Go(func() error {
		v, err := s.store.SubscriptionRevenue(ctx)
		if err != nil {
			return errors.Wrap(err, "subscription revenue")
		}
		k.SubscriptionRevenue = v
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &k, nil
}

// Client returns KPIs for one client.
func (s *Service) Client(ctx context.Context, clientID int64) (*ClientKPIs, error) {
	k := ClientKPIs{ClientID: clientID}
	to := calendar.Day(s.now())
	from := to.AddDate(0, 0, -(attendanceWindowDays - 1))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		w, err := s.store.LatestWeight(ctx, clientID)
		if err != nil {
			return errors.Wrap(err, "latest weight")
		}
		k.LatestWeight = w
		return nil
	})
	count(ctx, g, "health logs", &k.HealthLogsSubmitted, func(ctx context.Context) (int64, error) {
		return s.store.CountHealthLogs(ctx, clientID)
	})
	count(ctx, g, "unachieved goals", &k.UnachievedGoals, func(ctx context.Context) (int64, error) {
		return s.store.CountUnachievedGoals(ctx, clientID)
	})
	count(ctx, g, "active subscriptions", &k.ActiveSubscriptions, func(ctx context.Context) (int64, error) {
		return s.store.CountClientActiveSubscriptions(ctx, clientID)
	})
	count(ctx, g, "unread notifications", &k.UnreadNotifications, func(ctx context.Context) (int64, error) {
		return s.store.CountUnread(ctx, "client", clientID)
	})
	count(ctx, g, "days attended", &k.DaysAttendedLast30, func(ctx context.Context) (int64, error) {
		return s.store.CountDaysAttended(ctx, clientID, from, to)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &k, nil
}

// Trainer returns KPIs for one trainer.
func (s *Service) Trainer(ctx context.Context, trainerID int64) (*TrainerKPIs, error) {
	k := TrainerKPIs{TrainerID: trainerID}
	now := s.now().UTC()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		name, video, err := s.store.TrainerProfile(ctx, trainerID)
		if err != nil {
			return errors.Wrap(err, "trainer profile")
		}
		k.TrainerName, k.IntroVideoURL = name, video
		return nil
	})
	count(ctx, g, "workout plans", &k.WorkoutPlansCreated, func(ctx context.Context) (int64, error) {
		return s.store.CountWorkoutPlans(ctx, trainerID)
	})
	count(ctx, g, "upcoming classes", &k.UpcomingClasses, func(ctx context.Context) (int64, error) {
		return s.store.CountUpcomingClasses(ctx, trainerID, now)
	})
	count(ctx, g, "clients with goals", &k.ClientsWithGoals, s.store.CountClientsWithGoals)
	count(ctx, g, "unread notifications", &k.UnreadNotifications, func(ctx context.Context) (int64, error) {
		return s.store.CountUnread(ctx, "trainer", trainerID)
	})
	g.Go(func() error {
		avg, err := s.store.AverageFeedbackRating(ctx)
		if err != nil {
			return errors.Wrap(err, "average rating")
		}
		k.AverageFeedbackRating = avg
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &k, nil
}
