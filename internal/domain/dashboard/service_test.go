package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	failOn string

	checkInDay   time.Time
	attendedFrom time.Time
	attendedTo   time.Time
	unreadRole   string
}

func (s *stubStore) fail(name string) error {
	if s.failOn == name {
		return errors.New(name + " failed")
	}
	return nil
}

func (s *stubStore) CountAccounts(_ context.Context, role string) (int64, error) {
	if role == "client" {
		return 40, s.fail("accounts")
	}
	return 4, s.fail("accounts")
}

func (s *stubStore) CountActiveSubscriptions(context.Context) (int64, error) { return 25, nil }

func (s *stubStore) ProductRevenue(context.Context) (decimal.Decimal, error) {
	return decimal.RequireFromString("1234.50"), s.fail("product revenue")
}

func (s *stubStore) SubscriptionRevenue(context.Context) (decimal.Decimal, error) {
	return decimal.RequireFromString("999.99"), nil
}

func (s *stubStore) CountOrdersWithStatus(_ context.Context, status string) (int64, error) {
	if status != "Pending" {
		return 0, errors.New("unexpected status")
	}
	return 3, nil
}

func (s *stubStore) CountCheckIns(_ context.Context, day time.Time) (int64, error) {
	s.checkInDay = day
	return 12, nil
}

func (s *stubStore) CountLowStock(_ context.Context, below int) (int64, error) {
	return int64(below), nil
}

func (s *stubStore) LatestWeight(context.Context, int64) (*decimal.Decimal, error) {
	w := decimal.RequireFromString("72.4")
	return &w, nil
}

func (s *stubStore) CountHealthLogs(context.Context, int64) (int64, error)                { return 9, nil }
func (s *stubStore) CountUnachievedGoals(context.Context, int64) (int64, error)           { return 2, nil }
func (s *stubStore) CountClientActiveSubscriptions(context.Context, int64) (int64, error) { return 1, nil }

func (s *stubStore) CountUnread(_ context.Context, role string, _ int64) (int64, error) {
	s.unreadRole = role
	return 5, nil
}

func (s *stubStore) CountDaysAttended(_ context.Context, _ int64, from, to time.Time) (int64, error) {
	s.attendedFrom, s.attendedTo = from, to
	return 14, nil
}

func (s *stubStore) TrainerProfile(context.Context, int64) (string, *string, error) {
	return "Alex Coach", nil, s.fail("trainer")
}

func (s *stubStore) CountWorkoutPlans(context.Context, int64) (int64, error)               { return 6, nil }
func (s *stubStore) CountUpcomingClasses(context.Context, int64, time.Time) (int64, error) { return 2, nil }
func (s *stubStore) CountClientsWithGoals(context.Context) (int64, error)                  { return 11, nil }
func (s *stubStore) AverageFeedbackRating(context.Context) (*float64, error)               { return nil, nil }

var fixedNow = func() time.Time { return time.Date(2024, 5, 10, 19, 0, 0, 0, time.UTC) }

func TestAdmin(t *testing.T) {
	store := &stubStore{}
	k, err := NewService(store, fixedNow).Admin(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(40), k.TotalClients)
	assert.Equal(t, int64(4), k.TotalTrainers)
	assert.Equal(t, int64(25), k.ActiveSubscriptions)
	assert.Equal(t, int64(3), k.PendingOrders)
	assert.Equal(t, int64(12), k.CheckInsToday)
	assert.Equal(t, int64(LowStockThreshold), k.LowStockProducts)
	assert.Equal(t, "1234.50", k.ProductRevenue.StringFixed(2))
	assert.Equal(t, "2024-05-11", store.checkInDay.Format(time.DateOnly))
}

func TestAdmin_Error(t *testing.T) {
	_, err := NewService(&stubStore{failOn: "product revenue"}, fixedNow).Admin(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "product revenue")
}

func TestClient(t *testing.T) {
	store := &stubStore{}
	k, err := NewService(store, fixedNow).Client(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, int64(7), k.ClientID)
	require.NotNil(t, k.LatestWeight)
	assert.Equal(t, "72.4", k.LatestWeight.String())
	assert.Equal(t, int64(14), k.DaysAttendedLast30)
	assert.Equal(t, "client", store.unreadRole)
	assert.Equal(t, "2024-04-12", store.attendedFrom.Format(time.DateOnly))
	assert.Equal(t, "2024-05-11", store.attendedTo.Format(time.DateOnly))
}

func TestTrainer(t *testing.T) {
	store := &stubStore{}
	k, err := NewService(store, fixedNow).Trainer(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, "Alex Coach", k.TrainerName)
	assert.Nil(t, k.AverageFeedbackRating)
	assert.Equal(t, int64(6), k.WorkoutPlansCreated)
	assert.Equal(t, "trainer", store.unreadRole)

	_, err = NewService(&stubStore{failOn: "trainer"}, fixedNow).Trainer(context.Background(), 3)
	require.Error(t, err)
}
