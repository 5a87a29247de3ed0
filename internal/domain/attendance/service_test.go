package attendance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/efitness/internal/domain/apperr"
	"github.com/xenking/efitness/internal/events"
)

type memStore struct {
	mu      sync.Mutex
	records []Record
}

func (m *memStore) Create(_ context.Context, r *Record) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.records {
		if x.ClientID == r.ClientID && x.BusinessDate.Equal(r.BusinessDate) {
			return 0, ErrAlreadyCheckedIn
		}
	}
	cp := *r
	cp.ID = int64(len(m.records) + 1)
	m.records = append(m.records, cp)
	return cp.ID, nil
}

func (m *memStore) ForDay(_ context.Context, clientID int64, day time.Time) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.records {
		if x.ClientID == clientID && x.BusinessDate.Equal(day) {
			return &x, nil
		}
	}
	return nil, nil
}

func (m *memStore) SetCheckOut(_ context.Context, id int64, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].ID == id {
			if m.records[i].CheckOutAt != nil {
				return false, nil
			}
			m.records[i].CheckOutAt = &at
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) Recent(context.Context, int64, int) ([]Record, error) { return m.records, nil }
func (m *memStore) Counts(context.Context) ([]ClientCount, error)        { return nil, nil }
func (m *memStore) ListAll(context.Context) ([]Record, error)            { return m.records, nil }
func (m *memStore) CheckIns(context.Context, int64) ([]Record, error)    { return nil, nil }
func (m *memStore) CheckOuts(context.Context, int64) ([]Record, error)   { return nil, nil }

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestService(at time.Time) (*Service, *memStore, *clock) {
	store := &memStore{}
	c := &clock{t: at}
	return NewService(store, events.Noop{}, c.now), store, c
}

func TestCheckIn(t *testing.T) {
	ctx := context.Background()
	svc, store, c := newTestService(time.Date(2024, 5, 10, 3, 0, 0, 0, time.UTC))

	r, err := svc.CheckIn(ctx, 1, "")
	require.NoError(t, err)
	assert.Equal(t, MethodManual, r.Method)
	assert.Equal(t, "2024-05-10", r.BusinessDate.Format(time.DateOnly))

	c.t = c.t.Add(4 * time.Hour)
	_, err = svc.CheckIn(ctx, 1, "QR")
	require.ErrorIs(t, err, ErrAlreadyCheckedIn)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Len(t, store.records, 1)

	_, err = svc.CheckIn(ctx, 2, "QR")
	require.NoError(t, err)
	assert.Len(t, store.records, 2)
}

func TestCheckIn_BusinessDayBoundary(t *testing.T) {
	ctx := context.Background()
	svc, store, c := newTestService(time.Date(2024, 5, 10, 17, 59, 0, 0, time.UTC))

	_, err := svc.CheckIn(ctx, 1, "")
	require.NoError(t, err)

	c.t = time.Date(2024, 5, 10, 18, 0, 0, 0, time.UTC)
	r, err := svc.CheckIn(ctx, 1, "")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-11", r.BusinessDate.Format(time.DateOnly))
	assert.Len(t, store.records, 2)
}

func TestCheckIn_ConcurrentSingleRecord(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.CheckIn(ctx, 1, "")
		}()
	}
	wg.Wait()
	assert.Len(t, store.records, 1)
}

func TestCheckOut(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 5, 10, 3, 0, 0, 0, time.UTC)

	t.Run("without check-in", func(t *testing.T) {
		svc, _, _ := newTestService(start)
		_, err := svc.CheckOut(ctx, 1)
		require.ErrorIs(t, err, ErrNoCheckIn)
	})

	t.Run("happy path then repeat", func(t *testing.T) {
		svc, _, c := newTestService(start)
		_, err := svc.CheckIn(ctx, 1, "")
		require.NoError(t, err)

		c.t = start.Add(90 * time.Minute)
		r, err := svc.CheckOut(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, r.CheckOutAt)
		assert.Equal(t, CheckedOut, r.State())
		assert.True(t, r.CheckOutAt.Equal(c.t))

		_, err = svc.CheckOut(ctx, 1)
		require.ErrorIs(t, err, ErrAlreadyCheckedOut)

		_, err = svc.CheckIn(ctx, 1, "")
		require.ErrorIs(t, err, ErrAlreadyCheckedIn)
	})

	t.Run("clock behind check-in", func(t *testing.T) {
		svc, _, c := newTestService(start)
		_, err := svc.CheckIn(ctx, 1, "")
		require.NoError(t, err)

		c.t = start.Add(-time.Minute)
		_, err = svc.CheckOut(ctx, 1)
		require.ErrorIs(t, err, ErrCheckOutTooEarly)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("previous day record does not count", func(t *testing.T) {
		svc, _, c := newTestService(start)
		_, err := svc.CheckIn(ctx, 1, "")
		require.NoError(t, err)

		c.t = start.Add(24 * time.Hour)
		_, err = svc.CheckOut(ctx, 1)
		require.ErrorIs(t, err, ErrNoCheckIn)
	})
}

func TestRecordState(t *testing.T) {
	var r *Record
	assert.Equal(t, NotCheckedIn, r.State())
	assert.Equal(t, CheckedIn, (&Record{}).State())
	now := time.Now()
	assert.Equal(t, CheckedOut, (&Record{CheckOutAt: &now}).State())
}
