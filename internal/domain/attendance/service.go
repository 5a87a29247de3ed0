package attendance

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/efitness/internal/domain/calendar"
	"github.com/xenking/efitness/internal/events"
)

// RecentLimit is the number of records in a client's attendance view.
const RecentLimit = 7

// Service runs the per-day check-in/check-out state machine.
type Service struct {
	store     Store
	publisher events.Publisher
	now       calendar.Clock
}

// NewService creates an attendance Service.
func NewService(store Store, publisher events.Publisher, now calendar.Clock) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, publisher: publisher, now: now}
}

// CheckIn records the client's arrival for the current business day.
func (s *Service) CheckIn(ctx context.Context, clientID int64, method string) (*Record, error) {
	now := s.now().UTC()
	day := calendar.Day(now)

	existing, err := s.store.ForDay(ctx, clientID, day)
	if err != nil {
		return nil, errors.Wrap(err, "get today's record")
	}
	if existing.State() != NotCheckedIn {
		return nil, ErrAlreadyCheckedIn
	}

	method = strings.TrimSpace(method)
	if method == "" {
		method = MethodManual
	}
	r := &Record{
		ClientID:     clientID,
		CheckInAt:    now,
		Method:       method,
		BusinessDate: day,
	}
	id, err := s.store.Create(ctx, r)
	if err != nil {
		return nil, err
	}
	r.ID = id

	if err := s.publisher.Publish(ctx, events.Event{
		Type:    events.AttendanceCheckedIn,
		Key:     strconv.FormatInt(clientID, 10),
		Time:    now,
		Payload: checkedInEvent(*r),
	}); err != nil {
		zctx.From(ctx).Warn("Publish attendance event", zap.Int64("client_id", clientID), zap.Error(err))
	}
	return r, nil
}

// CheckOut closes the client's record for the current business day.
func (s *Service) CheckOut(ctx context.Context, clientID int64) (*Record, error) {
	now := s.now().UTC()

	r, err := s.store.ForDay(ctx, clientID, calendar.Day(now))
	if err != nil {
		return nil, errors.Wrap(err, "get today's record")
	}
	switch r.State() {
	case NotCheckedIn:
		return nil, ErrNoCheckIn
	case CheckedOut:
		return nil, ErrAlreadyCheckedOut
	}
	if now.Before(r.CheckInAt) {
		return nil, ErrCheckOutTooEarly
	}

	ok, err := s.store.SetCheckOut(ctx, r.ID, now)
	if err != nil {
		return nil, errors.Wrap(err, "set check-out")
	}
	if !ok {
		return nil, ErrAlreadyCheckedOut
	}
	r.CheckOutAt = &now
	return r, nil
}

// Recent returns the client's latest records.
func (s *Service) Recent(ctx context.Context, clientID int64) ([]Record, error) {
	records, err := s.store.Recent(ctx, clientID, RecentLimit)
	if err != nil {
		return nil, errors.Wrap(err, "list attendance")
	}
	return records, nil
}

// Counts returns visit counts per client.
func (s *Service) Counts(ctx context.Context) ([]ClientCount, error) {
	counts, err := s.store.Counts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "count attendance")
	}
	return counts, nil
}

// ListAll returns every record, newest first.
func (s *Service) ListAll(ctx context.Context) ([]Record, error) {
	records, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list attendance")
	}
	return records, nil
}

// CheckIns returns a client's check-ins, newest first.
func (s *Service) CheckIns(ctx context.Context, clientID int64) ([]Record, error) {
	records, err := s.store.CheckIns(ctx, clientID)
	if err != nil {
		return nil, errors.Wrap(err, "list check-ins")
	}
	return records, nil
}

// CheckOuts returns a client's completed visits, newest check-out first.
func (s *Service) CheckOuts(ctx context.Context, clientID int64) ([]Record, error) {
	records, err := s.store.CheckOuts(ctx, clientID)
	if err != nil {
		return nil, errors.Wrap(err, "list check-outs")
	}
	return records, nil
}

type checkedInEvent Record

func (r checkedInEvent) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("attendanceId", func(e *jx.Encoder) { e.Int64(r.ID) })
		e.Field("clientId", func(e *jx.Encoder) { e.Int64(r.ClientID) })
		e.Field("checkInAt", func(e *jx.Encoder) { e.Str(r.CheckInAt.Format(time.RFC3339)) })
		e.Field("businessDate", func(e *jx.Encoder) { e.Str(r.BusinessDate.Format(time.DateOnly)) })
		e.Field("method", func(e *jx.Encoder) { e.Str(r.Method) })
	})
}
