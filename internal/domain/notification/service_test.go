package notification

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/efitness/internal/domain/apperr"
	"github.com/xenking/efitness/internal/events"
)

type mockStore struct {
	notifications map[int64]Notification
	feedback      map[int64]Feedback
}

func newMockStore() *mockStore {
	return &mockStore{
		notifications: make(map[int64]Notification),
		feedback:      make(map[int64]Feedback),
	}
}

func (m *mockStore) Create(_ context.Context, n *Notification) (int64, error) {
	id := int64(len(m.notifications) + 1)
	n.ID = id
	m.notifications[id] = *n
	return id, nil
}

func (m *mockStore) ForReceiver(_ context.Context, role string, receiverID int64) ([]Notification, error) {
	var out []Notification
	for _, n := range m.notifications {
		if n.ReceiverRole == role && n.ReceiverID == receiverID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockStore) MarkRead(_ context.Context, role string, receiverID, id int64) error {
	n, ok := m.notifications[id]
	if !ok || n.ReceiverRole != role || n.ReceiverID != receiverID {
		return ErrNotFound
	}
	n.IsRead = true
	m.notifications[id] = n
	return nil
}

func (m *mockStore) CreateFeedback(_ context.Context, f *Feedback) (int64, error) {
	id := int64(len(m.feedback) + 1)
	m.feedback[id] = *f
	return id, nil
}

func (m *mockStore) ListFeedback(context.Context) ([]Feedback, error) { return nil, nil }

func (m *mockStore) DeleteFeedback(_ context.Context, id int64) error {
	if _, ok := m.feedback[id]; !ok {
		return ErrFeedbackNotFound
	}
	delete(m.feedback, id)
	return nil
}

type clients map[int64]bool

// unreachableClient makes the lookup fail with a storage error.
const unreachableClient = 999

func (c clients) ClientExists(_ context.Context, id int64) error {
	if id == unreachableClient {
		return errors.New("db down")
	}
	if !c[id] {
		return apperr.NotFound("account not found")
	}
	return nil
}

type recorder struct{ got []events.Event }

func (r *recorder) Publish(_ context.Context, ev events.Event) error {
	r.got = append(r.got, ev)
	return nil
}

func TestSend(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	pub := &recorder{}
	svc := NewService(store, clients{5: true}, pub)

	_, err := svc.Send(ctx, SendRequest{ReceiverID: 5, Title: "Hi"})
	require.ErrorIs(t, err, ErrMissingFields)

	_, err = svc.Send(ctx, SendRequest{ReceiverID: 6, Title: "Hi", Message: "Welcome"})
	require.ErrorIs(t, err, ErrReceiverNotFound)

	id, err := svc.Send(ctx, SendRequest{SenderID: 1, SenderRole: "admin", ReceiverID: 5, Title: "Hi", Message: "Welcome"})
	require.NoError(t, err)
	n := store.notifications[id]
	assert.Equal(t, TypeSystem, n.Type)
	assert.Equal(t, "client", n.ReceiverRole)
	assert.Nil(t, n.ActionLink)
	require.Len(t, pub.got, 1)
	assert.Equal(t, events.NotificationSent, pub.got[0].Type)

	id, err = svc.Send(ctx, SendRequest{ReceiverID: 5, Title: "Promo", Message: "Sale", Type: "Offer", ActionLink: "/store"})
	require.NoError(t, err)
	require.NotNil(t, store.notifications[id].ActionLink)
	assert.Equal(t, "Offer", store.notifications[id].Type)
}

func TestSend_ClientLookupFailure(t *testing.T) {
	store := newMockStore()
	svc := NewService(store, clients{}, events.Noop{})
	_, err := svc.Send(context.Background(), SendRequest{ReceiverID: unreachableClient, Title: "x", Message: "y"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.NotErrorIs(t, err, ErrReceiverNotFound)
	assert.Empty(t, store.notifications)
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	svc := NewService(store, clients{5: true, 6: true}, events.Noop{})

	id, err := svc.Send(ctx, SendRequest{ReceiverID: 5, Title: "Hi", Message: "Welcome"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.MarkRead(ctx, 6, id), ErrNotFound)
	require.NoError(t, svc.MarkRead(ctx, 5, id))
	assert.True(t, store.notifications[id].IsRead)
}

func TestSubmitFeedback(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	svc := NewService(store, clients{}, events.Noop{})

	_, err := svc.SubmitFeedback(ctx, Feedback{Subject: "Gym", Message: "Great", Rating: 6})
	require.ErrorIs(t, err, ErrInvalidRating)

	_, err = svc.SubmitFeedback(ctx, Feedback{Subject: "", Message: "Great", Rating: 5})
	require.Error(t, err)

	id, err := svc.SubmitFeedback(ctx, Feedback{SenderID: 5, SenderRole: "client", Subject: "Gym", Message: "Great", Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, "General", store.feedback[id].FeedbackType)

	require.NoError(t, svc.DeleteFeedback(ctx, id))
	require.ErrorIs(t, svc.DeleteFeedback(ctx, id), ErrFeedbackNotFound)
}
