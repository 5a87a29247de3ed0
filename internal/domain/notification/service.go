package notification

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/efitness/internal/domain/apperr"
	"github.com/xenking/efitness/internal/events"
)

const receiverClient = "client"

// Clients checks that a client account exists.
type Clients interface {
	ClientExists(ctx context.Context, clientID int64) error
}

// SendRequest is an admin's message to a client.
type SendRequest struct {
	SenderID   int64
	SenderRole string
	ReceiverID int64
	Title      string
	Message    string
	Type       string
	ActionLink string
}

// Service sends notifications and collects feedback.
type Service struct {
	store     Store
	clients   Clients
	publisher events.Publisher
	now       func() time.Time
}

// NewService creates a notification Service.
func NewService(store Store, clients Clients, publisher events.Publisher) *Service {
	return &Service{store: store, clients: clients, publisher: publisher, now: time.Now}
}

// Send delivers a notification to a client.
func (s *Service) Send(ctx context.Context, req SendRequest) (int64, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Message = strings.TrimSpace(req.Message)
	if req.ReceiverID <= 0 || req.Title == "" || req.Message == "" {
		return 0, ErrMissingFields
	}
	if err := s.clients.ClientExists(ctx, req.ReceiverID); err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return 0, ErrReceiverNotFound
		}
		return 0, errors.Wrap(err, "check receiver")
	}

	n := &Notification{
		SenderID:     req.SenderID,
		SenderRole:   req.SenderRole,
		ReceiverID:   req.ReceiverID,
		ReceiverRole: receiverClient,
		Title:        req.Title,
		Message:      req.Message,
		Type:         strings.TrimSpace(req.Type),
	}
	if n.Type == "" {
		n.Type = TypeSystem
	}
	if link := strings.TrimSpace(req.ActionLink); link != "" {
		n.ActionLink = &link
	}

	id, err := s.store.Create(ctx, n)
	if err != nil {
		return 0, errors.Wrap(err, "create notification")
	}
	n.ID = id

	if err := s.publisher.Publish(ctx, events.Event{
		Type:    events.NotificationSent,
		Key:     strconv.FormatInt(n.ReceiverID, 10),
		Time:    s.now(),
		Payload: sentEvent(*n),
	}); err != nil {
		zctx.From(ctx).Warn("Publish notification event", zap.Int64("notification_id", id), zap.Error(err))
	}
	return id, nil
}

// Inbox returns the client's notifications, newest first.
func (s *Service) Inbox(ctx context.Context, clientID int64) ([]Notification, error) {
	out, err := s.store.ForReceiver(ctx, receiverClient, clientID)
	if err != nil {
		return nil, errors.Wrap(err, "list notifications")
	}
	return out, nil
}

// MarkRead flags one of the client's notifications as read.
func (s *Service) MarkRead(ctx context.Context, clientID, id int64) error {
	return s.store.MarkRead(ctx, receiverClient, clientID, id)
}

// SubmitFeedback stores feedback from a client or trainer.
func (s *Service) SubmitFeedback(ctx context.Context, f Feedback) (int64, error) {
	f.Subject = strings.TrimSpace(f.Subject)
	f.Message = strings.TrimSpace(f.Message)
	f.FeedbackType = strings.TrimSpace(f.FeedbackType)
	if f.Subject == "" || f.Message == "" {
		return 0, apperr.Validation("subject and message are required")
	}
	if f.Rating < 1 || f.Rating > 5 {
		return 0, ErrInvalidRating
	}
	if f.FeedbackType == "" {
		f.FeedbackType = "General"
	}
	id, err := s.store.CreateFeedback(ctx, &f)
	if err != nil {
		return 0, errors.Wrap(err, "create feedback")
	}
	return id, nil
}

// Feedback lists all feedback with sender names, newest first.
func (s *Service) Feedback(ctx context.Context) ([]Feedback, error) {
	out, err := s.store.ListFeedback(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list feedback")
	}
	return out, nil
}

// DeleteFeedback removes a feedback entry.
func (s *Service) DeleteFeedback(ctx context.Context, id int64) error {
	return s.store.DeleteFeedback(ctx, id)
}

type sentEvent Notification

func (n sentEvent) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("notificationId", func(e *jx.Encoder) { e.Int64(n.ID) })
		e.Field("receiverId", func(e *jx.Encoder) { e.Int64(n.ReceiverID) })
		e.Field("receiverRole", func(e *jx.Encoder) { e.Str(n.ReceiverRole) })
		e.Field("type", func(e *jx.Encoder) { e.Str(n.Type) })
		e.Field("title", func(e *jx.Encoder) { e.Str(n.Title) })
	})
}
