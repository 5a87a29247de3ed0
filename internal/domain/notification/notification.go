package notification

import (
	"context"
	"time"

	"github.com/xenking/efitness/internal/domain/apperr"
)

// TypeSystem is the default notification type.
const TypeSystem = "System"

var (
	ErrNotFound         = apperr.NotFound("notification not found")
	ErrReceiverNotFound = apperr.NotFound("receiver client not found")
	ErrFeedbackNotFound = apperr.NotFound("feedback not found")
	ErrMissingFields    = apperr.Validation("receiver id, title and message are required")
	ErrInvalidRating    = apperr.Validation("rating must be between 1 and 5")
)

// Notification is a message addressed to one principal.
type Notification struct {
	ID           int64
	SenderID     int64
	SenderRole   string
	ReceiverID   int64
	ReceiverRole string
	Title        string
	Message      string
	Type         string
	ActionLink   *string
	IsRead       bool
	CreatedAt    time.Time
}

// Feedback is a rated message from a client or trainer.
type Feedback struct {
	ID           int64
	SenderID     int64
	SenderRole   string
	SenderName   string
	FeedbackType string
	Subject      string
	Message      string
	Rating       int
	SubmittedAt  time.Time
}

// Store persists notifications and feedback.
type Store interface {
	Create(ctx context.Context, n *Notification) (int64, error)
	ForReceiver(ctx context.Context, role string, receiverID int64) ([]Notification, error)
	// MarkRead flags a notification only if it is addressed to the receiver.
	MarkRead(ctx context.Context, role string, receiverID, id int64) error

	CreateFeedback(ctx context.Context, f *Feedback) (int64, error)
	ListFeedback(ctx context.Context) ([]Feedback, error)
	DeleteFeedback(ctx context.Context, id int64) error
}
