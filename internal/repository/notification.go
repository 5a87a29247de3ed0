package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/efitness/internal/domain/notification"
)

const (
	insertNotificationSQL = `INSERT INTO notifications (sender_id, sender_role, receiver_id, receiver_role,
			title, message, type, action_link)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`

	notificationsForReceiverSQL = `SELECT id, sender_id, sender_role, receiver_id, receiver_role,
			title, message, type, action_link, is_read, created_at
		FROM notifications WHERE receiver_role = $1 AND receiver_id = $2
		ORDER BY created_at DESC, id DESC`

	markNotificationReadSQL = `UPDATE notifications SET is_read = TRUE
		WHERE id = $1 AND receiver_role = $2 AND receiver_id = $3`

	insertFeedbackSQL = `INSERT INTO feedbacks (sender_id, sender_role, feedback_type, subject, message, rating)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	listFeedbackSQL = `SELECT f.id, f.sender_id, f.sender_role, COALESCE(a.full_name, ''),
			f.feedback_type, f.subject, f.message, COALESCE(f.rating, 0), f.submitted_at
		FROM feedbacks f
		LEFT JOIN accounts a ON a.id = f.sender_id AND a.role = f.sender_role
		ORDER BY f.submitted_at DESC, f.id DESC`

	deleteFeedbackSQL = `DELETE FROM feedbacks WHERE id = $1`
)

var _ notification.Store = (*NotificationRepository)(nil)

// NotificationRepository implements notification.Store backed by PostgreSQL.
type NotificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository returns a NotificationRepository that uses the
// given pool.
func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, insertNotificationSQL,
		n.SenderID, n.SenderRole, n.ReceiverID, n.ReceiverRole,
		n.Title, n.Message, n.Type, n.ActionLink,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting notification: %w", err)
	}
	return id, nil
}

func (r *NotificationRepository) ForReceiver(ctx context.Context, role string, receiverID int64) ([]notification.Notification, error) {
	rows, err := r.pool.Query(ctx, notificationsForReceiverSQL, role, receiverID)
	if err != nil {
		return nil, fmt.Errorf("listing notifications of %s %d: %w", role, receiverID, err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (notification.Notification, error) {
		var n notification.Notification
		err := row.Scan(&n.ID, &n.SenderID, &n.SenderRole, &n.ReceiverID, &n.ReceiverRole,
			&n.Title, &n.Message, &n.Type, &n.ActionLink, &n.IsRead, &n.CreatedAt)
		return n, err
	})
}

// MarkRead flags the notification only when it is addressed to the
// receiver.
func (r *NotificationRepository) MarkRead(ctx context.Context, role string, receiverID, id int64) error {
	tag, err := r.pool.Exec(ctx, markNotificationReadSQL, id, role, receiverID)
	if err != nil {
		return fmt.Errorf("marking notification %d read: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return notification.ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) CreateFeedback(ctx context.Context, f *notification.Feedback) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, insertFeedbackSQL,
		f.SenderID, f.SenderRole, f.FeedbackType, f.Subject, f.Message, f.Rating,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting feedback: %w", err)
	}
	return id, nil
}

// ListFeedback returns feedback newest first with the sender's name.
func (r *NotificationRepository) ListFeedback(ctx context.Context) ([]notification.Feedback, error) {
	rows, err := r.pool.Query(ctx, listFeedbackSQL)
	if err != nil {
		return nil, fmt.Errorf("listing feedback: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (notification.Feedback, error) {
		var f notification.Feedback
		err := row.Scan(&f.ID, &f.SenderID, &f.SenderRole, &f.SenderName,
			&f.FeedbackType, &f.Subject, &f.Message, &f.Rating, &f.SubmittedAt)
		return f, err
	})
}

func (r *NotificationRepository) DeleteFeedback(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteFeedbackSQL, id)
	if err != nil {
		return fmt.Errorf("deleting feedback %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return notification.ErrFeedbackNotFound
	}
	return nil
}
