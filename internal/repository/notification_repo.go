package repository

import (
	"context"
	"fmt"

	"github.com/drovers/stockyard/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// NotificationRepository handles notification and audit rows. Notifications
// are written inside the transaction of the event that produced them and
// dispatched later by the scheduler's notify loop.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a pending notification. When tx is non-nil the row commits
// with the event that produced it.
func (r *NotificationRepository) Create(ctx context.Context, tx *sqlx.Tx, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, kind, auction_id, body, status, created_at)
		VALUES (:id, :user_id, :kind, :auction_id, :body, :status, :created_at)`
	var err error
	if tx != nil {
		_, err = tx.NamedExecContext(ctx, query, n)
	} else {
		_, err = r.db.NamedExecContext(ctx, query, n)
	}
	if err != nil {
		return fmt.Errorf("notification_repo.Create: %w", err)
	}
	return nil
}

// ListPending returns undispatched notifications in creation order, capped
// at limit per dispatch round.
func (r *NotificationRepository) ListPending(ctx context.Context, limit int) ([]*domain.Notification, error) {
	var ns []*domain.Notification
	err := r.db.SelectContext(ctx, &ns,
		`SELECT * FROM notifications WHERE status = 'pending' ORDER BY created_at ASC LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("notification_repo.ListPending: %w", err)
	}
	return ns, nil
}

// MarkSent flips a notification to sent. Guarded on status='pending' so
// overlapping dispatch rounds never double-send.
func (r *NotificationRepository) MarkSent(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET status = 'sent' WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return false, fmt.Errorf("notification_repo.MarkSent: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ListByUser returns a user's notifications, newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Notification, error) {
	var ns []*domain.Notification
	err := r.db.SelectContext(ctx, &ns,
		`SELECT * FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("notification_repo.ListByUser: %w", err)
	}
	return ns, nil
}

// MarkRead stamps read_at for one of the user's notifications.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read_at = now() WHERE id = $1 AND user_id = $2 AND read_at IS NULL`,
		id, userID)
	if err != nil {
		return fmt.Errorf("notification_repo.MarkRead: %w", err)
	}
	return nil
}
