package notifications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ecotrackapp/ecotrack/internal/apperror"
)

// NotificationRepository defines the data access contract for notification
// records. All SQL lives in the concrete implementation.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	FindByID(ctx context.Context, id string) (*Notification, error)
	ListForUser(ctx context.Context, userID string, limit int) ([]Notification, error)
}

// notificationRepository implements NotificationRepository with hand-written
// MariaDB queries.
type notificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository creates a repository backed by the given DB pool.
func NewNotificationRepository(db *sql.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Create inserts a notification row. user_id is NULL for broadcasts.
func (r *notificationRepository) Create(ctx context.Context, n *Notification) error {
	query := `INSERT INTO notifications (id, user_id, message, created_at)
	          VALUES (?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, n.ID, n.UserID, n.Message, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}

	return nil
}

// FindByID retrieves a notification by its UUID.
// Returns apperror.NotFound if no notification exists with this ID.
func (r *notificationRepository) FindByID(ctx context.Context, id string) (*Notification, error) {
	query := `SELECT id, user_id, message, created_at
	          FROM notifications WHERE id = ?`

	n := &Notification{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&n.ID,
		&n.UserID,
		&n.Message,
		&n.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("notification not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying notification by id: %w", err)
	}

	return n, nil
}

// ListForUser returns the newest notifications visible to a user: their own
// targeted notifications plus broadcasts (user_id IS NULL).
func (r *notificationRepository) ListForUser(ctx context.Context, userID string, limit int) ([]Notification, error) {
	query := `SELECT id, user_id, message, created_at
	          FROM notifications
	          WHERE user_id = ? OR user_id IS NULL
	          ORDER BY created_at DESC
	          LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	var list []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning notification row: %w", err)
		}
		list = append(list, n)
	}

	return list, rows.Err()
}
