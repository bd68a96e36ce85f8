package activities

import (
	"context"
	"database/sql"
	"fmt"
)

// ActivityRepository defines the data access contract for activities.
type ActivityRepository interface {
	Create(ctx context.Context, a *Activity) error
	ListForUser(ctx context.Context, userID string) ([]Activity, error)
}

// activityRepository implements ActivityRepository with hand-written
// MariaDB queries.
type activityRepository struct {
	db *sql.DB
}

// NewActivityRepository creates a repository backed by the given DB pool.
func NewActivityRepository(db *sql.DB) ActivityRepository {
	return &activityRepository{db: db}
}

// Create inserts a new activity row.
func (r *activityRepository) Create(ctx context.Context, a *Activity) error {
	query := `INSERT INTO activities (id, user_id, challenge_id, description, points, created_at)
	          VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.UserID,
		a.ChallengeID,
		a.Description,
		a.Points,
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting activity: %w", err)
	}

	return nil
}

// ListForUser returns all activities logged by a user, newest first.
func (r *activityRepository) ListForUser(ctx context.Context, userID string) ([]Activity, error) {
	query := `SELECT id, user_id, challenge_id, description, points, created_at
	          FROM activities WHERE user_id = ? ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}
	defer rows.Close()

	var list []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.ChallengeID, &a.Description, &a.Points, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning activity row: %w", err)
		}
		list = append(list, a)
	}

	return list, rows.Err()
}
