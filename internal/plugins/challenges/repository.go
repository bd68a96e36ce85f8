package challenges

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ecotrackapp/ecotrack/internal/apperror"
)

// ChallengeRepository defines the data access contract for challenges.
type ChallengeRepository interface {
	Create(ctx context.Context, ch *Challenge) error
	FindByID(ctx context.Context, id string) (*Challenge, error)
	List(ctx context.Context) ([]Challenge, error)
}

// challengeRepository implements ChallengeRepository with hand-written
// MariaDB queries.
type challengeRepository struct {
	db *sql.DB
}

// NewChallengeRepository creates a repository backed by the given DB pool.
func NewChallengeRepository(db *sql.DB) ChallengeRepository {
	return &challengeRepository{db: db}
}

// Create inserts a new challenge row.
func (r *challengeRepository) Create(ctx context.Context, ch *Challenge) error {
	query := `INSERT INTO challenges (id, title, description, start_date, end_date, created_by, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		ch.ID,
		ch.Title,
		ch.Description,
		ch.StartDate,
		ch.EndDate,
		ch.CreatedBy,
		ch.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting challenge: %w", err)
	}

	return nil
}

// FindByID retrieves a challenge by its UUID.
// Returns apperror.NotFound if no challenge exists with this ID.
func (r *challengeRepository) FindByID(ctx context.Context, id string) (*Challenge, error) {
	query := `SELECT id, title, description, start_date, end_date, created_by, created_at
	          FROM challenges WHERE id = ?`

	ch := &Challenge{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&ch.ID,
		&ch.Title,
		&ch.Description,
		&ch.StartDate,
		&ch.EndDate,
		&ch.CreatedBy,
		&ch.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("challenge not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying challenge by id: %w", err)
	}

	return ch, nil
}

// List returns all challenges, newest first.
func (r *challengeRepository) List(ctx context.Context) ([]Challenge, error) {
	query := `SELECT id, title, description, start_date, end_date, created_by, created_at
	          FROM challenges ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing challenges: %w", err)
	}
	defer rows.Close()

	var list []Challenge
	for rows.Next() {
		var ch Challenge
		if err := rows.Scan(
			&ch.ID, &ch.Title, &ch.Description, &ch.StartDate, &ch.EndDate, &ch.CreatedBy, &ch.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning challenge row: %w", err)
		}
		list = append(list, ch)
	}

	return list, rows.Err()
}
