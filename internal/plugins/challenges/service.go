package challenges

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ecotrackapp/ecotrack/internal/apperror"
	"github.com/ecotrackapp/ecotrack/internal/plugins/notifications"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 2000
)

// Notifier is the slice of the notifications service this plugin needs.
type Notifier interface {
	Create(ctx context.Context, input notifications.CreateInput) (*notifications.Notification, error)
}

// ChallengeService defines the business logic contract for challenges.
type ChallengeService interface {
	// Create stores a new challenge and announces it to all connected
	// clients. Caller must already be authorized as an admin.
	Create(ctx context.Context, input CreateInput) (*Challenge, error)

	Get(ctx context.Context, id string) (*Challenge, error)
	List(ctx context.Context) ([]Challenge, error)
}

// challengeService implements ChallengeService.
type challengeService struct {
	repo     ChallengeRepository
	notifier Notifier
}

// NewChallengeService creates the challenge service.
func NewChallengeService(repo ChallengeRepository, notifier Notifier) ChallengeService {
	return &challengeService{repo: repo, notifier: notifier}
}

// Create validates and stores the challenge, then broadcasts an announcement.
// The announcement is best-effort: a failure to notify is logged, not
// returned, because the challenge itself was created successfully.
func (s *challengeService) Create(ctx context.Context, input CreateInput) (*Challenge, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperror.NewValidation("title is required")
	}
	if len(title) > maxTitleLength {
		return nil, apperror.NewValidation("title is too long")
	}
	if len(input.Description) > maxDescriptionLength {
		return nil, apperror.NewValidation("description is too long")
	}
	if !input.EndDate.IsZero() && input.EndDate.Before(input.StartDate) {
		return nil, apperror.NewValidation("end_date must not be before start_date")
	}

	ch := &Challenge{
		ID:          uuid.NewString(),
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		CreatedBy:   input.CreatedBy,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, ch); err != nil {
		return nil, err
	}

	if _, err := s.notifier.Create(ctx, notifications.CreateInput{
		Message: "New challenge: " + ch.Title,
	}); err != nil {
		slog.Error("failed to announce challenge",
			slog.String("challenge_id", ch.ID),
			slog.Any("error", err),
		)
	}

	return ch, nil
}

// Get returns a single challenge by id.
func (s *challengeService) Get(ctx context.Context, id string) (*Challenge, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns all challenges, newest first.
func (s *challengeService) List(ctx context.Context) ([]Challenge, error) {
	return s.repo.List(ctx)
}
