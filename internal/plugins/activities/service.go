package activities

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
	maxDescriptionLength = 500
	maxPoints            = 1000
)

// Notifier is the slice of the notifications service this plugin needs.
type Notifier interface {
	Create(ctx context.Context, input notifications.CreateInput) (*notifications.Notification, error)
}

// ActivityService defines the business logic contract for activities.
type ActivityService interface {
	// Create logs an activity for a user and sends them a confirmation
	// notification.
	Create(ctx context.Context, input CreateInput) (*Activity, error)

	// ListForUser returns the user's own activities, newest first.
	ListForUser(ctx context.Context, userID string) ([]Activity, error)
}

// activityService implements ActivityService.
type activityService struct {
	repo     ActivityRepository
	notifier Notifier
}

// NewActivityService creates the activity service.
func NewActivityService(repo ActivityRepository, notifier Notifier) ActivityService {
	return &activityService{repo: repo, notifier: notifier}
}

// Create validates and stores the activity, then confirms it to the user.
// The confirmation is best-effort: a notification failure is logged, not
// returned, because the activity itself was recorded.
func (s *activityService) Create(ctx context.Context, input CreateInput) (*Activity, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, apperror.NewValidation("description is required")
	}
	if len(description) > maxDescriptionLength {
		return nil, apperror.NewValidation("description is too long")
	}
	if input.Points < 0 || input.Points > maxPoints {
		return nil, apperror.NewValidation("points must be between 0 and 1000")
	}

	a := &Activity{
		ID:          uuid.NewString(),
		UserID:      input.UserID,
		ChallengeID: input.ChallengeID,
		Description: description,
		Points:      input.Points,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	if _, err := s.notifier.Create(ctx, notifications.CreateInput{
		UserID:  &a.UserID,
		Message: "Activity logged: " + a.Description,
	}); err != nil {
		slog.Error("failed to confirm activity",
			slog.String("activity_id", a.ID),
			slog.Any("error", err),
		)
	}

	return a, nil
}

// ListForUser returns the user's own activities, newest first.
func (s *activityService) ListForUser(ctx context.Context, userID string) ([]Activity, error) {
	return s.repo.ListForUser(ctx, userID)
}
