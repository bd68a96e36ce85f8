package notifications

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ecotrackapp/ecotrack/internal/apperror"
)

const (
	// maxMessageLength bounds notification messages.
	maxMessageLength = 500

	// defaultListLimit caps how many notifications a list call returns.
	defaultListLimit = 100
)

// Publisher delivers a notification to live connections. Satisfied by
// *realtime.Broker; the indirection keeps this package free of a websocket
// dependency and lets tests observe publishes.
type Publisher interface {
	Publish(userID *string, notification any)
}

// NotificationService defines the business logic contract for notifications.
type NotificationService interface {
	// Create persists a notification and then hands it to the publisher.
	// A nil userID creates a broadcast.
	Create(ctx context.Context, input CreateInput) (*Notification, error)

	// ListForUser returns the newest notifications visible to a user.
	ListForUser(ctx context.Context, userID string) ([]Notification, error)
}

// notificationService implements NotificationService.
type notificationService struct {
	repo      NotificationRepository
	publisher Publisher
}

// NewNotificationService creates the notification service.
func NewNotificationService(repo NotificationRepository, publisher Publisher) NotificationService {
	return &notificationService{repo: repo, publisher: publisher}
}

// Create validates, persists, then publishes. The publish step is
// fire-and-forget: the broker never blocks and delivers only to clients
// connected right now, so the row in the database is the durable record.
func (s *notificationService) Create(ctx context.Context, input CreateInput) (*Notification, error) {
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, apperror.NewValidation("message is required")
	}
	if len(message) > maxMessageLength {
		return nil, apperror.NewValidation("message is too long")
	}

	n := &Notification{
		ID:        uuid.NewString(),
		UserID:    input.UserID,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	s.publisher.Publish(n.UserID, n)

	slog.Debug("notification created",
		slog.String("notification_id", n.ID),
		slog.Bool("broadcast", n.UserID == nil),
	)
	return n, nil
}

// ListForUser returns targeted notifications plus broadcasts, newest first.
func (s *notificationService) ListForUser(ctx context.Context, userID string) ([]Notification, error) {
	return s.repo.ListForUser(ctx, userID, defaultListLimit)
}
