// Package notifications manages notification records for EcoTrack users:
// creating them, listing them, and handing them to the realtime broker for
// delivery to connected clients. Persistence always happens before delivery,
// so a notification survives even when nobody is connected to receive it.
//
// This is a CORE plugin -- always enabled, cannot be disabled.
package notifications

import (
	"time"
)

// Notification is a single notification record. A nil UserID marks a
// broadcast visible to every user; otherwise the notification belongs to
// exactly one user.
type Notification struct {
	ID        string    `json:"id"`
	UserID    *string   `json:"user_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// --- Request DTOs (bound from HTTP requests) ---

// CreateNotificationRequest holds the data submitted to POST /api/notifications.
type CreateNotificationRequest struct {
	UserID  *string `json:"user_id"`
	Message string  `json:"message"`
}

// --- Service Input DTOs (passed from handler to service) ---

// CreateInput is the validated input for creating a notification.
type CreateInput struct {
	UserID  *string
	Message string
}
