// Package activities manages EcoTrack activity logging: individual
// environmental actions a user records, optionally against a challenge.
// Logging an activity creates a confirmation notification targeted at the
// user who logged it.
package activities

import (
	"time"
)

// Activity is one logged environmental action.
type Activity struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ChallengeID *string   `json:"challenge_id"`
	Description string    `json:"description"`
	Points      int       `json:"points"`
	CreatedAt   time.Time `json:"created_at"`
}

// --- Request DTOs (bound from HTTP requests) ---

// CreateActivityRequest holds the data submitted to POST /api/activities.
type CreateActivityRequest struct {
	ChallengeID *string `json:"challenge_id"`
	Description string  `json:"description"`
	Points      int     `json:"points"`
}

// --- Service Input DTOs (passed from handler to service) ---

// CreateInput is the validated input for logging an activity.
type CreateInput struct {
	UserID      string
	ChallengeID *string
	Description string
	Points      int
}
