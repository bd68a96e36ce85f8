// Package challenges manages EcoTrack's environmental challenges: time-boxed
// campaigns like "Plastic-free week" that users log activities against.
// Creation is restricted to administrators; a new challenge is announced to
// every connected client through the notifications plugin.
package challenges

import (
	"time"
)

// Challenge is a time-boxed environmental campaign.
type Challenge struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// --- Request DTOs (bound from HTTP requests) ---

// CreateChallengeRequest holds the data submitted to POST /api/challenges.
// Dates are RFC 3339 date strings ("2026-09-01").
type CreateChallengeRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

// --- Service Input DTOs (passed from handler to service) ---

// CreateInput is the validated input for creating a challenge.
type CreateInput struct {
	Title       string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	CreatedBy   string
}
