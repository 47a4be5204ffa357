package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	CohortUpcoming = "upcoming"
	CohortLive     = "live"
	CohortPast     = "past"
)

type Cohort struct {
	ID              uuid.UUID     `json:"id"`
	ExpertID        uuid.UUID     `json:"expert_id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	Status          string        `json:"status"`
	RejectionReason string        `json:"rejection_reason,omitempty"`
	StartDate       time.Time     `json:"start_date"`
	EndDate         time.Time     `json:"end_date"`
	Pricing         PriceSnapshot `json:"pricing"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Bucket classifies the cohort for display as upcoming, live or past.
// Purely date-derived, unlike course activity status.
func (c *Cohort) Bucket(now time.Time) string {
	switch {
	case now.Before(c.StartDate):
		return CohortUpcoming
	case now.After(c.EndDate):
		return CohortPast
	default:
		return CohortLive
	}
}
