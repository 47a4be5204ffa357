package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActivityLive      = "live"
	ActivityCompleted = "completed"
)

type Course struct {
	ID              uuid.UUID     `json:"id"`
	ExpertID        uuid.UUID     `json:"expert_id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	Status          string        `json:"status"`
	RejectionReason string        `json:"rejection_reason,omitempty"`
	ActivityStatus  string        `json:"activity_status"`
	Pricing         PriceSnapshot `json:"pricing"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}
