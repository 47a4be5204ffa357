package models

import (
	"time"

	"github.com/google/uuid"
)

type BlogPost struct {
	ID              uuid.UUID `json:"id"`
	ExpertID        uuid.UUID `json:"expert_id"`
	Title           string    `json:"title"`
	Body            string    `json:"body"`
	CoverURL        string    `json:"cover_url,omitempty"`
	Status          string    `json:"status"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
