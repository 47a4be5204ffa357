package models

import (
	"time"

	"github.com/google/uuid"
)

// RateCard is the fee split set by an admin when the expert is approved.
// It is copied as a snapshot into every slot, course and cohort the expert
// creates and never recomputed retroactively.
type RateCard struct {
	SessionFee  int64  `json:"session_fee"`
	PlatformFee int64  `json:"platform_fee"`
	Currency    string `json:"currency"`
}

type Expert struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	Headline        string    `json:"headline"`
	Bio             string    `json:"bio"`
	Status          string    `json:"status"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	RateCard        RateCard  `json:"rate_card"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (e *Expert) Approved() bool {
	return e.Status == ApprovalApproved
}
