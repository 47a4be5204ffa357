package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SessionAvailable      = "available"
	SessionPendingPayment = "pending_payment"
	SessionBooked         = "booked"
	SessionCompleted      = "completed"
	SessionCancelled      = "cancelled"
)

const (
	RefundPending  = "pending"
	RefundApproved = "approved"
	RefundRejected = "rejected"
)

// PriceSnapshot is fixed at slot creation from the expert's rate card.
type PriceSnapshot struct {
	ExpertFee   int64  `json:"expert_fee"`
	PlatformFee int64  `json:"platform_fee"`
	Total       int64  `json:"total"`
	Currency    string `json:"currency"`
}

type FileRef struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type SessionNotes struct {
	Text  string    `json:"text"`
	Files []FileRef `json:"files"`
}

type Feedback struct {
	Rating      int    `json:"rating"`
	Heading     string `json:"heading"`
	Description string `json:"description"`
}

type Refund struct {
	Requested     bool      `json:"requested"`
	Reason        string    `json:"reason"`
	Documents     []FileRef `json:"documents"`
	Status        string    `json:"status"`
	AdminMessage  string    `json:"admin_message,omitempty"`
	Processed     bool      `json:"processed"`
	TransactionID string    `json:"transaction_id,omitempty"`
}

// Session is both an open availability slot and, once booked, the session
// itself. Date and times are wall-clock strings as entered by the expert.
type Session struct {
	ID             uuid.UUID     `json:"id"`
	ExpertID       uuid.UUID     `json:"expert_id"`
	Date           string        `json:"date"`
	StartTime      string        `json:"start_time"`
	EndTime        string        `json:"end_time"`
	State          string        `json:"state"`
	StudentID      *uuid.UUID    `json:"student_id,omitempty"`
	Title          string        `json:"title,omitempty"`
	MeetingLink    string        `json:"meeting_link,omitempty"`
	Pricing        PriceSnapshot `json:"pricing"`
	HoldExpiresAt  *time.Time    `json:"hold_expires_at,omitempty"`
	PaymentOrderID string        `json:"payment_order_id,omitempty"`
	TransactionID  string        `json:"transaction_id,omitempty"`
	Notes          *SessionNotes `json:"notes,omitempty"`
	Feedback       *Feedback     `json:"feedback,omitempty"`
	Refund         *Refund       `json:"refund,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

// StartedBefore reports whether the scheduled start has passed at the given
// instant. Unparseable schedules count as passed so a mistyped slot cannot
// block completion forever.
func (s *Session) StartedBefore(now time.Time) bool {
	start, err := time.ParseInLocation(dateTimeLayout, s.Date+" "+s.StartTime, now.Location())
	if err != nil {
		return true
	}
	return start.Before(now)
}

// HoldExpired reports whether a pending_payment hold has lapsed. Sessions in
// any other state never expire.
func (s *Session) HoldExpired(now time.Time) bool {
	return s.State == SessionPendingPayment && s.HoldExpiresAt != nil && s.HoldExpiresAt.Before(now)
}

// Bookable treats expired holds as available again.
func (s *Session) Bookable(now time.Time) bool {
	return s.State == SessionAvailable || s.HoldExpired(now)
}

func ValidSchedule(date, start, end string) bool {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return false
	}
	st, err := time.Parse("15:04", start)
	if err != nil {
		return false
	}
	en, err := time.Parse("15:04", end)
	if err != nil {
		return false
	}
	return st.Before(en)
}
