package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Indieguru/indieguru-website-sub000/internal/app_errors"
	"github.com/Indieguru/indieguru-website-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionPostgres struct {
	db *pgxpool.Pool
}

func NewSessionPostgres(db *pgxpool.Pool) *SessionPostgres {
	return &SessionPostgres{db: db}
}

const sessionColumns = `
	id, expert_id, date, start_time, end_time, state,
	student_id, title, meeting_link, pricing, hold_expires_at,
	payment_order_id, transaction_id, notes, feedback, refund,
	created_at, updated_at
`

func scanSession(row pgx.Row) (*models.Session, error) {
	s := &models.Session{}
	var pricing, notes, feedback, refund []byte
	err := row.Scan(
		&s.ID, &s.ExpertID, &s.Date, &s.StartTime, &s.EndTime, &s.State,
		&s.StudentID, &s.Title, &s.MeetingLink, &pricing, &s.HoldExpiresAt,
		&s.PaymentOrderID, &s.TransactionID, &notes, &feedback, &refund,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrSlotNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(pricing, &s.Pricing); err != nil {
		return nil, err
	}
	if notes != nil {
		if err := json.Unmarshal(notes, &s.Notes); err != nil {
			return nil, err
		}
	}
	if feedback != nil {
		if err := json.Unmarshal(feedback, &s.Feedback); err != nil {
			return nil, err
		}
	}
	if refund != nil {
		if err := json.Unmarshal(refund, &s.Refund); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (r *SessionPostgres) CreateSlot(ctx context.Context, slot *models.Session) (uuid.UUID, error) {
	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}
	now := time.Now().UTC()
	slot.CreatedAt = now
	slot.UpdatedAt = now

	pricing, err := json.Marshal(slot.Pricing)
	if err != nil {
		return uuid.Nil, err
	}
	query := `
		INSERT INTO sessions (id, expert_id, date, start_time, end_time, state, pricing, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING id
	`
	var id uuid.UUID
	err = r.db.QueryRow(ctx, query,
		slot.ID, slot.ExpertID, slot.Date, slot.StartTime, slot.EndTime,
		models.SessionAvailable, pricing, now,
	).Scan(&id)
	if err != nil {
		if pgErr := UnwrapPgError(err); pgErr != nil && pgErr.Code == "23505" {
			return uuid.Nil, app_errors.ErrSlotUnavailable
		}
		return uuid.Nil, err
	}
	return id, nil
}

func (r *SessionPostgres) SlotExists(ctx context.Context, expertID uuid.UUID, date, start, end string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM sessions
			WHERE expert_id = $1 AND date = $2 AND start_time = $3 AND end_time = $4
		)
	`
	var exists bool
	err := r.db.QueryRow(ctx, query, expertID, date, start, end).Scan(&exists)
	return exists, err
}

func (r *SessionPostgres) SessionByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	return scanSession(r.db.QueryRow(ctx, query, id))
}

func (r *SessionPostgres) SessionByOrderID(ctx context.Context, orderID string) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE payment_order_id = $1`
	return scanSession(r.db.QueryRow(ctx, query, orderID))
}

func (r *SessionPostgres) listSessions(ctx context.Context, query string, args ...any) ([]models.Session, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

func (r *SessionPostgres) ListByExpert(ctx context.Context, expertID uuid.UUID) ([]models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE expert_id = $1 ORDER BY date, start_time`
	return r.listSessions(ctx, query, expertID)
}

// ListAvailableByExpert reports open slots, counting lapsed payment holds as open.
func (r *SessionPostgres) ListAvailableByExpert(ctx context.Context, expertID uuid.UUID) ([]models.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE expert_id = $1
		  AND (state = $2 OR (state = $3 AND hold_expires_at < NOW()))
		ORDER BY date, start_time
	`
	return r.listSessions(ctx, query, expertID, models.SessionAvailable, models.SessionPendingPayment)
}

func (r *SessionPostgres) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE student_id = $1 ORDER BY date, start_time`
	return r.listSessions(ctx, query, studentID)
}

func (r *SessionPostgres) DeleteAvailable(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM sessions
		WHERE id = $1
		  AND (state = $2 OR (state = $3 AND hold_expires_at < NOW()))
	`
	cmdTag, err := r.db.Exec(ctx, query, id, models.SessionAvailable, models.SessionPendingPayment)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		if _, err := r.SessionByID(ctx, id); err != nil {
			return err
		}
		return app_errors.ErrSlotBooked
	}
	return nil
}

// HoldForBooking is the at-most-one-booking guard: a single conditional write
// that claims the slot only while it is available or its previous hold lapsed.
func (r *SessionPostgres) HoldForBooking(ctx context.Context, id, studentID uuid.UUID, title, orderID string, holdExpiresAt time.Time) error {
	query := `
		UPDATE sessions
		   SET state = $2, student_id = $3, title = $4,
		       payment_order_id = $5, hold_expires_at = $6, updated_at = NOW()
		 WHERE id = $1
		   AND (state = $7 OR (state = $2 AND hold_expires_at < NOW()))
	`
	cmdTag, err := r.db.Exec(ctx, query, id,
		models.SessionPendingPayment, studentID, title, orderID, holdExpiresAt,
		models.SessionAvailable,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		if _, err := r.SessionByID(ctx, id); err != nil {
			return err
		}
		return app_errors.ErrSlotUnavailable
	}
	return nil
}

// ConfirmBooking keys on the payment order id so a settlement for a lapsed,
// re-claimed hold cannot overwrite the new student's booking.
func (r *SessionPostgres) ConfirmBooking(ctx context.Context, id uuid.UUID, orderID, transactionID, meetingLink string) error {
	query := `
		UPDATE sessions
		   SET state = $2, transaction_id = $3, meeting_link = $4,
		       hold_expires_at = NULL, updated_at = NOW()
		 WHERE id = $1 AND state = $5 AND payment_order_id = $6
	`
	cmdTag, err := r.db.Exec(ctx, query, id,
		models.SessionBooked, transactionID, meetingLink,
		models.SessionPendingPayment, orderID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		if _, err := r.SessionByID(ctx, id); err != nil {
			return err
		}
		return app_errors.ErrHoldExpired
	}
	return nil
}

// ReleaseHold reverts an unpaid hold back to available.
func (r *SessionPostgres) ReleaseHold(ctx context.Context, id uuid.UUID, orderID string) error {
	query := `
		UPDATE sessions
		   SET state = $2, student_id = NULL, title = '',
		       payment_order_id = '', hold_expires_at = NULL, updated_at = NOW()
		 WHERE id = $1 AND state = $3 AND payment_order_id = $4
	`
	_, err := r.db.Exec(ctx, query, id, models.SessionAvailable, models.SessionPendingPayment, orderID)
	return err
}

func (r *SessionPostgres) Complete(ctx context.Context, id uuid.UUID, notes models.SessionNotes) error {
	data, err := json.Marshal(notes)
	if err != nil {
		return err
	}
	query := `
		UPDATE sessions
		   SET state = $2, notes = $3, updated_at = NOW()
		 WHERE id = $1 AND state = $4
	`
	cmdTag, err := r.db.Exec(ctx, query, id, models.SessionCompleted, data, models.SessionBooked)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrWrongSessionState
	}
	return nil
}

func (r *SessionPostgres) Cancel(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE sessions
		   SET state = $2, updated_at = NOW()
		 WHERE id = $1 AND state = $3
	`
	cmdTag, err := r.db.Exec(ctx, query, id, models.SessionCancelled, models.SessionBooked)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrWrongSessionState
	}
	return nil
}

// SetFeedback is an upsert: a resubmission overwrites the previous values.
func (r *SessionPostgres) SetFeedback(ctx context.Context, id uuid.UUID, feedback models.Feedback) error {
	data, err := json.Marshal(feedback)
	if err != nil {
		return err
	}
	query := `
		UPDATE sessions
		   SET feedback = $2, updated_at = NOW()
		 WHERE id = $1 AND state = $3
	`
	cmdTag, err := r.db.Exec(ctx, query, id, data, models.SessionCompleted)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrFeedbackNotAllowed
	}
	return nil
}

func (r *SessionPostgres) RequestRefund(ctx context.Context, id uuid.UUID, refund models.Refund) error {
	data, err := json.Marshal(refund)
	if err != nil {
		return err
	}
	query := `
		UPDATE sessions
		   SET refund = $2, updated_at = NOW()
		 WHERE id = $1 AND state = $3 AND refund IS NULL
	`
	cmdTag, err := r.db.Exec(ctx, query, id, data, models.SessionCancelled)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		session, err := r.SessionByID(ctx, id)
		if err != nil {
			return err
		}
		if session.Refund != nil {
			return app_errors.ErrRefundAlreadyRequested
		}
		return app_errors.ErrRefundNotAllowed
	}
	return nil
}

// DecideRefund writes the admin decision only while the request is pending.
func (r *SessionPostgres) DecideRefund(ctx context.Context, id uuid.UUID, refund models.Refund) error {
	data, err := json.Marshal(refund)
	if err != nil {
		return err
	}
	query := `
		UPDATE sessions
		   SET refund = $2, updated_at = NOW()
		 WHERE id = $1 AND refund ->> 'status' = $3
	`
	cmdTag, err := r.db.Exec(ctx, query, id, data, models.RefundPending)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		session, err := r.SessionByID(ctx, id)
		if err != nil {
			return err
		}
		if session.Refund == nil {
			return app_errors.ErrRefundNotRequested
		}
		return app_errors.ErrRefundAlreadyDecided
	}
	return nil
}

// MarkRefundProcessed records the manual payout on an approved request.
func (r *SessionPostgres) MarkRefundProcessed(ctx context.Context, id uuid.UUID, refund models.Refund) error {
	data, err := json.Marshal(refund)
	if err != nil {
		return err
	}
	query := `
		UPDATE sessions
		   SET refund = $2, updated_at = NOW()
		 WHERE id = $1 AND refund ->> 'status' = $3 AND (refund ->> 'processed')::boolean = false
	`
	cmdTag, err := r.db.Exec(ctx, query, id, data, models.RefundApproved)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		session, err := r.SessionByID(ctx, id)
		if err != nil {
			return err
		}
		if session.Refund == nil {
			return app_errors.ErrRefundNotRequested
		}
		if session.Refund.Processed {
			return app_errors.ErrRefundAlreadyDecided
		}
		return app_errors.ErrRefundNotApproved
	}
	return nil
}

func (r *SessionPostgres) ListByRefundStatus(ctx context.Context, status string) ([]models.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE refund ->> 'status' = $1
		ORDER BY updated_at
	`
	return r.listSessions(ctx, query, status)
}
