package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/Indieguru/indieguru-website-sub000/internal/app_errors"
	"github.com/Indieguru/indieguru-website-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ExpertPostgres struct {
	db *pgxpool.Pool
}

func NewExpertPostgres(db *pgxpool.Pool) *ExpertPostgres {
	return &ExpertPostgres{db: db}
}

const expertColumns = `
	id, user_id, headline, bio, status, rejection_reason,
	session_fee, platform_fee, currency, created_at, updated_at
`

func scanExpert(row pgx.Row) (*models.Expert, error) {
	e := &models.Expert{}
	err := row.Scan(
		&e.ID, &e.UserID, &e.Headline, &e.Bio, &e.Status, &e.RejectionReason,
		&e.RateCard.SessionFee, &e.RateCard.PlatformFee, &e.RateCard.Currency,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrExpertNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *ExpertPostgres) CreateExpert(ctx context.Context, expert *models.Expert) (uuid.UUID, error) {
	if expert.ID == uuid.Nil {
		expert.ID = uuid.New()
	}
	now := time.Now().UTC()
	query := `
		INSERT INTO experts (id, user_id, headline, bio, status, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id
	`
	var id uuid.UUID
	err := r.db.QueryRow(ctx, query,
		expert.ID, expert.UserID, expert.Headline, expert.Bio,
		models.ApprovalPending, expert.RateCard.Currency, now,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *ExpertPostgres) ExpertByID(ctx context.Context, id uuid.UUID) (*models.Expert, error) {
	query := `SELECT ` + expertColumns + ` FROM experts WHERE id = $1`
	return scanExpert(r.db.QueryRow(ctx, query, id))
}

func (r *ExpertPostgres) ExpertByUserID(ctx context.Context, userID uuid.UUID) (*models.Expert, error) {
	query := `SELECT ` + expertColumns + ` FROM experts WHERE user_id = $1`
	return scanExpert(r.db.QueryRow(ctx, query, userID))
}

func (r *ExpertPostgres) ListByStatus(ctx context.Context, status string) ([]models.Expert, error) {
	query := `SELECT ` + expertColumns + ` FROM experts WHERE status = $1 ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var experts []models.Expert
	for rows.Next() {
		e, err := scanExpert(rows)
		if err != nil {
			return nil, err
		}
		experts = append(experts, *e)
	}
	return experts, rows.Err()
}

// Approve is a conditional update so a decided profile cannot be decided twice.
func (r *ExpertPostgres) Approve(ctx context.Context, id uuid.UUID, extra models.ApprovalExtra) error {
	query := `
		UPDATE experts
		   SET status = $2, session_fee = $3, platform_fee = $4,
		       currency = COALESCE(NULLIF($5, ''), currency), updated_at = NOW()
		 WHERE id = $1 AND status = $6
	`
	cmdTag, err := r.db.Exec(ctx, query, id,
		models.ApprovalApproved, extra.SessionFee, extra.PlatformFee, extra.Currency,
		models.ApprovalPending,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return r.decideFailure(ctx, id)
	}
	return nil
}

func (r *ExpertPostgres) Reject(ctx context.Context, id uuid.UUID, reason string) error {
	query := `
		UPDATE experts
		   SET status = $2, rejection_reason = $3, updated_at = NOW()
		 WHERE id = $1 AND status = $4
	`
	cmdTag, err := r.db.Exec(ctx, query, id, models.ApprovalRejected, reason, models.ApprovalPending)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return r.decideFailure(ctx, id)
	}
	return nil
}

func (r *ExpertPostgres) decideFailure(ctx context.Context, id uuid.UUID) error {
	if _, err := r.ExpertByID(ctx, id); err != nil {
		return err
	}
	return app_errors.ErrNotPending
}
