package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Indieguru/indieguru-website-sub000/internal/app_errors"
	"github.com/Indieguru/indieguru-website-sub000/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CohortPostgres struct {
	db *pgxpool.Pool
}

func NewCohortPostgres(db *pgxpool.Pool) *CohortPostgres {
	return &CohortPostgres{db: db}
}

const cohortColumns = `
	id, expert_id, title, description, status, rejection_reason,
	start_date, end_date, pricing, created_at, updated_at
`

func scanCohort(row pgx.Row) (*models.Cohort, error) {
	c := &models.Cohort{}
	var pricing []byte
	err := row.Scan(
		&c.ID, &c.ExpertID, &c.Title, &c.Description, &c.Status, &c.RejectionReason,
		&c.StartDate, &c.EndDate, &pricing, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrCohortNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(pricing, &c.Pricing); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CohortPostgres) CreateCohort(ctx context.Context, cohort *models.Cohort) (uuid.UUID, error) {
	if cohort.ID == uuid.Nil {
		cohort.ID = uuid.New()
	}
	now := time.Now().UTC()
	pricing, err := json.Marshal(cohort.Pricing)
	if err != nil {
		return uuid.Nil, err
	}
	query := `
		INSERT INTO cohorts (id, expert_id, title, description, status, start_date, end_date, pricing, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING id
	`
	var id uuid.UUID
	err = r.db.QueryRow(ctx, query,
		cohort.ID, cohort.ExpertID, cohort.Title, cohort.Description,
		models.ApprovalPending, cohort.StartDate, cohort.EndDate, pricing, now,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *CohortPostgres) CohortByID(ctx context.Context, id uuid.UUID) (*models.Cohort, error) {
	query := `SELECT ` + cohortColumns + ` FROM cohorts WHERE id = $1`
	return scanCohort(r.db.QueryRow(ctx, query, id))
}

func (r *CohortPostgres) listCohorts(ctx context.Context, query string, args ...any) ([]models.Cohort, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cohorts []models.Cohort
	for rows.Next() {
		c, err := scanCohort(rows)
		if err != nil {
			return nil, err
		}
		cohorts = append(cohorts, *c)
	}
	return cohorts, rows.Err()
}

func (r *CohortPostgres) ListByExpert(ctx context.Context, expertID uuid.UUID) ([]models.Cohort, error) {
	query := `SELECT ` + cohortColumns + ` FROM cohorts WHERE expert_id = $1 ORDER BY start_date`
	return r.listCohorts(ctx, query, expertID)
}

func (r *CohortPostgres) ListByStatus(ctx context.Context, status string) ([]models.Cohort, error) {
	query := `SELECT ` + cohortColumns + ` FROM cohorts WHERE status = $1 ORDER BY start_date`
	return r.listCohorts(ctx, query, status)
}

func (r *CohortPostgres) Approve(ctx context.Context, id uuid.UUID, extra models.ApprovalExtra) error {
	query := `
		UPDATE cohorts
		   SET status = $2,
		       pricing = jsonb_set(
		           jsonb_set(pricing, '{platform_fee}', to_jsonb($3::bigint)),
		           '{total}', to_jsonb((pricing ->> 'expert_fee')::bigint + $3::bigint)
		       ),
		       updated_at = NOW()
		 WHERE id = $1 AND status = $4
	`
	cmdTag, err := r.db.Exec(ctx, query, id, models.ApprovalApproved, extra.PlatformFee, models.ApprovalPending)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return r.decideFailure(ctx, id)
	}
	return nil
}

func (r *CohortPostgres) Reject(ctx context.Context, id uuid.UUID, reason string) error {
	query := `
		UPDATE cohorts
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

func (r *CohortPostgres) decideFailure(ctx context.Context, id uuid.UUID) error {
	if _, err := r.CohortByID(ctx, id); err != nil {
		return err
	}
	return app_errors.ErrNotPending
}

func (r *CohortPostgres) Enroll(ctx context.Context, cohortID, studentID uuid.UUID) error {
	query := `INSERT INTO cohort_enrollments (cohort_id, student_id) VALUES ($1, $2)`
	_, err := r.db.Exec(ctx, query, cohortID, studentID)
	if err != nil {
		if pgErr := UnwrapPgError(err); pgErr != nil && pgErr.Code == "23505" {
			return app_errors.ErrAlreadyEnrolled
		}
		return fmt.Errorf("failed to enroll: %w", err)
	}
	return nil
}

func (r *CohortPostgres) ListApproved(ctx context.Context) ([]models.Cohort, error) {
	query := `SELECT ` + cohortColumns + ` FROM cohorts WHERE status = $1 ORDER BY start_date`
	return r.listCohorts(ctx, query, models.ApprovalApproved)
}
