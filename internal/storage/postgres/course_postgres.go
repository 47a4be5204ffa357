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

type CoursePostgres struct {
	db *pgxpool.Pool
}

func NewCoursePostgres(db *pgxpool.Pool) *CoursePostgres {
	return &CoursePostgres{db: db}
}

const courseColumns = `
	id, expert_id, title, description, status, rejection_reason,
	activity_status, pricing, created_at, updated_at
`

func scanCourse(row pgx.Row) (*models.Course, error) {
	c := &models.Course{}
	var pricing []byte
	err := row.Scan(
		&c.ID, &c.ExpertID, &c.Title, &c.Description, &c.Status, &c.RejectionReason,
		&c.ActivityStatus, &pricing, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrCourseNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(pricing, &c.Pricing); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CoursePostgres) CreateCourse(ctx context.Context, course *models.Course) (uuid.UUID, error) {
	if course.ID == uuid.Nil {
		course.ID = uuid.New()
	}
	now := time.Now().UTC()
	pricing, err := json.Marshal(course.Pricing)
	if err != nil {
		return uuid.Nil, err
	}
	query := `
		INSERT INTO courses (id, expert_id, title, description, status, activity_status, pricing, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING id
	`
	var id uuid.UUID
	err = r.db.QueryRow(ctx, query,
		course.ID, course.ExpertID, course.Title, course.Description,
		models.ApprovalPending, models.ActivityLive, pricing, now,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *CoursePostgres) CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	return scanCourse(r.db.QueryRow(ctx, query, id))
}

func (r *CoursePostgres) listCourses(ctx context.Context, query string, args ...any) ([]models.Course, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []models.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *c)
	}
	return courses, rows.Err()
}

func (r *CoursePostgres) ListByExpert(ctx context.Context, expertID uuid.UUID) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE expert_id = $1 ORDER BY created_at DESC`
	return r.listCourses(ctx, query, expertID)
}

func (r *CoursePostgres) ListByStatus(ctx context.Context, status string) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE status = $1 ORDER BY created_at`
	return r.listCourses(ctx, query, status)
}

func (r *CoursePostgres) SetActivityStatus(ctx context.Context, id uuid.UUID, activity string) error {
	query := `UPDATE courses SET activity_status = $2, updated_at = NOW() WHERE id = $1`
	cmdTag, err := r.db.Exec(ctx, query, id, activity)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrCourseNotFound
	}
	return nil
}

// Approve fixes the admin-set platform fee into the pricing snapshot.
func (r *CoursePostgres) Approve(ctx context.Context, id uuid.UUID, extra models.ApprovalExtra) error {
	query := `
		UPDATE courses
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

func (r *CoursePostgres) Reject(ctx context.Context, id uuid.UUID, reason string) error {
	query := `
		UPDATE courses
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

func (r *CoursePostgres) decideFailure(ctx context.Context, id uuid.UUID) error {
	if _, err := r.CourseByID(ctx, id); err != nil {
		return err
	}
	return app_errors.ErrNotPending
}

func (r *CoursePostgres) Enroll(ctx context.Context, courseID, studentID uuid.UUID) error {
	query := `INSERT INTO course_enrollments (course_id, student_id) VALUES ($1, $2)`
	_, err := r.db.Exec(ctx, query, courseID, studentID)
	if err != nil {
		if pgErr := UnwrapPgError(err); pgErr != nil && pgErr.Code == "23505" {
			return app_errors.ErrAlreadyEnrolled
		}
		return fmt.Errorf("failed to enroll: %w", err)
	}
	return nil
}

func (r *CoursePostgres) EnrolledStudents(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT student_id FROM course_enrollments WHERE course_id = $1 ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		students = append(students, id)
	}
	return students, rows.Err()
}

func (r *CoursePostgres) EnrolledCourses(ctx context.Context, studentID uuid.UUID) ([]models.Course, error) {
	query := `
		SELECT c.id, c.expert_id, c.title, c.description, c.status, c.rejection_reason,
		       c.activity_status, c.pricing, c.created_at, c.updated_at
		FROM courses c
		INNER JOIN course_enrollments ce ON ce.course_id = c.id
		WHERE ce.student_id = $1
		ORDER BY c.created_at DESC
	`
	return r.listCourses(ctx, query, studentID)
}
