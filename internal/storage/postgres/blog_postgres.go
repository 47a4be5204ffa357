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

type BlogPostgres struct {
	db *pgxpool.Pool
}

func NewBlogPostgres(db *pgxpool.Pool) *BlogPostgres {
	return &BlogPostgres{db: db}
}

const blogColumns = `
	id, expert_id, title, body, cover_url, status, rejection_reason, created_at, updated_at
`

func scanBlog(row pgx.Row) (*models.BlogPost, error) {
	b := &models.BlogPost{}
	err := row.Scan(
		&b.ID, &b.ExpertID, &b.Title, &b.Body, &b.CoverURL,
		&b.Status, &b.RejectionReason, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrBlogNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *BlogPostgres) CreatePost(ctx context.Context, post *models.BlogPost) (uuid.UUID, error) {
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	now := time.Now().UTC()
	query := `
		INSERT INTO blog_posts (id, expert_id, title, body, cover_url, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id
	`
	var id uuid.UUID
	err := r.db.QueryRow(ctx, query,
		post.ID, post.ExpertID, post.Title, post.Body, post.CoverURL,
		models.ApprovalPending, now,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *BlogPostgres) PostByID(ctx context.Context, id uuid.UUID) (*models.BlogPost, error) {
	query := `SELECT ` + blogColumns + ` FROM blog_posts WHERE id = $1`
	return scanBlog(r.db.QueryRow(ctx, query, id))
}

func (r *BlogPostgres) listPosts(ctx context.Context, query string, args ...any) ([]models.BlogPost, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []models.BlogPost
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *b)
	}
	return posts, rows.Err()
}

func (r *BlogPostgres) ListByExpert(ctx context.Context, expertID uuid.UUID) ([]models.BlogPost, error) {
	query := `SELECT ` + blogColumns + ` FROM blog_posts WHERE expert_id = $1 ORDER BY created_at DESC`
	return r.listPosts(ctx, query, expertID)
}

func (r *BlogPostgres) ListByStatus(ctx context.Context, status string) ([]models.BlogPost, error) {
	query := `SELECT ` + blogColumns + ` FROM blog_posts WHERE status = $1 ORDER BY created_at DESC`
	return r.listPosts(ctx, query, status)
}

func (r *BlogPostgres) Approve(ctx context.Context, id uuid.UUID, _ models.ApprovalExtra) error {
	query := `
		UPDATE blog_posts
		   SET status = $2, updated_at = NOW()
		 WHERE id = $1 AND status = $3
	`
	cmdTag, err := r.db.Exec(ctx, query, id, models.ApprovalApproved, models.ApprovalPending)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return r.decideFailure(ctx, id)
	}
	return nil
}

func (r *BlogPostgres) Reject(ctx context.Context, id uuid.UUID, reason string) error {
	query := `
		UPDATE blog_posts
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

func (r *BlogPostgres) decideFailure(ctx context.Context, id uuid.UUID) error {
	if _, err := r.PostByID(ctx, id); err != nil {
		return err
	}
	return app_errors.ErrNotPending
}
