package blog

import (
	"context"
	"io"
	"strings"

	"github.com/Indieguru/indieguru-website-sub000/internal/app_errors"
	"github.com/Indieguru/indieguru-website-sub000/internal/models"
	"github.com/Indieguru/indieguru-website-sub000/pkg/logger"
	"github.com/google/uuid"
)

type blogRepo interface {
	CreatePost(ctx context.Context, post *models.BlogPost) (uuid.UUID, error)
	PostByID(ctx context.Context, id uuid.UUID) (*models.BlogPost, error)
	ListByExpert(ctx context.Context, expertID uuid.UUID) ([]models.BlogPost, error)
	ListByStatus(ctx context.Context, status string) ([]models.BlogPost, error)
}

type expertRepo interface {
	ExpertByUserID(ctx context.Context, userID uuid.UUID) (*models.Expert, error)
}

type fileStore interface {
	UploadAttachment(ctx context.Context, ownerID uuid.UUID, kind, filename string, reader io.Reader, size int64, contentType string) (string, error)
	AttachmentURL(ctx context.Context, objectKey string) (string, error)
}

type CoverUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

const maxCoverSize = 5 << 20

type Service struct {
	log        logger.Log
	blogRepo   blogRepo
	expertRepo expertRepo
	files      fileStore
}

func NewService(l logger.Log, bRepo blogRepo, eRepo expertRepo, files fileStore) *Service {
	return &Service{
		log:        l,
		blogRepo:   bRepo,
		expertRepo: eRepo,
		files:      files,
	}
}

// Create submits a post for moderation, optionally with a cover image.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, title, body string, cover *CoverUpload) (uuid.UUID, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return uuid.Nil, app_errors.ErrTitleRequired
	}
	expert, err := s.expertRepo.ExpertByUserID(ctx, userID)
	if err != nil {
		return uuid.Nil, err
	}
	if !expert.Approved() {
		return uuid.Nil, app_errors.ErrExpertNotApproved
	}

	post := &models.BlogPost{
		ExpertID: expert.ID,
		Title:    title,
		Body:     body,
		Status:   models.ApprovalPending,
	}
	if cover != nil {
		if cover.Size > maxCoverSize {
			return uuid.Nil, app_errors.ErrFileSize
		}
		objectKey, err := s.files.UploadAttachment(ctx, expert.ID, "blog-cover", cover.Filename, cover.Reader, cover.Size, cover.ContentType)
		if err != nil {
			return uuid.Nil, err
		}
		url, err := s.files.AttachmentURL(ctx, objectKey)
		if err != nil {
			return uuid.Nil, err
		}
		post.CoverURL = url
	}
	return s.blogRepo.CreatePost(ctx, post)
}

func (s *Service) MyPosts(ctx context.Context, userID uuid.UUID) ([]models.BlogPost, error) {
	expert, err := s.expertRepo.ExpertByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.blogRepo.ListByExpert(ctx, expert.ID)
}

// Published lists approved posts for the public feed.
func (s *Service) Published(ctx context.Context) ([]models.BlogPost, error) {
	return s.blogRepo.ListByStatus(ctx, models.ApprovalApproved)
}

func (s *Service) Post(ctx context.Context, id uuid.UUID) (*models.BlogPost, error) {
	post, err := s.blogRepo.PostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Status != models.ApprovalApproved {
		return nil, app_errors.ErrBlogNotFound
	}
	return post, nil
}
