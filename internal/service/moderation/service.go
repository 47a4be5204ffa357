package moderation

import (
	"context"
	"strings"

	"github.com/Indieguru/indieguru-website-sub000/internal/app_errors"
	"github.com/Indieguru/indieguru-website-sub000/internal/models"
	"github.com/Indieguru/indieguru-website-sub000/pkg/logger"
	"github.com/google/uuid"
)

// Approvable is the shared shape of anything an admin moderates. Each
// postgres repo guards its own pending-only transition, so a second
// decision on the same item comes back as ErrNotPending.
type Approvable interface {
	Approve(ctx context.Context, id uuid.UUID, extra models.ApprovalExtra) error
	Reject(ctx context.Context, id uuid.UUID, reason string) error
}

type expertRepo interface {
	Approvable
	ListByStatus(ctx context.Context, status string) ([]models.Expert, error)
}

type courseRepo interface {
	Approvable
	CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	ListByStatus(ctx context.Context, status string) ([]models.Course, error)
}

type cohortRepo interface {
	Approvable
	ListByStatus(ctx context.Context, status string) ([]models.Cohort, error)
}

type blogRepo interface {
	Approvable
	ListByStatus(ctx context.Context, status string) ([]models.BlogPost, error)
}

type courseIndexer interface {
	Index(ctx context.Context, course models.Course) error
}

type Service struct {
	log     logger.Log
	experts expertRepo
	courses courseRepo
	cohorts cohortRepo
	blogs   blogRepo
	search  courseIndexer

	targets map[string]Approvable
}

func NewService(l logger.Log, experts expertRepo, courses courseRepo, cohorts cohortRepo, blogs blogRepo, search courseIndexer) *Service {
	s := &Service{
		log:     l,
		experts: experts,
		courses: courses,
		cohorts: cohorts,
		blogs:   blogs,
		search:  search,
	}
	s.targets = map[string]Approvable{
		models.KindExpert: experts,
		models.KindCourse: courses,
		models.KindCohort: cohorts,
		models.KindBlog:   blogs,
	}
	return s
}

func (s *Service) Approve(ctx context.Context, kind string, id uuid.UUID, extra models.ApprovalExtra) error {
	target, ok := s.targets[kind]
	if !ok {
		return app_errors.ErrUnknownApprovalKind
	}
	if err := target.Approve(ctx, id, extra); err != nil {
		return err
	}
	if kind == models.KindCourse {
		s.indexCourse(ctx, id)
	}
	return nil
}

func (s *Service) Reject(ctx context.Context, kind string, id uuid.UUID, reason string) error {
	target, ok := s.targets[kind]
	if !ok {
		return app_errors.ErrUnknownApprovalKind
	}
	if strings.TrimSpace(reason) == "" {
		return app_errors.ErrReasonRequired
	}
	return target.Reject(ctx, id, reason)
}

// Pending returns the moderation queue for one kind. The element type
// depends on the kind; handlers serialize it as-is.
func (s *Service) Pending(ctx context.Context, kind string) (any, error) {
	switch kind {
	case models.KindExpert:
		return s.experts.ListByStatus(ctx, models.ApprovalPending)
	case models.KindCourse:
		return s.courses.ListByStatus(ctx, models.ApprovalPending)
	case models.KindCohort:
		return s.cohorts.ListByStatus(ctx, models.ApprovalPending)
	case models.KindBlog:
		return s.blogs.ListByStatus(ctx, models.ApprovalPending)
	default:
		return nil, app_errors.ErrUnknownApprovalKind
	}
}

// Search stays best-effort. A failed index write never rolls back an
// approval, it just logs.
func (s *Service) indexCourse(ctx context.Context, id uuid.UUID) {
	course, err := s.courses.CourseByID(ctx, id)
	if err != nil {
		s.log.ErrorErr("moderation: read approved course for indexing", err)
		return
	}
	if err := s.search.Index(ctx, *course); err != nil {
		s.log.ErrorErr("moderation: index approved course", err)
	}
}
