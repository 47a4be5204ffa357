package course

import (
	"context"
	"strings"

	"github.com/Indieguru/indieguru-website-sub000/internal/app_errors"
	"github.com/Indieguru/indieguru-website-sub000/internal/models"
	"github.com/Indieguru/indieguru-website-sub000/pkg/logger"
	"github.com/google/uuid"
)

type courseRepo interface {
	CreateCourse(ctx context.Context, course *models.Course) (uuid.UUID, error)
	CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	ListByExpert(ctx context.Context, expertID uuid.UUID) ([]models.Course, error)
	SetActivityStatus(ctx context.Context, id uuid.UUID, activity string) error
	Enroll(ctx context.Context, courseID, studentID uuid.UUID) error
	EnrolledStudents(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error)
	EnrolledCourses(ctx context.Context, studentID uuid.UUID) ([]models.Course, error)
}

type expertRepo interface {
	ExpertByUserID(ctx context.Context, userID uuid.UUID) (*models.Expert, error)
	ExpertByID(ctx context.Context, id uuid.UUID) (*models.Expert, error)
}

type searchRepo interface {
	Search(ctx context.Context, query string, size int) ([]uuid.UUID, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	log        logger.Log
	courseRepo courseRepo
	expertRepo expertRepo
	search     searchRepo
}

func NewService(l logger.Log, cRepo courseRepo, eRepo expertRepo, search searchRepo) *Service {
	return &Service{
		log:        l,
		courseRepo: cRepo,
		expertRepo: eRepo,
		search:     search,
	}
}

// Create registers a new course draft for moderation. The price snapshot
// is taken from the expert's rate card at creation time; the platform fee
// and total are finalized on approval.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, title, description string) (uuid.UUID, error) {
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

	course := &models.Course{
		ExpertID:       expert.ID,
		Title:          title,
		Description:    description,
		Status:         models.ApprovalPending,
		ActivityStatus: models.ActivityLive,
		Pricing: models.PriceSnapshot{
			ExpertFee:   expert.RateCard.SessionFee,
			PlatformFee: expert.RateCard.PlatformFee,
			Total:       expert.RateCard.SessionFee + expert.RateCard.PlatformFee,
			Currency:    expert.RateCard.Currency,
		},
	}
	return s.courseRepo.CreateCourse(ctx, course)
}

func (s *Service) MyCourses(ctx context.Context, userID uuid.UUID) ([]models.Course, error) {
	expert, err := s.expertRepo.ExpertByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.courseRepo.ListByExpert(ctx, expert.ID)
}

// MarkCompleted closes enrollment without touching existing students.
// Completed courses also drop out of discovery search.
func (s *Service) MarkCompleted(ctx context.Context, userID, courseID uuid.UUID) error {
	course, err := s.ownedCourse(ctx, userID, courseID)
	if err != nil {
		return err
	}
	if err := s.courseRepo.SetActivityStatus(ctx, course.ID, models.ActivityCompleted); err != nil {
		return err
	}
	if err := s.search.Delete(ctx, course.ID); err != nil {
		s.log.ErrorErr("course: remove completed course from search", err)
	}
	return nil
}

// Enroll adds a student to an approved, live course.
func (s *Service) Enroll(ctx context.Context, studentID, courseID uuid.UUID) error {
	course, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return err
	}
	if course.Status != models.ApprovalApproved {
		return app_errors.ErrCourseNotApproved
	}
	if course.ActivityStatus != models.ActivityLive {
		return app_errors.ErrCourseNotLive
	}
	return s.courseRepo.Enroll(ctx, courseID, studentID)
}

func (s *Service) EnrolledCourses(ctx context.Context, studentID uuid.UUID) ([]models.Course, error) {
	return s.courseRepo.EnrolledCourses(ctx, studentID)
}

func (s *Service) EnrolledStudents(ctx context.Context, userID, courseID uuid.UUID) ([]uuid.UUID, error) {
	course, err := s.ownedCourse(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	return s.courseRepo.EnrolledStudents(ctx, course.ID)
}

// Discover runs a fuzzy title/description search and hydrates the hits
// from postgres. Courses that were unindexed or deleted since are skipped.
func (s *Service) Discover(ctx context.Context, query string, size int) ([]models.Course, error) {
	ids, err := s.search.Search(ctx, query, size)
	if err != nil {
		return nil, err
	}
	courses := make([]models.Course, 0, len(ids))
	for _, id := range ids {
		course, err := s.courseRepo.CourseByID(ctx, id)
		if err != nil {
			s.log.Warn("course: search hit missing in storage", "course_id", id.String())
			continue
		}
		if course.Status != models.ApprovalApproved || course.ActivityStatus != models.ActivityLive {
			continue
		}
		courses = append(courses, *course)
	}
	return courses, nil
}

func (s *Service) ownedCourse(ctx context.Context, userID, courseID uuid.UUID) (*models.Course, error) {
	course, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	expert, err := s.expertRepo.ExpertByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if course.ExpertID != expert.ID {
		return nil, app_errors.ErrNotCourseOwner
	}
	return course, nil
}
