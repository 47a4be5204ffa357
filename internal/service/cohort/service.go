package cohort

import (
	"context"
	"strings"
	"time"

	"github.com/Indieguru/indieguru-website-sub000/internal/app_errors"
	"github.com/Indieguru/indieguru-website-sub000/internal/models"
	"github.com/Indieguru/indieguru-website-sub000/pkg/logger"
	"github.com/google/uuid"
)

type cohortRepo interface {
	CreateCohort(ctx context.Context, cohort *models.Cohort) (uuid.UUID, error)
	CohortByID(ctx context.Context, id uuid.UUID) (*models.Cohort, error)
	ListByExpert(ctx context.Context, expertID uuid.UUID) ([]models.Cohort, error)
	ListApproved(ctx context.Context) ([]models.Cohort, error)
	Enroll(ctx context.Context, cohortID, studentID uuid.UUID) error
}

type expertRepo interface {
	ExpertByUserID(ctx context.Context, userID uuid.UUID) (*models.Expert, error)
}

// BucketedCohort pairs a cohort with its date-derived display bucket.
type BucketedCohort struct {
	models.Cohort
	Bucket string `json:"bucket"`
}

type Service struct {
	log        logger.Log
	cohortRepo cohortRepo
	expertRepo expertRepo
	now        func() time.Time
}

func NewService(l logger.Log, cRepo cohortRepo, eRepo expertRepo) *Service {
	return &Service{
		log:        l,
		cohortRepo: cRepo,
		expertRepo: eRepo,
		now:        time.Now,
	}
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, title, description string, startDate, endDate time.Time) (uuid.UUID, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return uuid.Nil, app_errors.ErrTitleRequired
	}
	if !endDate.After(startDate) {
		return uuid.Nil, app_errors.ErrInvalidSchedule
	}
	expert, err := s.expertRepo.ExpertByUserID(ctx, userID)
	if err != nil {
		return uuid.Nil, err
	}
	if !expert.Approved() {
		return uuid.Nil, app_errors.ErrExpertNotApproved
	}

	cohort := &models.Cohort{
		ExpertID:    expert.ID,
		Title:       title,
		Description: description,
		Status:      models.ApprovalPending,
		StartDate:   startDate,
		EndDate:     endDate,
		Pricing: models.PriceSnapshot{
			ExpertFee:   expert.RateCard.SessionFee,
			PlatformFee: expert.RateCard.PlatformFee,
			Total:       expert.RateCard.SessionFee + expert.RateCard.PlatformFee,
			Currency:    expert.RateCard.Currency,
		},
	}
	return s.cohortRepo.CreateCohort(ctx, cohort)
}

func (s *Service) MyCohorts(ctx context.Context, userID uuid.UUID) ([]BucketedCohort, error) {
	expert, err := s.expertRepo.ExpertByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	cohorts, err := s.cohortRepo.ListByExpert(ctx, expert.ID)
	if err != nil {
		return nil, err
	}
	return s.bucketed(cohorts), nil
}

// Listing returns all approved cohorts grouped into upcoming, live and
// past for the public catalog.
func (s *Service) Listing(ctx context.Context) (map[string][]BucketedCohort, error) {
	cohorts, err := s.cohortRepo.ListApproved(ctx)
	if err != nil {
		return nil, err
	}
	grouped := map[string][]BucketedCohort{
		models.CohortUpcoming: {},
		models.CohortLive:     {},
		models.CohortPast:     {},
	}
	for _, b := range s.bucketed(cohorts) {
		grouped[b.Bucket] = append(grouped[b.Bucket], b)
	}
	return grouped, nil
}

// Enroll joins an approved cohort that has not ended yet. Joining a cohort
// that already started is allowed.
func (s *Service) Enroll(ctx context.Context, studentID, cohortID uuid.UUID) error {
	cohort, err := s.cohortRepo.CohortByID(ctx, cohortID)
	if err != nil {
		return err
	}
	if cohort.Status != models.ApprovalApproved {
		return app_errors.ErrCohortNotApproved
	}
	if cohort.Bucket(s.now()) == models.CohortPast {
		return app_errors.ErrCohortEnded
	}
	return s.cohortRepo.Enroll(ctx, cohortID, studentID)
}

func (s *Service) bucketed(cohorts []models.Cohort) []BucketedCohort {
	now := s.now()
	out := make([]BucketedCohort, 0, len(cohorts))
	for _, c := range cohorts {
		out = append(out, BucketedCohort{Cohort: c, Bucket: c.Bucket(now)})
	}
	return out
}
