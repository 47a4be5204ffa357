package cohort

import (
	"context"
	"testing"
	"time"

	"github.com/Indieguru/indieguru-website-sub000/internal/app_errors"
	"github.com/Indieguru/indieguru-website-sub000/internal/models"
	"github.com/Indieguru/indieguru-website-sub000/pkg/logger"
	"github.com/google/uuid"
)

type fakeCohortRepo struct {
	cohorts  map[uuid.UUID]*models.Cohort
	enrolled map[uuid.UUID][]uuid.UUID
}

func newFakeCohortRepo(cohorts ...*models.Cohort) *fakeCohortRepo {
	f := &fakeCohortRepo{
		cohorts:  make(map[uuid.UUID]*models.Cohort),
		enrolled: make(map[uuid.UUID][]uuid.UUID),
	}
	for _, c := range cohorts {
		f.cohorts[c.ID] = c
	}
	return f
}

func (f *fakeCohortRepo) CreateCohort(_ context.Context, cohort *models.Cohort) (uuid.UUID, error) {
	cohort.ID = uuid.New()
	f.cohorts[cohort.ID] = cohort
	return cohort.ID, nil
}

func (f *fakeCohortRepo) CohortByID(_ context.Context, id uuid.UUID) (*models.Cohort, error) {
	c, ok := f.cohorts[id]
	if !ok {
		return nil, app_errors.ErrCohortNotFound
	}
	copied := *c
	return &copied, nil
}

func (f *fakeCohortRepo) ListByExpert(_ context.Context, expertID uuid.UUID) ([]models.Cohort, error) {
	var out []models.Cohort
	for _, c := range f.cohorts {
		if c.ExpertID == expertID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCohortRepo) ListApproved(_ context.Context) ([]models.Cohort, error) {
	var out []models.Cohort
	for _, c := range f.cohorts {
		if c.Status == models.ApprovalApproved {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCohortRepo) Enroll(_ context.Context, cohortID, studentID uuid.UUID) error {
	for _, s := range f.enrolled[cohortID] {
		if s == studentID {
			return app_errors.ErrAlreadyEnrolled
		}
	}
	f.enrolled[cohortID] = append(f.enrolled[cohortID], studentID)
	return nil
}

type fakeExpertRepo struct {
	expert *models.Expert
}

func (f *fakeExpertRepo) ExpertByUserID(_ context.Context, userID uuid.UUID) (*models.Expert, error) {
	if f.expert == nil || f.expert.UserID != userID {
		return nil, app_errors.ErrExpertNotFound
	}
	return f.expert, nil
}

func approvedCohort(start, end time.Time) *models.Cohort {
	return &models.Cohort{
		ID:        uuid.New(),
		ExpertID:  uuid.New(),
		Status:    models.ApprovalApproved,
		StartDate: start,
		EndDate:   end,
	}
}

func TestEnrollOpenCohort(t *testing.T) {
	now := time.Now()
	upcoming := approvedCohort(now.Add(24*time.Hour), now.Add(7*24*time.Hour))
	live := approvedCohort(now.Add(-24*time.Hour), now.Add(24*time.Hour))
	past := approvedCohort(now.Add(-7*24*time.Hour), now.Add(-24*time.Hour))

	repo := newFakeCohortRepo(upcoming, live, past)
	svc := NewService(logger.New("test"), repo, &fakeExpertRepo{})
	studentID := uuid.New()

	if err := svc.Enroll(context.Background(), studentID, upcoming.ID); err != nil {
		t.Fatalf("upcoming: %v", err)
	}
	if err := svc.Enroll(context.Background(), studentID, live.ID); err != nil {
		t.Fatalf("live: %v", err)
	}
	if err := svc.Enroll(context.Background(), studentID, past.ID); err != app_errors.ErrCohortEnded {
		t.Fatalf("past: got %v, want ErrCohortEnded", err)
	}
}

func TestEnrollRequiresApproval(t *testing.T) {
	now := time.Now()
	cohort := approvedCohort(now, now.Add(24*time.Hour))
	cohort.Status = models.ApprovalPending
	svc := NewService(logger.New("test"), newFakeCohortRepo(cohort), &fakeExpertRepo{})

	if err := svc.Enroll(context.Background(), uuid.New(), cohort.ID); err != app_errors.ErrCohortNotApproved {
		t.Fatalf("got %v, want ErrCohortNotApproved", err)
	}
}

func TestListingGroupsByBucket(t *testing.T) {
	now := time.Now()
	upcoming := approvedCohort(now.Add(24*time.Hour), now.Add(7*24*time.Hour))
	live := approvedCohort(now.Add(-24*time.Hour), now.Add(24*time.Hour))
	past := approvedCohort(now.Add(-7*24*time.Hour), now.Add(-24*time.Hour))
	pending := approvedCohort(now, now.Add(24*time.Hour))
	pending.Status = models.ApprovalPending

	repo := newFakeCohortRepo(upcoming, live, past, pending)
	svc := NewService(logger.New("test"), repo, &fakeExpertRepo{})

	grouped, err := svc.Listing(context.Background())
	if err != nil {
		t.Fatalf("Listing: %v", err)
	}
	if len(grouped[models.CohortUpcoming]) != 1 || len(grouped[models.CohortLive]) != 1 || len(grouped[models.CohortPast]) != 1 {
		t.Fatalf("unexpected grouping: up=%d live=%d past=%d",
			len(grouped[models.CohortUpcoming]), len(grouped[models.CohortLive]), len(grouped[models.CohortPast]))
	}
}

func TestCreateValidatesDates(t *testing.T) {
	expert := &models.Expert{ID: uuid.New(), UserID: uuid.New(), Status: models.ApprovalApproved}
	svc := NewService(logger.New("test"), newFakeCohortRepo(), &fakeExpertRepo{expert: expert})

	now := time.Now()
	_, err := svc.Create(context.Background(), expert.UserID, "Batch 1", "desc", now.Add(24*time.Hour), now)
	if err != app_errors.ErrInvalidSchedule {
		t.Fatalf("got %v, want ErrInvalidSchedule", err)
	}
}
