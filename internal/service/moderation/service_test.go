package moderation

import (
	"context"
	"testing"

	"github.com/Indieguru/indieguru-website-sub000/internal/app_errors"
	"github.com/Indieguru/indieguru-website-sub000/internal/models"
	"github.com/Indieguru/indieguru-website-sub000/pkg/logger"
	"github.com/google/uuid"
)

type record struct {
	status string
	reason string
	extra  models.ApprovalExtra
}

type fakeApprovable struct {
	items map[uuid.UUID]*record
}

func newFakeApprovable(ids ...uuid.UUID) *fakeApprovable {
	f := &fakeApprovable{items: make(map[uuid.UUID]*record)}
	for _, id := range ids {
		f.items[id] = &record{status: models.ApprovalPending}
	}
	return f
}

func (f *fakeApprovable) Approve(_ context.Context, id uuid.UUID, extra models.ApprovalExtra) error {
	item, ok := f.items[id]
	if !ok {
		return app_errors.ErrExpertNotFound
	}
	if item.status != models.ApprovalPending {
		return app_errors.ErrNotPending
	}
	item.status = models.ApprovalApproved
	item.extra = extra
	return nil
}

func (f *fakeApprovable) Reject(_ context.Context, id uuid.UUID, reason string) error {
	item, ok := f.items[id]
	if !ok {
		return app_errors.ErrExpertNotFound
	}
	if item.status != models.ApprovalPending {
		return app_errors.ErrNotPending
	}
	item.status = models.ApprovalRejected
	item.reason = reason
	return nil
}

type fakeExpertRepo struct{ *fakeApprovable }

func (f *fakeExpertRepo) ListByStatus(_ context.Context, status string) ([]models.Expert, error) {
	var out []models.Expert
	for id, item := range f.items {
		if item.status == status {
			out = append(out, models.Expert{ID: id, Status: item.status})
		}
	}
	return out, nil
}

type fakeCourseRepo struct{ *fakeApprovable }

func (f *fakeCourseRepo) CourseByID(_ context.Context, id uuid.UUID) (*models.Course, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, app_errors.ErrCourseNotFound
	}
	return &models.Course{ID: id, Status: item.status}, nil
}

func (f *fakeCourseRepo) ListByStatus(_ context.Context, status string) ([]models.Course, error) {
	var out []models.Course
	for id, item := range f.items {
		if item.status == status {
			out = append(out, models.Course{ID: id, Status: item.status})
		}
	}
	return out, nil
}

type fakeCohortRepo struct{ *fakeApprovable }

func (f *fakeCohortRepo) ListByStatus(_ context.Context, status string) ([]models.Cohort, error) {
	var out []models.Cohort
	for id, item := range f.items {
		if item.status == status {
			out = append(out, models.Cohort{ID: id, Status: item.status})
		}
	}
	return out, nil
}

type fakeBlogRepo struct{ *fakeApprovable }

func (f *fakeBlogRepo) ListByStatus(_ context.Context, status string) ([]models.BlogPost, error) {
	var out []models.BlogPost
	for id, item := range f.items {
		if item.status == status {
			out = append(out, models.BlogPost{ID: id, Status: item.status})
		}
	}
	return out, nil
}

type fakeIndexer struct {
	indexed []uuid.UUID
}

func (f *fakeIndexer) Index(_ context.Context, course models.Course) error {
	f.indexed = append(f.indexed, course.ID)
	return nil
}

type fixture struct {
	svc     *Service
	experts *fakeExpertRepo
	courses *fakeCourseRepo
	search  *fakeIndexer
}

func newFixture(expertIDs, courseIDs []uuid.UUID) fixture {
	experts := &fakeExpertRepo{newFakeApprovable(expertIDs...)}
	courses := &fakeCourseRepo{newFakeApprovable(courseIDs...)}
	cohorts := &fakeCohortRepo{newFakeApprovable()}
	blogs := &fakeBlogRepo{newFakeApprovable()}
	search := &fakeIndexer{}
	svc := NewService(logger.New("test"), experts, courses, cohorts, blogs, search)
	return fixture{svc: svc, experts: experts, courses: courses, search: search}
}

func TestApproveExpertWithRateCard(t *testing.T) {
	expertID := uuid.New()
	fx := newFixture([]uuid.UUID{expertID}, nil)

	extra := models.ApprovalExtra{SessionFee: 1500, PlatformFee: 300, Currency: "INR"}
	if err := fx.svc.Approve(context.Background(), models.KindExpert, expertID, extra); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	item := fx.experts.items[expertID]
	if item.status != models.ApprovalApproved || item.extra.SessionFee != 1500 {
		t.Fatalf("unexpected record after approve: %+v", item)
	}
}

func TestApproveIsFinal(t *testing.T) {
	expertID := uuid.New()
	fx := newFixture([]uuid.UUID{expertID}, nil)

	if err := fx.svc.Approve(context.Background(), models.KindExpert, expertID, models.ApprovalExtra{}); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if err := fx.svc.Reject(context.Background(), models.KindExpert, expertID, "changed my mind"); err != app_errors.ErrNotPending {
		t.Fatalf("decide twice: got %v, want ErrNotPending", err)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	expertID := uuid.New()
	fx := newFixture([]uuid.UUID{expertID}, nil)

	if err := fx.svc.Reject(context.Background(), models.KindExpert, expertID, "   "); err != app_errors.ErrReasonRequired {
		t.Fatalf("got %v, want ErrReasonRequired", err)
	}
	if fx.experts.items[expertID].status != models.ApprovalPending {
		t.Fatalf("record decided without a reason")
	}

	if err := fx.svc.Reject(context.Background(), models.KindExpert, expertID, "incomplete profile"); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if fx.experts.items[expertID].reason != "incomplete profile" {
		t.Fatalf("reason not stored")
	}
}

func TestUnknownKind(t *testing.T) {
	fx := newFixture(nil, nil)

	if err := fx.svc.Approve(context.Background(), "webinar", uuid.New(), models.ApprovalExtra{}); err != app_errors.ErrUnknownApprovalKind {
		t.Fatalf("approve: got %v, want ErrUnknownApprovalKind", err)
	}
	if _, err := fx.svc.Pending(context.Background(), "webinar"); err != app_errors.ErrUnknownApprovalKind {
		t.Fatalf("pending: got %v, want ErrUnknownApprovalKind", err)
	}
}

func TestCourseApprovalIndexesForSearch(t *testing.T) {
	courseID := uuid.New()
	fx := newFixture(nil, []uuid.UUID{courseID})

	if err := fx.svc.Approve(context.Background(), models.KindCourse, courseID, models.ApprovalExtra{PlatformFee: 100}); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if len(fx.search.indexed) != 1 || fx.search.indexed[0] != courseID {
		t.Fatalf("course not indexed: %v", fx.search.indexed)
	}
}

func TestPendingQueue(t *testing.T) {
	pending := uuid.New()
	decided := uuid.New()
	fx := newFixture([]uuid.UUID{pending, decided}, nil)
	if err := fx.svc.Approve(context.Background(), models.KindExpert, decided, models.ApprovalExtra{}); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	items, err := fx.svc.Pending(context.Background(), models.KindExpert)
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	experts, ok := items.([]models.Expert)
	if !ok {
		t.Fatalf("unexpected queue type %T", items)
	}
	if len(experts) != 1 || experts[0].ID != pending {
		t.Fatalf("unexpected queue: %+v", experts)
	}
}
