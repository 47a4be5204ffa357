package session

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/Indieguru/indieguru-website-sub000/internal/app_errors"
	"github.com/Indieguru/indieguru-website-sub000/internal/models"
	"github.com/Indieguru/indieguru-website-sub000/pkg/logger"
	"github.com/google/uuid"
)

type fakeSessionRepo struct {
	sessions map[uuid.UUID]*models.Session
}

func newFakeSessionRepo(sessions ...*models.Session) *fakeSessionRepo {
	f := &fakeSessionRepo{sessions: make(map[uuid.UUID]*models.Session)}
	for _, s := range sessions {
		f.sessions[s.ID] = s
	}
	return f
}

func (f *fakeSessionRepo) SessionByID(_ context.Context, id uuid.UUID) (*models.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, app_errors.ErrSlotNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSessionRepo) Complete(_ context.Context, id uuid.UUID, notes models.SessionNotes) error {
	s := f.sessions[id]
	s.State = models.SessionCompleted
	s.Notes = &notes
	return nil
}

func (f *fakeSessionRepo) Cancel(_ context.Context, id uuid.UUID) error {
	f.sessions[id].State = models.SessionCancelled
	return nil
}

func (f *fakeSessionRepo) SetFeedback(_ context.Context, id uuid.UUID, feedback models.Feedback) error {
	f.sessions[id].Feedback = &feedback
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

type fakeFileStore struct {
	uploaded []string
}

func (f *fakeFileStore) UploadAttachment(_ context.Context, _ uuid.UUID, kind, filename string, _ io.Reader, _ int64, _ string) (string, error) {
	key := kind + "/" + filename
	f.uploaded = append(f.uploaded, key)
	return key, nil
}

func (f *fakeFileStore) AttachmentURL(_ context.Context, objectKey string) (string, error) {
	return "https://files.example/" + objectKey, nil
}

func bookedSession(expertID uuid.UUID, studentID uuid.UUID, date, start string) *models.Session {
	return &models.Session{
		ID:        uuid.New(),
		ExpertID:  expertID,
		StudentID: &studentID,
		Date:      date,
		StartTime: start,
		EndTime:   "23:59",
		State:     models.SessionBooked,
	}
}

func TestCompleteRejectsFutureSession(t *testing.T) {
	expert := &models.Expert{ID: uuid.New(), UserID: uuid.New(), Status: models.ApprovalApproved}
	future := time.Now().Add(48 * time.Hour)
	sess := bookedSession(expert.ID, uuid.New(), future.Format("2006-01-02"), "10:00")
	repo := newFakeSessionRepo(sess)
	svc := NewService(logger.New("test"), repo, &fakeExpertRepo{expert: expert}, &fakeFileStore{})

	err := svc.Complete(context.Background(), expert.UserID, sess.ID, "notes", nil)
	if err != app_errors.ErrSessionNotStarted {
		t.Fatalf("got %v, want ErrSessionNotStarted", err)
	}
}

func TestCompleteAttachesNotes(t *testing.T) {
	expert := &models.Expert{ID: uuid.New(), UserID: uuid.New(), Status: models.ApprovalApproved}
	sess := bookedSession(expert.ID, uuid.New(), "2020-01-01", "10:00")
	repo := newFakeSessionRepo(sess)
	files := &fakeFileStore{}
	svc := NewService(logger.New("test"), repo, &fakeExpertRepo{expert: expert}, files)

	uploads := []FileUpload{
		{Filename: "summary.pdf", ContentType: "application/pdf", Size: 4, Reader: strings.NewReader("data")},
	}
	if err := svc.Complete(context.Background(), expert.UserID, sess.ID, "went well", uploads); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	got := repo.sessions[sess.ID]
	if got.State != models.SessionCompleted {
		t.Fatalf("state: got %q, want completed", got.State)
	}
	if got.Notes == nil || got.Notes.Text != "went well" || len(got.Notes.Files) != 1 {
		t.Fatalf("unexpected notes: %+v", got.Notes)
	}
	if len(files.uploaded) != 1 {
		t.Fatalf("expected one upload, got %d", len(files.uploaded))
	}
}

func TestCompleteOnlyForOwner(t *testing.T) {
	expert := &models.Expert{ID: uuid.New(), UserID: uuid.New(), Status: models.ApprovalApproved}
	sess := bookedSession(uuid.New(), uuid.New(), "2020-01-01", "10:00")
	svc := NewService(logger.New("test"), newFakeSessionRepo(sess), &fakeExpertRepo{expert: expert}, &fakeFileStore{})

	if err := svc.Complete(context.Background(), expert.UserID, sess.ID, "", nil); err != app_errors.ErrNotSlotOwner {
		t.Fatalf("got %v, want ErrNotSlotOwner", err)
	}
}

func TestCancelByEitherParty(t *testing.T) {
	expert := &models.Expert{ID: uuid.New(), UserID: uuid.New(), Status: models.ApprovalApproved}
	studentID := uuid.New()

	for _, tc := range []struct {
		name   string
		caller uuid.UUID
	}{
		{"student", studentID},
		{"expert", expert.UserID},
	} {
		sess := bookedSession(expert.ID, studentID, "2026-09-01", "10:00")
		repo := newFakeSessionRepo(sess)
		svc := NewService(logger.New("test"), repo, &fakeExpertRepo{expert: expert}, &fakeFileStore{})

		if err := svc.Cancel(context.Background(), tc.caller, sess.ID); err != nil {
			t.Fatalf("%s cancel: %v", tc.name, err)
		}
		if repo.sessions[sess.ID].State != models.SessionCancelled {
			t.Fatalf("%s cancel: state not cancelled", tc.name)
		}
	}
}

func TestCancelRejectsOutsider(t *testing.T) {
	expert := &models.Expert{ID: uuid.New(), UserID: uuid.New(), Status: models.ApprovalApproved}
	sess := bookedSession(expert.ID, uuid.New(), "2026-09-01", "10:00")
	svc := NewService(logger.New("test"), newFakeSessionRepo(sess), &fakeExpertRepo{expert: expert}, &fakeFileStore{})

	if err := svc.Cancel(context.Background(), uuid.New(), sess.ID); err != app_errors.ErrNotSessionParty {
		t.Fatalf("got %v, want ErrNotSessionParty", err)
	}
}

func TestCancelOnlyBooked(t *testing.T) {
	expert := &models.Expert{ID: uuid.New(), UserID: uuid.New(), Status: models.ApprovalApproved}
	studentID := uuid.New()
	sess := bookedSession(expert.ID, studentID, "2026-09-01", "10:00")
	sess.State = models.SessionCompleted
	svc := NewService(logger.New("test"), newFakeSessionRepo(sess), &fakeExpertRepo{expert: expert}, &fakeFileStore{})

	if err := svc.Cancel(context.Background(), studentID, sess.ID); err != app_errors.ErrWrongSessionState {
		t.Fatalf("got %v, want ErrWrongSessionState", err)
	}
}

func TestSubmitFeedback(t *testing.T) {
	expert := &models.Expert{ID: uuid.New(), UserID: uuid.New(), Status: models.ApprovalApproved}
	studentID := uuid.New()
	sess := bookedSession(expert.ID, studentID, "2020-01-01", "10:00")
	sess.State = models.SessionCompleted
	repo := newFakeSessionRepo(sess)
	svc := NewService(logger.New("test"), repo, &fakeExpertRepo{expert: expert}, &fakeFileStore{})

	if err := svc.SubmitFeedback(context.Background(), studentID, sess.ID, models.Feedback{Rating: 0}); err != app_errors.ErrInvalidRating {
		t.Fatalf("rating 0: got %v, want ErrInvalidRating", err)
	}
	if err := svc.SubmitFeedback(context.Background(), studentID, sess.ID, models.Feedback{Rating: 6}); err != app_errors.ErrInvalidRating {
		t.Fatalf("rating 6: got %v, want ErrInvalidRating", err)
	}

	first := models.Feedback{Rating: 4, Heading: "Good", Description: "solid session"}
	if err := svc.SubmitFeedback(context.Background(), studentID, sess.ID, first); err != nil {
		t.Fatalf("SubmitFeedback: %v", err)
	}

	// Resubmission overwrites, never duplicates.
	second := models.Feedback{Rating: 5, Heading: "Great"}
	if err := svc.SubmitFeedback(context.Background(), studentID, sess.ID, second); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if got := repo.sessions[sess.ID].Feedback; got == nil || got.Rating != 5 || got.Heading != "Great" {
		t.Fatalf("feedback not overwritten: %+v", got)
	}
}

func TestDetailVisibility(t *testing.T) {
	expert := &models.Expert{ID: uuid.New(), UserID: uuid.New(), Status: models.ApprovalApproved}
	studentID := uuid.New()

	open := &models.Session{
		ID:        uuid.New(),
		ExpertID:  expert.ID,
		Date:      "2030-01-01",
		StartTime: "10:00",
		EndTime:   "11:00",
		State:     models.SessionAvailable,
	}
	booked := bookedSession(expert.ID, studentID, "2026-09-01", "10:00")
	svc := NewService(logger.New("test"), newFakeSessionRepo(open, booked), &fakeExpertRepo{expert: expert}, &fakeFileStore{})

	// Anyone signed in can look at an open slot.
	if _, err := svc.Detail(context.Background(), uuid.New(), open.ID); err != nil {
		t.Fatalf("open slot detail: %v", err)
	}

	for _, tc := range []struct {
		name   string
		caller uuid.UUID
	}{
		{"student", studentID},
		{"expert", expert.UserID},
	} {
		if _, err := svc.Detail(context.Background(), tc.caller, booked.ID); err != nil {
			t.Fatalf("%s detail: %v", tc.name, err)
		}
	}

	if _, err := svc.Detail(context.Background(), uuid.New(), booked.ID); err != app_errors.ErrNotSessionParty {
		t.Fatalf("outsider: got %v, want ErrNotSessionParty", err)
	}
}

func TestSubmitFeedbackOnlyCompleted(t *testing.T) {
	expert := &models.Expert{ID: uuid.New(), UserID: uuid.New(), Status: models.ApprovalApproved}
	studentID := uuid.New()
	sess := bookedSession(expert.ID, studentID, "2020-01-01", "10:00")
	svc := NewService(logger.New("test"), newFakeSessionRepo(sess), &fakeExpertRepo{expert: expert}, &fakeFileStore{})

	err := svc.SubmitFeedback(context.Background(), studentID, sess.ID, models.Feedback{Rating: 5})
	if err != app_errors.ErrFeedbackNotAllowed {
		t.Fatalf("got %v, want ErrFeedbackNotAllowed", err)
	}
}
