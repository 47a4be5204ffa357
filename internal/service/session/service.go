package session

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/Indieguru/indieguru-website-sub000/internal/app_errors"
	"github.com/Indieguru/indieguru-website-sub000/internal/models"
	"github.com/Indieguru/indieguru-website-sub000/pkg/logger"
	"github.com/google/uuid"
)

type sessionRepo interface {
	SessionByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
	Complete(ctx context.Context, id uuid.UUID, notes models.SessionNotes) error
	Cancel(ctx context.Context, id uuid.UUID) error
	SetFeedback(ctx context.Context, id uuid.UUID, feedback models.Feedback) error
}

type expertRepo interface {
	ExpertByUserID(ctx context.Context, userID uuid.UUID) (*models.Expert, error)
}

type fileStore interface {
	UploadAttachment(ctx context.Context, sessionID uuid.UUID, kind, filename string, reader io.Reader, size int64, contentType string) (string, error)
	AttachmentURL(ctx context.Context, objectKey string) (string, error)
}

type FileUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

type Service struct {
	log         logger.Log
	sessionRepo sessionRepo
	expertRepo  expertRepo
	files       fileStore
}

func NewService(l logger.Log, sRepo sessionRepo, eRepo expertRepo, files fileStore) *Service {
	return &Service{
		log:         l,
		sessionRepo: sRepo,
		expertRepo:  eRepo,
		files:       files,
	}
}

// Complete closes out a booked session whose start has passed. Only the
// owning expert may complete; notes and attachments land on the session.
func (s *Service) Complete(ctx context.Context, expertUserID, sessionID uuid.UUID, notesText string, uploads []FileUpload) error {
	expert, err := s.expertRepo.ExpertByUserID(ctx, expertUserID)
	if err != nil {
		return err
	}
	session, err := s.sessionRepo.SessionByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.ExpertID != expert.ID {
		return app_errors.ErrNotSlotOwner
	}
	if session.State != models.SessionBooked {
		return app_errors.ErrWrongSessionState
	}
	if !session.StartedBefore(time.Now()) {
		return app_errors.ErrSessionNotStarted
	}

	notes := models.SessionNotes{Text: notesText, Files: []models.FileRef{}}
	for _, up := range uploads {
		objectKey, err := s.files.UploadAttachment(ctx, sessionID, "notes", up.Filename, up.Reader, up.Size, up.ContentType)
		if err != nil {
			return err
		}
		url, err := s.files.AttachmentURL(ctx, objectKey)
		if err != nil {
			return err
		}
		notes.Files = append(notes.Files, models.FileRef{Name: up.Filename, URL: url})
	}

	return s.sessionRepo.Complete(ctx, sessionID, notes)
}

// Cancel is open to either side of the booking.
func (s *Service) Cancel(ctx context.Context, userID, sessionID uuid.UUID) error {
	session, err := s.sessionRepo.SessionByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if !s.isParty(ctx, userID, session) {
		return app_errors.ErrNotSessionParty
	}
	if session.State != models.SessionBooked {
		return app_errors.ErrWrongSessionState
	}
	return s.sessionRepo.Cancel(ctx, sessionID)
}

func (s *Service) isParty(ctx context.Context, userID uuid.UUID, session *models.Session) bool {
	if session.StudentID != nil && *session.StudentID == userID {
		return true
	}
	expert, err := s.expertRepo.ExpertByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, app_errors.ErrExpertNotFound) {
			s.log.ErrorErr("failed to resolve expert for cancellation", err)
		}
		return false
	}
	return expert.ID == session.ExpertID
}

// SubmitFeedback attaches the student's rating once the session is completed.
// A resubmission overwrites the previous feedback.
func (s *Service) SubmitFeedback(ctx context.Context, studentID, sessionID uuid.UUID, feedback models.Feedback) error {
	if feedback.Rating < 1 || feedback.Rating > 5 {
		return app_errors.ErrInvalidRating
	}
	session, err := s.sessionRepo.SessionByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.StudentID == nil || *session.StudentID != studentID {
		return app_errors.ErrNotSessionParty
	}
	if session.State != models.SessionCompleted {
		return app_errors.ErrFeedbackNotAllowed
	}
	return s.sessionRepo.SetFeedback(ctx, sessionID, feedback)
}

// Detail returns a session. Open slots are visible to anyone signed in,
// everything past that only to the two parties involved.
func (s *Service) Detail(ctx context.Context, userID, sessionID uuid.UUID) (*models.Session, error) {
	session, err := s.sessionRepo.SessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Bookable(time.Now()) {
		return session, nil
	}
	if !s.isParty(ctx, userID, session) {
		return nil, app_errors.ErrNotSessionParty
	}
	return session, nil
}
