package refund

import (
	"context"
	"io"
	"strings"

	"github.com/Indieguru/indieguru-website-sub000/internal/app_errors"
	"github.com/Indieguru/indieguru-website-sub000/internal/models"
	"github.com/Indieguru/indieguru-website-sub000/pkg/logger"
	"github.com/google/uuid"
)

type sessionRepo interface {
	SessionByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
	RequestRefund(ctx context.Context, id uuid.UUID, refund models.Refund) error
	DecideRefund(ctx context.Context, id uuid.UUID, refund models.Refund) error
	MarkRefundProcessed(ctx context.Context, id uuid.UUID, refund models.Refund) error
	ListByRefundStatus(ctx context.Context, status string) ([]models.Session, error)
}

type fileStore interface {
	UploadAttachment(ctx context.Context, sessionID uuid.UUID, kind, filename string, reader io.Reader, size int64, contentType string) (string, error)
	AttachmentURL(ctx context.Context, objectKey string) (string, error)
}

type DocumentUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

type Service struct {
	log         logger.Log
	sessionRepo sessionRepo
	files       fileStore
}

func NewService(l logger.Log, sRepo sessionRepo, files fileStore) *Service {
	return &Service{
		log:         l,
		sessionRepo: sRepo,
		files:       files,
	}
}

// Request opens a refund request on a cancelled session. One request per
// session; reason is mandatory, documents optional.
func (s *Service) Request(ctx context.Context, studentID, sessionID uuid.UUID, reason string, uploads []DocumentUpload) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return app_errors.ErrReasonRequired
	}
	session, err := s.sessionRepo.SessionByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.StudentID == nil || *session.StudentID != studentID {
		return app_errors.ErrNotSessionParty
	}
	if session.State != models.SessionCancelled {
		return app_errors.ErrRefundNotAllowed
	}
	if session.Refund != nil {
		return app_errors.ErrRefundAlreadyRequested
	}

	refund := models.Refund{
		Requested: true,
		Reason:    reason,
		Documents: []models.FileRef{},
		Status:    models.RefundPending,
	}
	for _, up := range uploads {
		objectKey, err := s.files.UploadAttachment(ctx, sessionID, "refund", up.Filename, up.Reader, up.Size, up.ContentType)
		if err != nil {
			return err
		}
		url, err := s.files.AttachmentURL(ctx, objectKey)
		if err != nil {
			return err
		}
		refund.Documents = append(refund.Documents, models.FileRef{Name: up.Filename, URL: url})
	}

	return s.sessionRepo.RequestRefund(ctx, sessionID, refund)
}

func (s *Service) PendingRequests(ctx context.Context) ([]models.Session, error) {
	return s.sessionRepo.ListByRefundStatus(ctx, models.RefundPending)
}

// Approve authorizes the refund. The actual payout stays manual; see
// MarkProcessed.
func (s *Service) Approve(ctx context.Context, sessionID uuid.UUID) error {
	refund, err := s.pendingRefund(ctx, sessionID)
	if err != nil {
		return err
	}
	refund.Status = models.RefundApproved
	return s.sessionRepo.DecideRefund(ctx, sessionID, *refund)
}

// Reject records the decision along with a message shown back to the student.
func (s *Service) Reject(ctx context.Context, sessionID uuid.UUID, adminMessage string) error {
	adminMessage = strings.TrimSpace(adminMessage)
	if adminMessage == "" {
		return app_errors.ErrReasonRequired
	}
	refund, err := s.pendingRefund(ctx, sessionID)
	if err != nil {
		return err
	}
	refund.Status = models.RefundRejected
	refund.AdminMessage = adminMessage
	return s.sessionRepo.DecideRefund(ctx, sessionID, *refund)
}

// MarkProcessed confirms the money actually moved, with the operator-supplied
// payout transaction id. Only approved requests qualify.
func (s *Service) MarkProcessed(ctx context.Context, sessionID uuid.UUID, transactionID string) error {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return app_errors.ErrReasonRequired
	}
	session, err := s.sessionRepo.SessionByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Refund == nil {
		return app_errors.ErrRefundNotRequested
	}
	if session.Refund.Status != models.RefundApproved {
		return app_errors.ErrRefundNotApproved
	}
	refund := *session.Refund
	refund.Processed = true
	refund.TransactionID = transactionID
	return s.sessionRepo.MarkRefundProcessed(ctx, sessionID, refund)
}

func (s *Service) pendingRefund(ctx context.Context, sessionID uuid.UUID) (*models.Refund, error) {
	session, err := s.sessionRepo.SessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Refund == nil {
		return nil, app_errors.ErrRefundNotRequested
	}
	if session.Refund.Status != models.RefundPending {
		return nil, app_errors.ErrRefundAlreadyDecided
	}
	refund := *session.Refund
	return &refund, nil
}
