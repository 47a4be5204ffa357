package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Indieguru/indieguru-website-sub000/internal/app_errors"
	"github.com/Indieguru/indieguru-website-sub000/internal/models"
	"github.com/Indieguru/indieguru-website-sub000/pkg/logger"
	"github.com/google/uuid"
)

type sessionRepo interface {
	SessionByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
	SessionByOrderID(ctx context.Context, orderID string) (*models.Session, error)
	HoldForBooking(ctx context.Context, id, studentID uuid.UUID, title, orderID string, holdExpiresAt time.Time) error
	ConfirmBooking(ctx context.Context, id uuid.UUID, orderID, transactionID, meetingLink string) error
	ReleaseHold(ctx context.Context, id uuid.UUID, orderID string) error
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]models.Session, error)
}

type userRepo interface {
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type gateway interface {
	CreateOrder(ctx context.Context, orderID string, amount int64, description, customerName, customerEmail string) (token, redirectURL string, err error)
	OrderPaid(ctx context.Context, orderID string) (paid bool, transactionID string, err error)
}

// meetingLinker provisions the call link once a booking is paid for.
type meetingLinker interface {
	MeetingLink(sessionID uuid.UUID) string
}

// PaymentIntent is what the client needs to take the student through checkout.
type PaymentIntent struct {
	SessionID   uuid.UUID `json:"session_id"`
	OrderID     string    `json:"order_id"`
	SnapToken   string    `json:"snap_token"`
	RedirectURL string    `json:"redirect_url"`
	Amount      int64     `json:"amount"`
	Currency    string    `json:"currency"`
}

type Service struct {
	log         logger.Log
	sessionRepo sessionRepo
	userRepo    userRepo
	gateway     gateway
	linker      meetingLinker
	holdTTL     time.Duration
}

func NewService(l logger.Log, sRepo sessionRepo, uRepo userRepo, g gateway, linker meetingLinker, holdTTL time.Duration) *Service {
	return &Service{
		log:         l,
		sessionRepo: sRepo,
		userRepo:    uRepo,
		gateway:     g,
		linker:      linker,
		holdTTL:     holdTTL,
	}
}

// Book claims the slot with a single conditional write, then opens a payment
// order for the snapshot total. Losing the race surfaces as a conflict; the
// hold lapses after holdTTL if payment never settles.
func (s *Service) Book(ctx context.Context, studentID, slotID uuid.UUID, title string) (*PaymentIntent, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, app_errors.ErrTitleRequired
	}

	slot, err := s.sessionRepo.SessionByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if !slot.Bookable(time.Now()) {
		return nil, app_errors.ErrSlotUnavailable
	}

	orderID := uuid.NewString()
	holdExpiresAt := time.Now().Add(s.holdTTL)
	if err := s.sessionRepo.HoldForBooking(ctx, slotID, studentID, title, orderID, holdExpiresAt); err != nil {
		return nil, err
	}

	student, err := s.userRepo.UserByID(ctx, studentID)
	if err != nil {
		return nil, err
	}

	token, redirectURL, err := s.gateway.CreateOrder(ctx, orderID, slot.Pricing.Total, title, student.Name, student.Email)
	if err != nil {
		if relErr := s.sessionRepo.ReleaseHold(ctx, slotID, orderID); relErr != nil {
			s.log.ErrorErr("failed to release hold after gateway error", relErr, "session_id", slotID)
		}
		return nil, fmt.Errorf("payment order creation failed: %w", err)
	}

	return &PaymentIntent{
		SessionID:   slotID,
		OrderID:     orderID,
		SnapToken:   token,
		RedirectURL: redirectURL,
		Amount:      slot.Pricing.Total,
		Currency:    slot.Pricing.Currency,
	}, nil
}

// ConfirmPayment handles the gateway notification. The settlement is checked
// against the gateway rather than trusted from the callback body, and the
// booking write is keyed on the order id so a stale settlement cannot steal a
// re-claimed slot.
func (s *Service) ConfirmPayment(ctx context.Context, orderID string) error {
	session, err := s.sessionRepo.SessionByOrderID(ctx, orderID)
	if err != nil {
		return err
	}

	paid, transactionID, err := s.gateway.OrderPaid(ctx, orderID)
	if err != nil {
		return fmt.Errorf("payment status check failed: %w", err)
	}
	if !paid {
		return app_errors.ErrPaymentFailed
	}

	link := s.linker.MeetingLink(session.ID)
	return s.sessionRepo.ConfirmBooking(ctx, session.ID, orderID, transactionID, link)
}

func (s *Service) MyBookings(ctx context.Context, studentID uuid.UUID) ([]models.Session, error) {
	return s.sessionRepo.ListByStudent(ctx, studentID)
}
