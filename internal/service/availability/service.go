package availability

import (
	"context"

	"github.com/Indieguru/indieguru-website-sub000/internal/app_errors"
	"github.com/Indieguru/indieguru-website-sub000/internal/models"
	"github.com/Indieguru/indieguru-website-sub000/pkg/logger"
	"github.com/google/uuid"
)

type expertRepo interface {
	ExpertByUserID(ctx context.Context, userID uuid.UUID) (*models.Expert, error)
	ExpertByID(ctx context.Context, id uuid.UUID) (*models.Expert, error)
}

type sessionRepo interface {
	CreateSlot(ctx context.Context, slot *models.Session) (uuid.UUID, error)
	SlotExists(ctx context.Context, expertID uuid.UUID, date, start, end string) (bool, error)
	SessionByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
	ListByExpert(ctx context.Context, expertID uuid.UUID) ([]models.Session, error)
	ListAvailableByExpert(ctx context.Context, expertID uuid.UUID) ([]models.Session, error)
	DeleteAvailable(ctx context.Context, id uuid.UUID) error
}

type SlotInput struct {
	Date      string
	StartTime string
	EndTime   string
}

type Service struct {
	log         logger.Log
	expertRepo  expertRepo
	sessionRepo sessionRepo
}

func NewService(l logger.Log, eRepo expertRepo, sRepo sessionRepo) *Service {
	return &Service{
		log:         l,
		expertRepo:  eRepo,
		sessionRepo: sRepo,
	}
}

// AddSlots persists a batch of availability slots, silently skipping exact
// (date, start, end) duplicates. Each new slot snapshots the expert's current
// rate card; approving a new rate later never touches existing slots.
func (s *Service) AddSlots(ctx context.Context, expertUserID uuid.UUID, batch []SlotInput) (added, duplicates int, err error) {
	expert, err := s.expertRepo.ExpertByUserID(ctx, expertUserID)
	if err != nil {
		return 0, 0, err
	}
	if !expert.Approved() {
		return 0, 0, app_errors.ErrExpertNotApproved
	}

	for _, in := range batch {
		if !models.ValidSchedule(in.Date, in.StartTime, in.EndTime) {
			return 0, 0, app_errors.ErrInvalidSchedule
		}
	}

	for _, in := range batch {
		exists, err := s.sessionRepo.SlotExists(ctx, expert.ID, in.Date, in.StartTime, in.EndTime)
		if err != nil {
			return added, duplicates, err
		}
		if exists {
			duplicates++
			continue
		}
		slot := &models.Session{
			ExpertID:  expert.ID,
			Date:      in.Date,
			StartTime: in.StartTime,
			EndTime:   in.EndTime,
			State:     models.SessionAvailable,
			Pricing: models.PriceSnapshot{
				ExpertFee:   expert.RateCard.SessionFee,
				PlatformFee: expert.RateCard.PlatformFee,
				Total:       expert.RateCard.SessionFee + expert.RateCard.PlatformFee,
				Currency:    expert.RateCard.Currency,
			},
		}
		if _, err := s.sessionRepo.CreateSlot(ctx, slot); err != nil {
			// a concurrent insert of the same tuple counts as a duplicate
			if err == app_errors.ErrSlotUnavailable {
				duplicates++
				continue
			}
			return added, duplicates, err
		}
		added++
	}
	return added, duplicates, nil
}

func (s *Service) MySessions(ctx context.Context, expertUserID uuid.UUID) ([]models.Session, error) {
	expert, err := s.expertRepo.ExpertByUserID(ctx, expertUserID)
	if err != nil {
		return nil, err
	}
	return s.sessionRepo.ListByExpert(ctx, expert.ID)
}

func (s *Service) AvailableSessions(ctx context.Context, expertUserID uuid.UUID) ([]models.Session, error) {
	expert, err := s.expertRepo.ExpertByUserID(ctx, expertUserID)
	if err != nil {
		return nil, err
	}
	return s.sessionRepo.ListAvailableByExpert(ctx, expert.ID)
}

// AvailableByExpertID is the student-facing view of an expert's open slots.
func (s *Service) AvailableByExpertID(ctx context.Context, expertID uuid.UUID) ([]models.Session, error) {
	if _, err := s.expertRepo.ExpertByID(ctx, expertID); err != nil {
		return nil, err
	}
	return s.sessionRepo.ListAvailableByExpert(ctx, expertID)
}

// DeleteSlot withdraws an unbooked slot. Anything past available is kept.
func (s *Service) DeleteSlot(ctx context.Context, expertUserID, slotID uuid.UUID) error {
	expert, err := s.expertRepo.ExpertByUserID(ctx, expertUserID)
	if err != nil {
		return err
	}
	slot, err := s.sessionRepo.SessionByID(ctx, slotID)
	if err != nil {
		return err
	}
	if slot.ExpertID != expert.ID {
		return app_errors.ErrNotSlotOwner
	}
	return s.sessionRepo.DeleteAvailable(ctx, slotID)
}
