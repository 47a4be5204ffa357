package session

import (
	"context"
	"errors"
	"net/http"

	"github.com/Indieguru/indieguru-website-sub000/internal/app_errors"
	"github.com/Indieguru/indieguru-website-sub000/internal/delivery/http/controllers/middleware"
	"github.com/Indieguru/indieguru-website-sub000/internal/models"
	"github.com/Indieguru/indieguru-website-sub000/internal/service/availability"
	"github.com/Indieguru/indieguru-website-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AvailabilityService interface {
	AddSlots(ctx context.Context, expertUserID uuid.UUID, batch []availability.SlotInput) (added, duplicates int, err error)
	MySessions(ctx context.Context, expertUserID uuid.UUID) ([]models.Session, error)
	AvailableSessions(ctx context.Context, expertUserID uuid.UUID) ([]models.Session, error)
	AvailableByExpertID(ctx context.Context, expertID uuid.UUID) ([]models.Session, error)
	DeleteSlot(ctx context.Context, expertUserID, slotID uuid.UUID) error
}

type AvailabilityHandler struct {
	log     logger.Log
	service AvailabilityService
}

func NewAvailabilityHandler(l logger.Log, s AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{
		log:     l,
		service: s,
	}
}

type slotRequest struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

type addSlotsRequest struct {
	Slots []slotRequest `json:"slots" binding:"required,min=1"`
}

func (h *AvailabilityHandler) AddSlots(c *gin.Context) {
	var input addSlotsRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, ok := middleware.ClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	batch := make([]availability.SlotInput, 0, len(input.Slots))
	for _, s := range input.Slots {
		batch = append(batch, availability.SlotInput{
			Date:      s.Date,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
		})
	}

	added, duplicates, err := h.service.AddSlots(c.Request.Context(), userID, batch)
	if err != nil {
		switch {
		case errors.Is(err, app_errors.ErrInvalidSchedule):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrExpertNotApproved), errors.Is(err, app_errors.ErrExpertNotFound):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			h.log.ErrorErr("error adding slots", err)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"added": added, "duplicates": duplicates})
}

func (h *AvailabilityHandler) MySessions(c *gin.Context) {
	userID, ok := middleware.ClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	list := h.service.MySessions
	if c.Query("state") == models.SessionAvailable {
		list = h.service.AvailableSessions
	}
	sessions, err := list(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (h *AvailabilityHandler) AvailableByExpert(c *gin.Context) {
	id, ok := c.Params.Get("expert_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expert_id is required"})
		return
	}
	expertID, err := uuid.Parse(id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessions, err := h.service.AvailableByExpertID(c.Request.Context(), expertID)
	if err != nil {
		if errors.Is(err, app_errors.ErrExpertNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (h *AvailabilityHandler) DeleteSlot(c *gin.Context) {
	id, ok := c.Params.Get("session_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}
	slotID, err := uuid.Parse(id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, ok := middleware.ClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	err = h.service.DeleteSlot(c.Request.Context(), userID, slotID)
	if err != nil {
		switch {
		case errors.Is(err, app_errors.ErrSlotNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrNotSlotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrSlotBooked):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			h.log.ErrorErr("error deleting slot", err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}
