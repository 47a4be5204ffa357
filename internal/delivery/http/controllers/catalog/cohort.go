package catalog

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Indieguru/indieguru-website-sub000/internal/app_errors"
	"github.com/Indieguru/indieguru-website-sub000/internal/delivery/http/controllers/middleware"
	"github.com/Indieguru/indieguru-website-sub000/internal/service/cohort"
	"github.com/Indieguru/indieguru-website-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CohortService interface {
	Create(ctx context.Context, userID uuid.UUID, title, description string, startDate, endDate time.Time) (uuid.UUID, error)
	MyCohorts(ctx context.Context, userID uuid.UUID) ([]cohort.BucketedCohort, error)
	Listing(ctx context.Context) (map[string][]cohort.BucketedCohort, error)
	Enroll(ctx context.Context, studentID, cohortID uuid.UUID) error
}

type CohortHandler struct {
	log     logger.Log
	service CohortService
}

func NewCohortHandler(l logger.Log, s CohortService) *CohortHandler {
	return &CohortHandler{
		log:     l,
		service: s,
	}
}

type newCohortRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description" binding:"required"`
	StartDate   time.Time `json:"start_date" binding:"required"`
	EndDate     time.Time `json:"end_date" binding:"required"`
}

func (h *CohortHandler) Create(c *gin.Context) {
	var input newCohortRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, ok := middleware.ClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := h.service.Create(c.Request.Context(), userID, input.Title, input.Description, input.StartDate, input.EndDate)
	if err != nil {
		switch {
		case errors.Is(err, app_errors.ErrTitleRequired), errors.Is(err, app_errors.ErrInvalidSchedule):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrExpertNotApproved), errors.Is(err, app_errors.ErrExpertNotFound):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			h.log.ErrorErr("error creating cohort", err)
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *CohortHandler) MyCohorts(c *gin.Context) {
	userID, ok := middleware.ClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	cohorts, err := h.service.MyCohorts(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cohorts": cohorts})
}

func (h *CohortHandler) Listing(c *gin.Context) {
	grouped, err := h.service.Listing(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, grouped)
}

func (h *CohortHandler) Enroll(c *gin.Context) {
	raw, ok := c.Params.Get("cohort_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cohort_id is required"})
		return
	}
	cohortID, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	studentID, ok := middleware.ClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	err = h.service.Enroll(c.Request.Context(), studentID, cohortID)
	if err != nil {
		switch {
		case errors.Is(err, app_errors.ErrCohortNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrCohortNotApproved), errors.Is(err, app_errors.ErrCohortEnded),
			errors.Is(err, app_errors.ErrAlreadyEnrolled):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			h.log.ErrorErr("error enrolling in cohort", err)
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "enrolled"})
}
