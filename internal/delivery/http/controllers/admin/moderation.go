package admin

import (
	"context"
	"errors"
	"net/http"

	"github.com/Indieguru/indieguru-website-sub000/internal/app_errors"
	"github.com/Indieguru/indieguru-website-sub000/internal/models"
	"github.com/Indieguru/indieguru-website-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ModerationService interface {
	Pending(ctx context.Context, kind string) (any, error)
	Approve(ctx context.Context, kind string, id uuid.UUID, extra models.ApprovalExtra) error
	Reject(ctx context.Context, kind string, id uuid.UUID, reason string) error
}

type ModerationHandler struct {
	log     logger.Log
	service ModerationService
}

func NewModerationHandler(l logger.Log, s ModerationService) *ModerationHandler {
	return &ModerationHandler{
		log:     l,
		service: s,
	}
}

func (h *ModerationHandler) Pending(c *gin.Context) {
	kind := c.Param("kind")
	items, err := h.service.Pending(c.Request.Context(), kind)
	if err != nil {
		if errors.Is(err, app_errors.ErrUnknownApprovalKind) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"kind": kind, "items": items})
}

type approveRequest struct {
	SessionFee  int64  `json:"session_fee"`
	PlatformFee int64  `json:"platform_fee"`
	Currency    string `json:"currency"`
}

func (h *ModerationHandler) Approve(c *gin.Context) {
	kind := c.Param("kind")
	id, ok := idParam(c)
	if !ok {
		return
	}
	// Body is optional for kinds with no rate card.
	var input approveRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	err := h.service.Approve(c.Request.Context(), kind, id, models.ApprovalExtra{
		SessionFee:  input.SessionFee,
		PlatformFee: input.PlatformFee,
		Currency:    input.Currency,
	})
	if err != nil {
		h.decideError(c, err, "approve", kind)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.ApprovalApproved})
}

type rejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *ModerationHandler) Reject(c *gin.Context) {
	kind := c.Param("kind")
	id, ok := idParam(c)
	if !ok {
		return
	}
	var input rejectRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.service.Reject(c.Request.Context(), kind, id, input.Reason)
	if err != nil {
		h.decideError(c, err, "reject", kind)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.ApprovalRejected})
}

func (h *ModerationHandler) decideError(c *gin.Context, err error, action, kind string) {
	switch {
	case errors.Is(err, app_errors.ErrUnknownApprovalKind):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrReasonRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrNotPending):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrExpertNotFound), errors.Is(err, app_errors.ErrCourseNotFound),
		errors.Is(err, app_errors.ErrCohortNotFound), errors.Is(err, app_errors.ErrBlogNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		h.log.ErrorErr("moderation "+action+" failed", err, "kind", kind)
	}
}

func idParam(c *gin.Context) (uuid.UUID, bool) {
	raw, ok := c.Params.Get("id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return uuid.Nil, false
	}
	return id, true
}
