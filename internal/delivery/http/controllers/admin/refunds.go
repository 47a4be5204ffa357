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

type RefundService interface {
	PendingRequests(ctx context.Context) ([]models.Session, error)
	Approve(ctx context.Context, sessionID uuid.UUID) error
	Reject(ctx context.Context, sessionID uuid.UUID, adminMessage string) error
	MarkProcessed(ctx context.Context, sessionID uuid.UUID, transactionID string) error
}

type RefundHandler struct {
	log     logger.Log
	service RefundService
}

func NewRefundHandler(l logger.Log, s RefundService) *RefundHandler {
	return &RefundHandler{
		log:     l,
		service: s,
	}
}

func (h *RefundHandler) Pending(c *gin.Context) {
	sessions, err := h.service.PendingRequests(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": sessions})
}

func (h *RefundHandler) Approve(c *gin.Context) {
	sessionID, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.service.Approve(c.Request.Context(), sessionID); err != nil {
		h.refundError(c, err, "approve")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.RefundApproved})
}

type refundRejectRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h *RefundHandler) Reject(c *gin.Context) {
	sessionID, ok := idParam(c)
	if !ok {
		return
	}
	var input refundRejectRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.Reject(c.Request.Context(), sessionID, input.Message); err != nil {
		h.refundError(c, err, "reject")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.RefundRejected})
}

type markProcessedRequest struct {
	TransactionID string `json:"transaction_id" binding:"required"`
}

func (h *RefundHandler) MarkProcessed(c *gin.Context) {
	sessionID, ok := idParam(c)
	if !ok {
		return
	}
	var input markProcessedRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.MarkProcessed(c.Request.Context(), sessionID, input.TransactionID); err != nil {
		h.refundError(c, err, "mark processed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "processed"})
}

func (h *RefundHandler) refundError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, app_errors.ErrSlotNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrReasonRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrRefundNotRequested),
		errors.Is(err, app_errors.ErrRefundAlreadyDecided),
		errors.Is(err, app_errors.ErrRefundNotApproved):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		h.log.ErrorErr("refund "+action+" failed", err)
	}
}
