package session

import (
	"context"
	"errors"
	"net/http"

	"github.com/Indieguru/indieguru-website-sub000/internal/app_errors"
	"github.com/Indieguru/indieguru-website-sub000/internal/delivery/http/controllers/middleware"
	"github.com/Indieguru/indieguru-website-sub000/internal/models"
	"github.com/Indieguru/indieguru-website-sub000/internal/service/booking"
	"github.com/Indieguru/indieguru-website-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingService interface {
	Book(ctx context.Context, studentID, slotID uuid.UUID, title string) (*booking.PaymentIntent, error)
	ConfirmPayment(ctx context.Context, orderID string) error
	MyBookings(ctx context.Context, studentID uuid.UUID) ([]models.Session, error)
}

type BookingHandler struct {
	log     logger.Log
	service BookingService
}

func NewBookingHandler(l logger.Log, s BookingService) *BookingHandler {
	return &BookingHandler{
		log:     l,
		service: s,
	}
}

type bookRequest struct {
	Title string `json:"title" binding:"required"`
}

func (h *BookingHandler) Book(c *gin.Context) {
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
	var input bookRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	studentID, ok := middleware.ClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	intent, err := h.service.Book(c.Request.Context(), studentID, slotID, input.Title)
	if err != nil {
		switch {
		case errors.Is(err, app_errors.ErrTitleRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrSlotNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrSlotUnavailable):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			h.log.ErrorErr("error booking session", err)
		}
		return
	}

	c.JSON(http.StatusOK, intent)
}

// paymentNotification is the shape of the gateway webhook. Only the order id
// is used; the settlement status is re-checked against the gateway.
type paymentNotification struct {
	OrderID string `json:"order_id" binding:"required"`
}

func (h *BookingHandler) PaymentNotification(c *gin.Context) {
	var input paymentNotification
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.service.ConfirmPayment(c.Request.Context(), input.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, app_errors.ErrSlotNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrPaymentFailed), errors.Is(err, app_errors.ErrHoldExpired):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			h.log.ErrorErr("error confirming payment", err, "order_id", input.OrderID)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *BookingHandler) MyBookings(c *gin.Context) {
	studentID, ok := middleware.ClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	sessions, err := h.service.MyBookings(c.Request.Context(), studentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}
