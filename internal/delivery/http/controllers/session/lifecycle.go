package session

import (
	"context"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/Indieguru/indieguru-website-sub000/internal/app_errors"
	"github.com/Indieguru/indieguru-website-sub000/internal/delivery/http/controllers/middleware"
	"github.com/Indieguru/indieguru-website-sub000/internal/models"
	"github.com/Indieguru/indieguru-website-sub000/internal/service/session"
	"github.com/Indieguru/indieguru-website-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type LifecycleService interface {
	Complete(ctx context.Context, expertUserID, sessionID uuid.UUID, notesText string, uploads []session.FileUpload) error
	Cancel(ctx context.Context, userID, sessionID uuid.UUID) error
	SubmitFeedback(ctx context.Context, studentID, sessionID uuid.UUID, feedback models.Feedback) error
	Detail(ctx context.Context, userID, sessionID uuid.UUID) (*models.Session, error)
}

type LifecycleHandler struct {
	log     logger.Log
	service LifecycleService
}

func NewLifecycleHandler(l logger.Log, s LifecycleService) *LifecycleHandler {
	return &LifecycleHandler{
		log:     l,
		service: s,
	}
}

// Complete takes multipart form data: a "notes" text field plus any number
// of "files" attachments.
func (h *LifecycleHandler) Complete(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}
	userID, ok := middleware.ClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	notesText := c.PostForm("notes")

	var uploads []session.FileUpload
	var openFiles []multipart.File
	defer func() {
		for _, f := range openFiles {
			f.Close()
		}
	}()
	for _, fileHeader := range form.File["files"] {
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot open uploaded file"})
			return
		}
		openFiles = append(openFiles, file)

		contentType := fileHeader.Header.Get("Content-Type")
		if contentType == "" {
			contentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(fileHeader.Filename)))
		}
		uploads = append(uploads, session.FileUpload{
			Filename:    fileHeader.Filename,
			ContentType: contentType,
			Size:        fileHeader.Size,
			Reader:      file,
		})
	}

	err = h.service.Complete(c.Request.Context(), userID, sessionID, notesText, uploads)
	if err != nil {
		switch {
		case errors.Is(err, app_errors.ErrSlotNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrNotSlotOwner), errors.Is(err, app_errors.ErrExpertNotFound):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrWrongSessionState), errors.Is(err, app_errors.ErrSessionNotStarted):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			h.log.ErrorErr("error completing session", err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "completed"})
}

func (h *LifecycleHandler) Cancel(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}
	userID, ok := middleware.ClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	err := h.service.Cancel(c.Request.Context(), userID, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, app_errors.ErrSlotNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrNotSessionParty):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrWrongSessionState):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			h.log.ErrorErr("error cancelling session", err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

type feedbackRequest struct {
	Rating      int    `json:"rating" binding:"required"`
	Heading     string `json:"heading"`
	Description string `json:"description"`
}

func (h *LifecycleHandler) SubmitFeedback(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}
	var input feedbackRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	studentID, ok := middleware.ClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	err := h.service.SubmitFeedback(c.Request.Context(), studentID, sessionID, models.Feedback{
		Rating:      input.Rating,
		Heading:     input.Heading,
		Description: input.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, app_errors.ErrInvalidRating):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrSlotNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrNotSessionParty):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrFeedbackNotAllowed):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			h.log.ErrorErr("error submitting feedback", err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *LifecycleHandler) Detail(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}
	userID, ok := middleware.ClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sess, err := h.service.Detail(c.Request.Context(), userID, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, app_errors.ErrSlotNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrNotSessionParty):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			h.log.ErrorErr("error loading session", err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess})
}

func sessionIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, ok := c.Params.Get("session_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return uuid.Nil, false
	}
	sessionID, err := uuid.Parse(id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return uuid.Nil, false
	}
	return sessionID, true
}
