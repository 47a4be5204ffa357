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
	"github.com/Indieguru/indieguru-website-sub000/internal/service/refund"
	"github.com/Indieguru/indieguru-website-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RefundRequestService interface {
	Request(ctx context.Context, studentID, sessionID uuid.UUID, reason string, uploads []refund.DocumentUpload) error
}

type RefundHandler struct {
	log     logger.Log
	service RefundRequestService
}

func NewRefundHandler(l logger.Log, s RefundRequestService) *RefundHandler {
	return &RefundHandler{
		log:     l,
		service: s,
	}
}

// Request takes multipart form data: a "reason" text field plus optional
// "documents" attachments backing up the claim.
func (h *RefundHandler) Request(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}
	studentID, ok := middleware.ClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	reason := c.PostForm("reason")

	var uploads []refund.DocumentUpload
	var openFiles []multipart.File
	defer func() {
		for _, f := range openFiles {
			f.Close()
		}
	}()
	for _, fileHeader := range form.File["documents"] {
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
		uploads = append(uploads, refund.DocumentUpload{
			Filename:    fileHeader.Filename,
			ContentType: contentType,
			Size:        fileHeader.Size,
			Reader:      file,
		})
	}

	err = h.service.Request(c.Request.Context(), studentID, sessionID, reason, uploads)
	if err != nil {
		switch {
		case errors.Is(err, app_errors.ErrReasonRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrSlotNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrNotSessionParty):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrRefundNotAllowed), errors.Is(err, app_errors.ErrRefundAlreadyRequested):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			h.log.ErrorErr("error requesting refund", err)
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "requested"})
}
