package catalog

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/Indieguru/indieguru-website-sub000/internal/app_errors"
	"github.com/Indieguru/indieguru-website-sub000/internal/delivery/http/controllers/middleware"
	"github.com/Indieguru/indieguru-website-sub000/internal/models"
	"github.com/Indieguru/indieguru-website-sub000/internal/service/blog"
	"github.com/Indieguru/indieguru-website-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BlogService interface {
	Create(ctx context.Context, userID uuid.UUID, title, body string, cover *blog.CoverUpload) (uuid.UUID, error)
	MyPosts(ctx context.Context, userID uuid.UUID) ([]models.BlogPost, error)
	Published(ctx context.Context) ([]models.BlogPost, error)
	Post(ctx context.Context, id uuid.UUID) (*models.BlogPost, error)
}

type BlogHandler struct {
	log     logger.Log
	service BlogService
}

func NewBlogHandler(l logger.Log, s BlogService) *BlogHandler {
	return &BlogHandler{
		log:     l,
		service: s,
	}
}

// Create takes multipart form data: "title" and "body" fields plus an
// optional "cover" image.
func (h *BlogHandler) Create(c *gin.Context) {
	userID, ok := middleware.ClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	title := c.PostForm("title")
	body := c.PostForm("body")

	var cover *blog.CoverUpload
	if fileHeader, err := c.FormFile("cover"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot open uploaded file"})
			return
		}
		defer file.Close()

		contentType := fileHeader.Header.Get("Content-Type")
		if contentType == "" {
			contentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(fileHeader.Filename)))
		}
		cover = &blog.CoverUpload{
			Filename:    fileHeader.Filename,
			ContentType: contentType,
			Size:        fileHeader.Size,
			Reader:      file,
		}
	}

	id, err := h.service.Create(c.Request.Context(), userID, title, body, cover)
	if err != nil {
		switch {
		case errors.Is(err, app_errors.ErrTitleRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrExpertNotApproved), errors.Is(err, app_errors.ErrExpertNotFound):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrFileSize):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			h.log.ErrorErr("error creating blog post", err)
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *BlogHandler) MyPosts(c *gin.Context) {
	userID, ok := middleware.ClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	posts, err := h.service.MyPosts(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (h *BlogHandler) Published(c *gin.Context) {
	posts, err := h.service.Published(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (h *BlogHandler) Post(c *gin.Context) {
	raw, ok := c.Params.Get("post_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "post_id is required"})
		return
	}
	postID, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.service.Post(c.Request.Context(), postID)
	if err != nil {
		if errors.Is(err, app_errors.ErrBlogNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, post)
}
