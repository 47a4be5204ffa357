package catalog

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/Indieguru/indieguru-website-sub000/internal/app_errors"
	"github.com/Indieguru/indieguru-website-sub000/internal/delivery/http/controllers/middleware"
	"github.com/Indieguru/indieguru-website-sub000/internal/models"
	"github.com/Indieguru/indieguru-website-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CourseService interface {
	Create(ctx context.Context, userID uuid.UUID, title, description string) (uuid.UUID, error)
	MyCourses(ctx context.Context, userID uuid.UUID) ([]models.Course, error)
	MarkCompleted(ctx context.Context, userID, courseID uuid.UUID) error
	Enroll(ctx context.Context, studentID, courseID uuid.UUID) error
	EnrolledCourses(ctx context.Context, studentID uuid.UUID) ([]models.Course, error)
	EnrolledStudents(ctx context.Context, userID, courseID uuid.UUID) ([]uuid.UUID, error)
	Discover(ctx context.Context, query string, size int) ([]models.Course, error)
}

type CourseHandler struct {
	log     logger.Log
	service CourseService
}

func NewCourseHandler(l logger.Log, s CourseService) *CourseHandler {
	return &CourseHandler{
		log:     l,
		service: s,
	}
}

type newCourseRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
}

func (h *CourseHandler) Create(c *gin.Context) {
	var input newCourseRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, ok := middleware.ClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := h.service.Create(c.Request.Context(), userID, input.Title, input.Description)
	if err != nil {
		switch {
		case errors.Is(err, app_errors.ErrTitleRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrExpertNotApproved), errors.Is(err, app_errors.ErrExpertNotFound):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			h.log.ErrorErr("error creating course", err)
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *CourseHandler) MyCourses(c *gin.Context) {
	userID, ok := middleware.ClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	courses, err := h.service.MyCourses(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

func (h *CourseHandler) MarkCompleted(c *gin.Context) {
	courseID, ok := courseIDParam(c)
	if !ok {
		return
	}
	userID, ok := middleware.ClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	err := h.service.MarkCompleted(c.Request.Context(), userID, courseID)
	if err != nil {
		switch {
		case errors.Is(err, app_errors.ErrCourseNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrNotCourseOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			h.log.ErrorErr("error completing course", err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.ActivityCompleted})
}

func (h *CourseHandler) Enroll(c *gin.Context) {
	courseID, ok := courseIDParam(c)
	if !ok {
		return
	}
	studentID, ok := middleware.ClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	err := h.service.Enroll(c.Request.Context(), studentID, courseID)
	if err != nil {
		switch {
		case errors.Is(err, app_errors.ErrCourseNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrCourseNotApproved), errors.Is(err, app_errors.ErrCourseNotLive),
			errors.Is(err, app_errors.ErrAlreadyEnrolled):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			h.log.ErrorErr("error enrolling in course", err)
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "enrolled"})
}

func (h *CourseHandler) EnrolledCourses(c *gin.Context) {
	studentID, ok := middleware.ClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	courses, err := h.service.EnrolledCourses(c.Request.Context(), studentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

func (h *CourseHandler) EnrolledStudents(c *gin.Context) {
	courseID, ok := courseIDParam(c)
	if !ok {
		return
	}
	userID, ok := middleware.ClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	students, err := h.service.EnrolledStudents(c.Request.Context(), userID, courseID)
	if err != nil {
		switch {
		case errors.Is(err, app_errors.ErrCourseNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrNotCourseOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": students})
}

func (h *CourseHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	courses, err := h.service.Discover(c.Request.Context(), query, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		h.log.ErrorErr("error searching courses", err, "query", query)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

func courseIDParam(c *gin.Context) (uuid.UUID, bool) {
	raw, ok := c.Params.Get("course_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "course_id is required"})
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return uuid.Nil, false
	}
	return id, true
}
