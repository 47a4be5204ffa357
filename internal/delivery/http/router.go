package http

import (
	"time"

	"github.com/Indieguru/indieguru-website-sub000/internal/delivery/http/controllers"
	"github.com/Indieguru/indieguru-website-sub000/internal/delivery/http/controllers/admin"
	"github.com/Indieguru/indieguru-website-sub000/internal/delivery/http/controllers/auth"
	"github.com/Indieguru/indieguru-website-sub000/internal/delivery/http/controllers/catalog"
	"github.com/Indieguru/indieguru-website-sub000/internal/delivery/http/controllers/middleware"
	"github.com/Indieguru/indieguru-website-sub000/internal/delivery/http/controllers/session"
	"github.com/Indieguru/indieguru-website-sub000/internal/models"
	"github.com/Indieguru/indieguru-website-sub000/internal/service"
	"github.com/Indieguru/indieguru-website-sub000/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func InitRoutes(l logger.Log, u service.Collection, corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	config := cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	r.Use(cors.New(config))

	authProvider := middleware.NewAuthMiddlewareProvider(l, u.Auth)

	statusController := controllers.NewStatusHandler()
	authController := auth.NewAuthHandler(l, u.Auth)
	availabilityController := session.NewAvailabilityHandler(l, u.Availability)
	bookingController := session.NewBookingHandler(l, u.Booking)
	lifecycleController := session.NewLifecycleHandler(l, u.Session)
	refundController := session.NewRefundHandler(l, u.Refund)
	moderationController := admin.NewModerationHandler(l, u.Moderation)
	adminRefundController := admin.NewRefundHandler(l, u.Refund)
	courseController := catalog.NewCourseHandler(l, u.Course)
	cohortController := catalog.NewCohortHandler(l, u.Cohort)
	blogController := catalog.NewBlogHandler(l, u.Blog)

	v1 := r.Group("/v1", middleware.LoggingMiddleware(l))
	{
		v1.GET("/status", statusController.Status)

		v1.GET("/me", authProvider.AuthMiddleware, authController.Me)

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/otp", authController.RequestOTP)
			authGroup.POST("/signup", authController.VerifySignup)
			authGroup.POST("/login", authController.VerifyLogin)
			authGroup.POST("/refresh", authController.Refresh)
		}

		v1.GET("/experts/:expert_id/sessions", availabilityController.AvailableByExpert)
		v1.GET("/courses/search", courseController.Search)
		v1.GET("/cohorts", cohortController.Listing)
		v1.GET("/blogs", blogController.Published)
		v1.GET("/blogs/:post_id", blogController.Post)

		// Payment gateway webhook; the settlement is verified server side.
		v1.POST("/payments/notification", bookingController.PaymentNotification)

		expert := v1.Group("", authProvider.AuthMiddleware, middleware.RequireRoles(models.ExpertRole))
		{
			expert.POST("/sessions/slots", availabilityController.AddSlots)
			expert.GET("/sessions/my", availabilityController.MySessions)
			expert.DELETE("/sessions/:session_id", availabilityController.DeleteSlot)
			expert.POST("/sessions/:session_id/complete", lifecycleController.Complete)

			expert.POST("/courses", courseController.Create)
			expert.GET("/courses/my", courseController.MyCourses)
			expert.PATCH("/courses/:course_id/complete", courseController.MarkCompleted)
			expert.GET("/courses/:course_id/students", courseController.EnrolledStudents)

			expert.POST("/cohorts", cohortController.Create)
			expert.GET("/cohorts/my", cohortController.MyCohorts)

			expert.POST("/blogs", blogController.Create)
			expert.GET("/blogs/my", blogController.MyPosts)
		}

		student := v1.Group("", authProvider.AuthMiddleware, middleware.RequireRoles(models.StudentRole))
		{
			student.POST("/sessions/:session_id/book", bookingController.Book)
			student.GET("/bookings", bookingController.MyBookings)
			student.POST("/sessions/:session_id/feedback", lifecycleController.SubmitFeedback)
			student.POST("/sessions/:session_id/refund-request", refundController.Request)

			student.POST("/courses/:course_id/enroll", courseController.Enroll)
			student.GET("/courses/enrolled", courseController.EnrolledCourses)
			student.POST("/cohorts/:cohort_id/enroll", cohortController.Enroll)
		}

		// Either side of a booked session may cancel or inspect it.
		v1.POST("/sessions/:session_id/cancel", authProvider.AuthMiddleware,
			middleware.RequireRoles(models.StudentRole, models.ExpertRole), lifecycleController.Cancel)
		v1.GET("/sessions/:session_id", authProvider.AuthMiddleware,
			middleware.RequireRoles(models.StudentRole, models.ExpertRole), lifecycleController.Detail)

		adminGroup := v1.Group("/admin", authProvider.AuthMiddleware, middleware.RequireRoles(models.AdminRole))
		{
			adminGroup.GET("/moderation/:kind", moderationController.Pending)
			adminGroup.PATCH("/moderation/:kind/:id/approve", moderationController.Approve)
			adminGroup.PATCH("/moderation/:kind/:id/reject", moderationController.Reject)

			adminGroup.GET("/refund-requests", adminRefundController.Pending)
			adminGroup.PATCH("/refund-requests/:id/approve", adminRefundController.Approve)
			adminGroup.PATCH("/refund-requests/:id/reject", adminRefundController.Reject)
			adminGroup.PATCH("/refund-requests/:id/process", adminRefundController.MarkProcessed)
		}
	}
	return r
}
