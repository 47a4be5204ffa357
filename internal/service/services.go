package service

import (
	"github.com/Indieguru/indieguru-website-sub000/internal/service/auth"
	"github.com/Indieguru/indieguru-website-sub000/internal/service/availability"
	"github.com/Indieguru/indieguru-website-sub000/internal/service/blog"
	"github.com/Indieguru/indieguru-website-sub000/internal/service/booking"
	"github.com/Indieguru/indieguru-website-sub000/internal/service/cohort"
	"github.com/Indieguru/indieguru-website-sub000/internal/service/course"
	"github.com/Indieguru/indieguru-website-sub000/internal/service/moderation"
	"github.com/Indieguru/indieguru-website-sub000/internal/service/refund"
	"github.com/Indieguru/indieguru-website-sub000/internal/service/session"
)

type Collection struct {
	Auth         *auth.AuthService
	Availability *availability.Service
	Booking      *booking.Service
	Session      *session.Service
	Refund       *refund.Service
	Moderation   *moderation.Service
	Course       *course.Service
	Cohort       *cohort.Service
	Blog         *blog.Service
}
