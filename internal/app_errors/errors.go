package app_errors

import "errors"

var ErrUserExists = errors.New("user already exists")
var ErrUserNotFound = errors.New("user not found")
var ErrTokenNotFound = errors.New("token not found")
var ErrTokenExpired = errors.New("token expired")

var ErrOTPNotFound = errors.New("otp not requested or expired")
var ErrOTPMismatch = errors.New("incorrect otp code")
var ErrOTPTooManyAttempts = errors.New("too many otp attempts")

var ErrExpertNotFound = errors.New("expert not found")
var ErrExpertNotApproved = errors.New("expert profile is not approved")

var ErrInvalidSchedule = errors.New("invalid slot date or time range")
var ErrSlotNotFound = errors.New("session not found")
var ErrSlotUnavailable = errors.New("session slot is no longer available")
var ErrSlotBooked = errors.New("session slot is already booked")
var ErrNotSlotOwner = errors.New("you are not the owner of this session")
var ErrNotSessionParty = errors.New("you are not a participant of this session")
var ErrWrongSessionState = errors.New("session is in the wrong state for this action")
var ErrSessionNotStarted = errors.New("session has not taken place yet")
var ErrHoldExpired = errors.New("payment hold has expired")

var ErrTitleRequired = errors.New("session title is required")

var ErrFeedbackNotAllowed = errors.New("feedback is only allowed for completed sessions")
var ErrInvalidRating = errors.New("rating must be between 1 and 5")

var ErrRefundNotAllowed = errors.New("refund can only be requested for cancelled sessions")
var ErrRefundAlreadyRequested = errors.New("refund already requested for this session")
var ErrRefundNotRequested = errors.New("no refund request for this session")
var ErrRefundAlreadyDecided = errors.New("refund request already decided")
var ErrRefundNotApproved = errors.New("refund request is not approved")

var ErrReasonRequired = errors.New("rejection reason is required")
var ErrNotPending = errors.New("entity is not pending approval")
var ErrUnknownApprovalKind = errors.New("unknown approval kind")

var ErrCourseNotFound = errors.New("course not found")
var ErrCourseNotApproved = errors.New("course is not approved")
var ErrCourseNotLive = errors.New("course is not live")
var ErrNotCourseOwner = errors.New("you are not the owner of this course")
var ErrAlreadyEnrolled = errors.New("already enrolled")

var ErrCohortNotFound = errors.New("cohort not found")
var ErrCohortNotApproved = errors.New("cohort is not approved")
var ErrCohortEnded = errors.New("cohort has already ended")

var ErrBlogNotFound = errors.New("blog post not found")

var ErrFileSize = errors.New("file size error")
var ErrPaymentFailed = errors.New("payment was not successful")
