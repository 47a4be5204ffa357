package models

const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

const (
	KindExpert = "expert"
	KindCourse = "course"
	KindCohort = "cohort"
	KindBlog   = "blog"
)

// ApprovalExtra carries the admin-supplied data attached to an approval:
// the rate card for experts, the platform fee for courses and cohorts.
type ApprovalExtra struct {
	SessionFee  int64
	PlatformFee int64
	Currency    string
}
