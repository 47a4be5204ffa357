package models

import "github.com/google/uuid"

const (
	StudentRole = "student"
	ExpertRole  = "expert"
	AdminRole   = "admin"
)

const (
	OTPChannelEmail = "email"
	OTPChannelPhone = "phone"

	OTPPurposeSignup = "signup"
	OTPPurposeLogin  = "login"
)

type User struct {
	ID    uuid.UUID
	Name  string
	Email string
	Phone string
	Roles []string
}

func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
