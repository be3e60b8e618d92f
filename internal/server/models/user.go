package models

import (
	"slices"
	"time"
)

// Roles a user can pick at signup. "admin" is deliberately absent.
var SignupRoles = []string{"student", "researcher", "gardener", "educator", "hobbyist", "other"}

// IsSignupRole reports whether role may be chosen at signup.
func IsSignupRole(role string) bool {
	return slices.Contains(SignupRoles, role)
}

// User is a stored account. OTPCode and OTPExpiresAt are either both nil or
// both set.
type User struct {
	ID           int64
	FullName     string
	Email        string
	Role         string
	PasswordHash string
	OTPCode      *string
	OTPExpiresAt *time.Time
	CreatedAt    time.Time
}

// HasPendingOTP reports whether a code is currently stored, regardless of
// whether it has expired.
func (u *User) HasPendingOTP() bool {
	return u.OTPCode != nil && u.OTPExpiresAt != nil
}

// PublicUser is the projection of a User that may leave the server.
type PublicUser struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, FullName: u.FullName, Email: u.Email, Role: u.Role}
}
