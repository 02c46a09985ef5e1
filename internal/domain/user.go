// File: internal/domain/user.go
package domain

import (
	"errors"
	"regexp"
	"time"
)

// UserStatus is the account lifecycle state. Transitions are driven only
// through the email verification flow.
type UserStatus string

const (
	UserStatusPending UserStatus = "pending_verification"
	UserStatusActive  UserStatus = "active"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	emailRegex    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"uniqueIndex;not null;size:20" json:"username"`
	Email    string `gorm:"uniqueIndex;not null;size:120" json:"email"`

	// PasswordLockID references the reusable SecretLock guarding this
	// account's password. The lock id is stable across password resets.
	PasswordLockID string `gorm:"not null;size:36" json:"-"`

	Status     UserStatus `gorm:"not null;size:30;default:pending_verification" json:"status"`
	VerifiedAt *time.Time `gorm:"default:null" json:"verified_at,omitempty"`
	IsAdmin    bool       `gorm:"not null;default:false" json:"is_admin"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsVerified reports whether the account finished email verification.
func (u *User) IsVerified() bool {
	return u.Status == UserStatusActive
}

// IsValid checks the basic shape of a user record before persistence.
func (u *User) IsValid() error {
	if !usernameRegex.MatchString(u.Username) {
		return errors.New("username must be 3-20 characters, alphanumeric or underscore")
	}
	if !emailRegex.MatchString(u.Email) {
		return errors.New("email address format invalid")
	}
	if u.PasswordLockID == "" {
		return errors.New("password lock reference is required")
	}
	return nil
}
