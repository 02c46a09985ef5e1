// File: internal/domain/protected_request.go
package domain

import (
	"time"
)

// ProtectedAction identifies which sensitive account action a request gates.
type ProtectedAction string

const (
	ActionVerifyAccountEmail ProtectedAction = "verify_account_email"
	ActionResetPassword      ProtectedAction = "reset_password"
)

// IsValid reports whether the action is one of the supported actions.
func (a ProtectedAction) IsValid() bool {
	switch a {
	case ActionVerifyAccountEmail, ActionResetPassword:
		return true
	}
	return false
}

// RequestStatus is the lifecycle state of a protected action request.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusCancelled RequestStatus = "cancelled"
	RequestStatusFulfilled RequestStatus = "fulfilled"
)

// Audit reasons recorded alongside status transitions. Reasons are free-text;
// these are the ones the engine itself writes.
const (
	ReasonUserRequested          = "UserRequested"
	ReasonNewRequestMade         = "NewRequestMade"
	ReasonVerificationSuccessful = "VerificationSuccessful"
	ReasonAccountDeleted         = "AccountDeleted"
)

// ProtectedActionRequest binds a user, an action, and the confirmation-code
// lock that gates it. At most one request per (user, action) pair may be
// pending at any time; new requests cancel older pending ones.
type ProtectedActionRequest struct {
	ID     uint            `gorm:"primaryKey" json:"id"`
	UserID uint            `gorm:"index:idx_par_user_action;not null" json:"user_id"`
	Action ProtectedAction `gorm:"index:idx_par_user_action;not null;size:40" json:"action"`
	LockID string          `gorm:"not null;size:36" json:"lock_id"`

	// ExpiresAt is the business deadline, checked on read. Requests past it
	// fail verification regardless of stored status.
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`

	StatusValue     RequestStatus `gorm:"index;not null;size:20" json:"status"`
	StatusReason    string        `gorm:"size:120" json:"status_reason"`
	StatusUpdatedAt time.Time     `json:"status_updated_at"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsExpired reports whether the business deadline has passed.
func (r *ProtectedActionRequest) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// IsPending reports whether the request can still be verified or superseded.
func (r *ProtectedActionRequest) IsPending() bool {
	return r.StatusValue == RequestStatusPending
}

// SetStatus records a status transition with its audit reason. Terminal states
// (cancelled, fulfilled) are immutable; transitions out of them are rejected
// at the service layer, this setter only records the tuple.
func (r *ProtectedActionRequest) SetStatus(value RequestStatus, reason string, now time.Time) {
	r.StatusValue = value
	r.StatusReason = reason
	r.StatusUpdatedAt = now
}
