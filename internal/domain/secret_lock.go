// File: internal/domain/secret_lock.go
package domain

import (
	"time"
)

// LockKind selects the hashing strategy that protects a lock's secret.
type LockKind string

const (
	// LockKindPassword is a long-lived lock guarding an account password.
	// Its secret is hashed with bcrypt.
	LockKindPassword LockKind = "password"
	// LockKindCode is a short-lived lock guarding a confirmation code.
	// Codes are single-use and rate limited, so a salted SHA-256 hash is enough.
	LockKindCode LockKind = "code"
)

// SecretLock protects a hashed secret behind a bounded number of unlock attempts.
// The plaintext secret is never stored; only its one-way hash.
type SecretLock struct {
	ID                     string   `gorm:"primaryKey;size:36" json:"id"`
	SecretHash             string   `gorm:"not null;size:255" json:"-"`
	Kind                   LockKind `gorm:"not null;size:20" json:"kind"`
	FailureCount           int      `gorm:"not null;default:0" json:"failure_count"`
	LastFailureAttemptedBy string   `gorm:"size:120" json:"last_failure_attempted_by"`
	DiscardAfterUnlock     bool     `gorm:"not null;default:false" json:"discard_after_unlock"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsLockedOut reports whether the lock has reached the hard failure ceiling.
// Once true, every unlock attempt must fail without comparing secrets.
func (l *SecretLock) IsLockedOut(maxFailures int) bool {
	return l.FailureCount >= maxFailures
}
