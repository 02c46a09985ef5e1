// File: internal/services/user_services/errors.go
package user_services

import (
	"errors"
	"fmt"
)

// Lock-level failures. These never cross the request controller boundary;
// the controller translates them to ErrInvalidCredentials so an external
// caller cannot probe whether a code exists, is wrong, or is locked out.
var (
	ErrInvalidSecret = errors.New("secret does not match")
	ErrLockedOut     = errors.New("lock attempt limit reached")
)

// ErrInvalidCredentials is the single caller-facing failure for every
// verification problem: unknown request, expired request, wrong code,
// exhausted attempts. Deliberately undifferentiated.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrEmailTaken and ErrUsernameTaken are registration conflicts.
var (
	ErrEmailTaken    = errors.New("user with this email already exists")
	ErrUsernameTaken = errors.New("username already taken")
)

// ErrAccountUnverified blocks login until email verification completes.
var ErrAccountUnverified = errors.New("account not verified")

// OptionKind classifies why an input option was rejected.
type OptionKind string

const (
	OptionRequired    OptionKind = "required"
	OptionUnsupported OptionKind = "unsupported"
	OptionInvalid     OptionKind = "invalid"
)

// OptionError reports a missing or malformed input to any operation. Always
// recoverable by the caller fixing its input; never retried automatically.
type OptionError struct {
	Option string
	Kind   OptionKind
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("invalid option %q: %s", e.Option, e.Kind)
}

// NewOptionError builds an OptionError for the named option.
func NewOptionError(option string, kind OptionKind) *OptionError {
	return &OptionError{Option: option, Kind: kind}
}

// CredentialsDetail is an internal-only sub-code carried by a
// CredentialsError for logging. The HTTP layer must not branch on it.
type CredentialsDetail string

const (
	DetailCredentialsExpired  CredentialsDetail = "CredentialsExpired"
	DetailRequestNotFound     CredentialsDetail = "RequestNotFound"
	DetailSecretMismatch      CredentialsDetail = "SecretMismatch"
	DetailAttemptsExceeded    CredentialsDetail = "AttemptsExceeded"
	DetailAccountNotFound     CredentialsDetail = "AccountNotFound"
	DetailPasswordLockMissing CredentialsDetail = "PasswordLockMissing"
)

// CredentialsError wraps ErrInvalidCredentials with an internal detail so
// server-side logs can distinguish an expired code from a wrong one while the
// API response stays identical.
type CredentialsError struct {
	Detail CredentialsDetail
}

func (e *CredentialsError) Error() string {
	return fmt.Sprintf("%v (%s)", ErrInvalidCredentials, e.Detail)
}

// Unwrap makes errors.Is(err, ErrInvalidCredentials) hold for every detail.
func (e *CredentialsError) Unwrap() error {
	return ErrInvalidCredentials
}

func newCredentialsError(detail CredentialsDetail) *CredentialsError {
	return &CredentialsError{Detail: detail}
}
