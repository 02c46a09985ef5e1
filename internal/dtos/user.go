// File: internal/dtos/user.go
package dtos

import (
	"time"

	"github.com/quailbyte/go-accountsvc/internal/domain"
)

// UserResponseDTO defines what fields to expose in user API responses.
// The password lock reference and other internal fields are excluded.
type UserResponseDTO struct {
	ID         uint   `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Status     string `json:"status"`
	IsVerified bool   `json:"is_verified"`
	IsAdmin    bool   `json:"is_admin"`
	VerifiedAt string `json:"verified_at,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// ToUserResponseDTO maps a domain user to its API shape.
func ToUserResponseDTO(u *domain.User) UserResponseDTO {
	dto := UserResponseDTO{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Status:     string(u.Status),
		IsVerified: u.IsVerified(),
		IsAdmin:    u.IsAdmin,
		CreatedAt:  u.CreatedAt.Format(time.RFC3339),
	}
	if u.VerifiedAt != nil {
		dto.VerifiedAt = u.VerifiedAt.Format(time.RFC3339)
	}
	return dto
}

// RegisterRequestDTO represents the expected payload to create an account.
type RegisterRequestDTO struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequestDTO represents the login payload.
type LoginRequestDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponseDTO represents the login response.
type LoginResponseDTO struct {
	User  UserResponseDTO `json:"user"`
	Token string          `json:"token"`
}

// EmailRequestDTO carries flows keyed by email only.
type EmailRequestDTO struct {
	Email string `json:"email"`
}

// ConfirmCodeRequestDTO carries an email plus its confirmation code.
type ConfirmCodeRequestDTO struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// ResetPasswordRequestDTO completes the forgot-password flow.
type ResetPasswordRequestDTO struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

// UpdateUsernameRequestDTO renames the logged-in user's account.
type UpdateUsernameRequestDTO struct {
	Username string `json:"username"`
}

// ChangePasswordRequestDTO changes the password of a logged-in user.
type ChangePasswordRequestDTO struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// RequestHistoryEntryDTO is one audit row of a protected action request.
type RequestHistoryEntryDTO struct {
	ID           uint   `json:"id"`
	Action       string `json:"action"`
	Status       string `json:"status"`
	StatusReason string `json:"status_reason,omitempty"`
	ExpiresAt    string `json:"expires_at"`
	CreatedAt    string `json:"created_at"`
}

// ToRequestHistoryDTO maps request records to their audit API shape.
func ToRequestHistoryDTO(requests []domain.ProtectedActionRequest) []RequestHistoryEntryDTO {
	out := make([]RequestHistoryEntryDTO, 0, len(requests))
	for _, r := range requests {
		out = append(out, RequestHistoryEntryDTO{
			ID:           r.ID,
			Action:       string(r.Action),
			Status:       string(r.StatusValue),
			StatusReason: r.StatusReason,
			ExpiresAt:    r.ExpiresAt.Format(time.RFC3339),
			CreatedAt:    r.CreatedAt.Format(time.RFC3339),
		})
	}
	return out
}
