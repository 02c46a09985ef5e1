// File: internal/handlers/password_reset_handlers.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/quailbyte/go-accountsvc/internal/dtos"
	"github.com/quailbyte/go-accountsvc/internal/services/user_services"
)

// PasswordResetHandler serves the forgot-password endpoints.
type PasswordResetHandler struct {
	UserService *user_services.UserService
}

// NewPasswordResetHandler creates a new PasswordResetHandler.
func NewPasswordResetHandler(service *user_services.UserService) *PasswordResetHandler {
	return &PasswordResetHandler{UserService: service}
}

// RequestReset mails a reset code. The response is identical for known and
// unknown emails.
func (h *PasswordResetHandler) RequestReset(w http.ResponseWriter, r *http.Request) {
	var req dtos.EmailRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.UserService.PasswordReset.RequestPasswordReset(r.Context(), strings.TrimSpace(req.Email)); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{
		"message": "if the email is registered, a reset code has been sent",
	})
}

// ConfirmReset consumes the pending reset code and sets the new password.
func (h *PasswordResetHandler) ConfirmReset(w http.ResponseWriter, r *http.Request) {
	var req dtos.ResetPasswordRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.UserService.PasswordReset.ConfirmPasswordReset(
		r.Context(),
		strings.TrimSpace(req.Email),
		strings.TrimSpace(req.Code),
		req.NewPassword,
	)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "password reset"})
}
