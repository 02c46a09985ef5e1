// File: internal/handlers/verification_handlers.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/quailbyte/go-accountsvc/internal/dtos"
	"github.com/quailbyte/go-accountsvc/internal/services/user_services"
)

// VerificationHandler serves the email verification endpoints.
type VerificationHandler struct {
	UserService *user_services.UserService
}

// NewVerificationHandler creates a new VerificationHandler.
func NewVerificationHandler(service *user_services.UserService) *VerificationHandler {
	return &VerificationHandler{UserService: service}
}

// RequestCode mails a fresh verification code. The response is identical for
// known and unknown emails.
func (h *VerificationHandler) RequestCode(w http.ResponseWriter, r *http.Request) {
	var req dtos.EmailRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.UserService.Verification.RequestEmailVerification(r.Context(), strings.TrimSpace(req.Email)); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{
		"message": "if the email is registered, a verification code has been sent",
	})
}

// Confirm consumes the pending verification code and activates the account.
func (h *VerificationHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req dtos.ConfirmCodeRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.UserService.Verification.ConfirmEmailVerification(r.Context(), strings.TrimSpace(req.Email), strings.TrimSpace(req.Code)); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "account verified"})
}
