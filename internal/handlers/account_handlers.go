// File: internal/handlers/account_handlers.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/quailbyte/go-accountsvc/internal/domain"
	"github.com/quailbyte/go-accountsvc/internal/dtos"
	"github.com/quailbyte/go-accountsvc/internal/middleware"
	"github.com/quailbyte/go-accountsvc/internal/services/user_services"
)

// AccountHandler serves the authenticated account endpoints.
type AccountHandler struct {
	UserService *user_services.UserService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(service *user_services.UserService) *AccountHandler {
	return &AccountHandler{UserService: service}
}

// Profile returns the caller's account record.
func (h *AccountHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	u, err := h.UserService.GetProfile(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dtos.ToUserResponseDTO(u))
}

// UpdateUsername renames the caller's account.
func (h *AccountHandler) UpdateUsername(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req dtos.UpdateUsernameRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.UserService.UpdateUsername(r.Context(), userID, strings.TrimSpace(req.Username))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dtos.ToUserResponseDTO(u))
}

// ChangePassword replaces the caller's password after checking the current
// one.
func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req dtos.ChangePasswordRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.UserService.Auth.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}

// DeleteAccount removes the caller's account.
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.UserService.DeleteAccount(r.Context(), userID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "account deleted"})
}

// RequestHistory lists the caller's protected action requests for an action,
// newest first. Audit visibility only; codes are never included.
func (h *AccountHandler) RequestHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	action := domain.ProtectedAction(r.URL.Query().Get("action"))
	history, err := h.UserService.Requests.RequestHistory(r.Context(), userID, action)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dtos.ToRequestHistoryDTO(history))
}
