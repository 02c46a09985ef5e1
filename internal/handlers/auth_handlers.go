// File: internal/handlers/auth_handlers.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/quailbyte/go-accountsvc/internal/dtos"
	"github.com/quailbyte/go-accountsvc/internal/services/user_services"
)

// AuthHandler holds the dependencies for authentication handlers.
type AuthHandler struct {
	UserService *user_services.UserService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service *user_services.UserService) *AuthHandler {
	return &AuthHandler{UserService: service}
}

// Register handles new account creation. The account starts unverified; a
// verification code is mailed as part of registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dtos.RegisterRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.UserService.Auth.Register(
		r.Context(),
		strings.TrimSpace(req.Username),
		strings.TrimSpace(req.Email),
		req.Password,
	)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dtos.ToUserResponseDTO(created))
}

// Login validates credentials and returns a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dtos.LoginRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, u, err := h.UserService.Auth.Login(r.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dtos.LoginResponseDTO{
		User:  dtos.ToUserResponseDTO(u),
		Token: token,
	})
}
