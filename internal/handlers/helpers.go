// File: internal/handlers/helpers.go
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/quailbyte/go-accountsvc/internal/repository/user"
	"github.com/quailbyte/go-accountsvc/internal/services/user_services"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads one JSON object from the request body with a size cap.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// respondJSON writes a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Printf("[Handlers] Failed to encode response: %v", err)
		}
	}
}

// respondError writes a JSON error body.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service-layer errors onto HTTP statuses. Every
// credentials failure maps to the same 401 body regardless of its internal
// detail, so responses stay useless as a probing oracle.
func respondServiceError(w http.ResponseWriter, err error) {
	var optionErr *user_services.OptionError
	switch {
	case errors.As(err, &optionErr):
		respondError(w, http.StatusBadRequest, optionErr.Error())
	case errors.Is(err, user_services.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, user_services.ErrAccountUnverified):
		respondError(w, http.StatusForbidden, "account is not verified")
	case errors.Is(err, user_services.ErrUsernameTaken):
		respondError(w, http.StatusConflict, "username already taken")
	case errors.Is(err, user_services.ErrEmailTaken):
		respondError(w, http.StatusConflict, "email already registered")
	case errors.Is(err, user.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "user not found")
	default:
		log.Printf("[Handlers] Internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
