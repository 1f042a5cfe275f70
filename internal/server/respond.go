package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"tutorhub/internal/service"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondServiceError maps the service error taxonomy onto status codes.
// Anything outside the taxonomy is a transient store failure: reported once,
// the caller retries by re-invoking the action.
func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		respondError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrIllegalTransition):
		respondError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, service.ErrNotFound):
		respondError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, service.ErrForbidden):
		respondError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(w, err.Error(), http.StatusUnauthorized)
	default:
		s.logger.Error("Request failed", zap.Error(err))
		respondError(w, "temporary failure, please try again", http.StatusBadGateway)
	}
}
