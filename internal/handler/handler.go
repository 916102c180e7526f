// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cardvault/cardvault/internal/handler/dto"
	"github.com/cardvault/cardvault/internal/policy"
	"github.com/cardvault/cardvault/internal/service"
)

// NotFound handles 404 responses for unmatched routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusNotFound, "resource not found")
}

// MethodNotAllowed handles 405 responses.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusMethodNotAllowed, "method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already on the wire; an encode failure here is
	// a dead connection.
	_ = json.NewEncoder(w).Encode(data)
}

// writeMessage writes a single-message error response.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, dto.MessageResponse{Message: message})
}

// handleServiceError maps service errors to HTTP responses. Validation
// failures carry the full violation list; everything else is a single
// message.
func handleServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	if ve, ok := service.AsValidationError(err); ok {
		writeJSON(w, http.StatusBadRequest, ve.Violations)
		return
	}

	var badValue *policy.BadValueError
	if errors.As(err, &badValue) {
		writeMessage(w, http.StatusBadRequest, badValue.Error())
		return
	}

	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrSubscriptionNotFound),
		errors.Is(err, service.ErrCardNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotCardOwner),
		errors.Is(err, service.ErrNotProfileOwner),
		errors.Is(err, service.ErrSubscriptionInUse):
		writeMessage(w, http.StatusForbidden, err.Error())
	default:
		logger.Error("internal_error", "error", err)
		writeMessage(w, http.StatusInternalServerError, "An internal error occurred")
	}
}

// decodePatch reads a selective-field patch body from the request.
func decodePatch(r *http.Request) (policy.FieldSet, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, err
	}
	return policy.DecodeFields(raw)
}
