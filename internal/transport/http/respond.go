// Package http hosts the chi-based REST routers for the identity and chat
// services, and the error-taxonomy-to-status mapping they share.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/chatgrid/chatgrid/internal/domain/channel"
	"github.com/chatgrid/chatgrid/internal/domain/message"
	"github.com/chatgrid/chatgrid/internal/domain/user"
)

// errorResponse is the JSON error envelope of the chat router and of
// RequireBearerAuth; the identity router's handlers use apiResponseBody.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// statusFor maps a domain error to the HTTP status it surfaces as. Errors
// not recognized here are a 500 — callers must not leak bare internal
// errors to the client.
func statusFor(err error) int {
	switch {
	case errors.Is(err, user.ErrNotFound), errors.Is(err, channel.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, user.ErrUsernameAlreadyExists), errors.Is(err, user.ErrEmailAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, user.ErrUsernameEmpty), errors.Is(err, user.ErrUsernameTooShort), errors.Is(err, user.ErrUsernameTooLong),
		errors.Is(err, user.ErrUsernameInvalidChars), errors.Is(err, user.ErrEmailInvalidFormat),
		errors.Is(err, channel.ErrNameEmpty), errors.Is(err, channel.ErrNameTooLong),
		errors.Is(err, channel.ErrNameAlreadyExists),
		errors.Is(err, message.ErrContentEmpty), errors.Is(err, message.ErrContentTooLong):
		return http.StatusUnprocessableEntity
	case errors.Is(err, message.ErrInvalidID), errors.Is(err, channel.ErrInvalidID), errors.Is(err, user.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, channel.ErrNotMember):
		return http.StatusForbidden
	case errors.Is(err, message.ErrChannelNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}
