// Package api exposes the application over REST. Handlers decode JSON
// requests, call the services, and map domain errors to HTTP status
// codes; all business rules live below this layer.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dongapp/dong/internal/auth"
	"github.com/dongapp/dong/internal/groupid"
	"github.com/dongapp/dong/internal/service"
	"github.com/dongapp/dong/internal/storage"
)

// API holds the services the handlers dispatch to.
type API struct {
	users    *service.UserService
	groups   *service.GroupService
	expenses *service.ExpenseService
}

// New creates the API over the given services.
func New(users *service.UserService, groups *service.GroupService, expenses *service.ExpenseService) *API {
	return &API{users: users, groups: groups, expenses: expenses}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			slog.Error("Failed to encode response", "error", err)
		}
	}
}

// writeError maps domain errors to HTTP status codes. Unknown errors
// become 500 with a generic message so internals don't leak.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"

	switch {
	case errors.Is(err, service.ErrNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrForbidden):
		status, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrInvalidCategory),
		errors.Is(err, service.ErrInvalidRange),
		errors.Is(err, auth.ErrWeakPassword):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrAlreadyMember),
		errors.Is(err, service.ErrInvitePending),
		errors.Is(err, auth.ErrEmailExists),
		errors.Is(err, storage.ErrConflict):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrNotAMember),
		errors.Is(err, service.ErrNoPendingInvitation):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, auth.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, groupid.ErrExhausted):
		// Astronomically unlikely with a 26^6 code space; surfaced as a
		// retryable server error.
		status, msg = http.StatusServiceUnavailable, err.Error()
	}

	writeJSON(w, status, errorResponse{Error: msg})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return false
	}
	return true
}
