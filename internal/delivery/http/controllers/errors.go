package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"talkmaster/internal/delivery/http/helpers"
	"talkmaster/internal/delivery/http/middleware"
	"talkmaster/internal/domain"
)

// serviceErrors maps domain sentinels to a status and an API error code, in match order.
var serviceErrors = []struct {
	sentinel error
	status   int
	code     string
}{
	{domain.ErrValidation, http.StatusBadRequest, helpers.ErrCodeBadRequest},
	{domain.ErrUnauthorized, http.StatusUnauthorized, helpers.ErrCodeUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden, helpers.ErrCodeForbidden},
	{domain.ErrNotFound, http.StatusNotFound, helpers.ErrCodeNotFound},
	{domain.ErrInvalidState, http.StatusConflict, helpers.ErrCodeInvalidState},
	{domain.ErrConflict, http.StatusConflict, helpers.ErrCodeConflict},
}

// writeServiceError writes the response for an error returned by a service.
// Unknown errors are logged and reported with a generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	for _, se := range serviceErrors {
		if errors.Is(err, se.sentinel) {
			helpers.WriteJSONError(w, se.status, se.code, reason(err, se.sentinel))
			return
		}
	}
	logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal server error")
}

// reason strips the sentinel prefix so "not found: talk not found" reads "talk not found".
func reason(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()+": "); i >= 0 {
		return msg[i+len(sentinel.Error())+2:]
	}
	return msg
}

// requireActor returns the authenticated actor or writes a 401.
func requireActor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return domain.Actor{}, false
	}
	return actor, true
}

// pathID reads a UUID path value. A malformed id names nothing, so it is reported as not found.
func pathID(w http.ResponseWriter, r *http.Request, name, entity string) (string, bool) {
	id := r.PathValue(name)
	if _, err := uuid.Parse(id); err != nil {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, entity+" not found")
		return "", false
	}
	return id, true
}
