package http

import (
	"errors"
	"net/http"

	"github.com/shivamDefault/ChatLive/internal/domain"
)

// errorMapping translates a domain sentinel to a response. An empty public
// message means the error text itself is shown to the client.
type errorMapping struct {
	target error
	status int
	code   string
	public string
}

// Order matters: the first match wins.
var errorMappings = []errorMapping{
	{domain.ErrValidation, http.StatusBadRequest, "VALIDATION_ERROR", ""},
	{domain.ErrDuplicateNumber, http.StatusConflict, "DUPLICATE_NUMBER", ""},
	{domain.ErrDuplicateChat, http.StatusConflict, "DUPLICATE_CHAT", ""},
	{domain.ErrContactNotFound, http.StatusNotFound, "CONTACT_NOT_FOUND", ""},
	{domain.ErrNotParticipant, http.StatusForbidden, "NOT_PARTICIPANT", ""},
	{domain.ErrNotSignedIn, http.StatusUnauthorized, "NOT_SIGNED_IN", "sign in required"},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password"},
	{domain.ErrBackend, http.StatusBadGateway, "BACKEND_ERROR", ""},
	{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND", "resource not found"},
	{domain.ErrConflict, http.StatusConflict, "CONFLICT", ""},
}

func mapDomainError(err error) (int, string, string) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		if m.public != "" {
			return m.status, m.code, m.public
		}
		return m.status, m.code, err.Error()
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"
}

func writeMappedError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	status, code, msg := mapDomainError(err)
	logRejected(r, operation, status, code, err)
	writeError(w, r, status, code, msg)
}

func writeBadRequest(w http.ResponseWriter, r *http.Request, operation string, err error) {
	logRejected(r, operation, http.StatusBadRequest, "VALIDATION_ERROR", err)
	writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
}
