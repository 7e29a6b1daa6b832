package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sangyanhq/sangyan-api/internal/identity"
	"github.com/sangyanhq/sangyan-api/internal/repository"
	"github.com/sangyanhq/sangyan-api/internal/usecase"
)

// maxBodySize is the maximum allowed request body size (1 MB).
const maxBodySize = 1 << 20

// errorEnvelope is the standard error response shape.
type errorEnvelope struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

// writeError writes a JSON error response with the given status code.
func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorEnvelope{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// writeValidationError writes a 400 response carrying the translated
// per-field validation messages.
func writeValidationError(w http.ResponseWriter, fields []string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(errorEnvelope{
		Error: errorDetail{
			Code:    "validation_failed",
			Message: "request validation failed",
			Fields:  fields,
		},
	})
}

// writeJSON writes a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// readJSON decodes the request body into v, enforcing a size limit.
func readJSON(r *http.Request, v interface{}) error {
	lr := io.LimitReader(r.Body, maxBodySize)
	return json.NewDecoder(lr).Decode(v)
}

// writeDomainError maps domain failures onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "profile record not found")
	case errors.Is(err, repository.ErrNoFieldsToUpdate):
		writeError(w, http.StatusBadRequest, "no_fields", "no profile fields to update")
	case errors.Is(err, repository.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", "profile store unavailable")
	case errors.Is(err, usecase.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, "invalid_amount", "transaction amount must be positive")
	case errors.Is(err, identity.ErrEmailAlreadyRegistered):
		writeError(w, http.StatusConflict, "email_taken", "email is already registered")
	case errors.Is(err, identity.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
	case errors.Is(err, identity.ErrInvalidGoogleAudience):
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid google token")
	default:
		writeError(w, http.StatusInternalServerError, "internal", "something went wrong")
	}
}
