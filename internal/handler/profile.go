package handler

import (
	"net/http"
)

// handleGetProfile returns the caller's profile record, materializing a
// default one with the welcome bonus on first sight.
func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_token", "missing bearer token")
		return
	}

	rec, _, err := h.profiles.GetOrCreate(r.Context(), *id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newProfileResponse(rec))
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_token", "missing bearer token")
		return
	}

	var req updateProfileRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationError(w, h.validationMessages(err))
		return
	}

	rec, err := h.profiles.Update(r.Context(), id.UserID, req.toParams())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newProfileResponse(rec))
}
