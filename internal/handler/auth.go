package handler

import (
	"net/http"

	"github.com/sangyanhq/sangyan-api/internal/model"
)

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationError(w, h.validationMessages(err))
		return
	}

	id, err := h.credentials.Register(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		h.metrics.IncAuthFailure("password")
		writeDomainError(w, err)
		return
	}

	h.respondAuth(w, http.StatusCreated, id, "password")
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationError(w, h.validationMessages(err))
		return
	}

	id, err := h.credentials.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.metrics.IncAuthFailure("password")
		writeDomainError(w, err)
		return
	}

	h.respondAuth(w, http.StatusOK, id, "password")
}

func (h *Handler) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		writeError(w, http.StatusNotImplemented, "google_disabled", "google sign-in is not configured")
		return
	}

	var req googleLoginRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationError(w, h.validationMessages(err))
		return
	}

	id, err := h.google.SignIn(r.Context(), req.IDToken)
	if err != nil {
		h.metrics.IncAuthFailure("google")
		writeDomainError(w, err)
		return
	}

	h.respondAuth(w, http.StatusOK, id, "google")
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.hub.SignOut()
	writeJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

func (h *Handler) respondAuth(w http.ResponseWriter, statusCode int, id *model.Identity, authType string) {
	tokens, err := h.issuer.Issue(id.UserID, id.Email, id.DisplayName)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", id.UserID).Msg("failed to issue tokens")
		writeError(w, http.StatusInternalServerError, "internal", "something went wrong")
		return
	}

	h.metrics.IncAuthSuccess(authType)
	writeJSON(w, statusCode, authResponse{
		UserID:       id.UserID,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}
