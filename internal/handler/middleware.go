package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sangyanhq/sangyan-api/internal/model"
)

type contextKey string

const identityContextKey contextKey = "identity"

// identityFromContext returns the authenticated identity, if any.
func identityFromContext(ctx context.Context) (*model.Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(*model.Identity)
	return id, ok
}

// authenticate validates the bearer token and stores the token's identity
// in the request context.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing_token", "missing bearer token")
			return
		}

		claims, err := h.issuer.ValidateAccess(token)
		if err != nil {
			h.metrics.IncAuthFailure("token")
			writeError(w, http.StatusUnauthorized, "invalid_token", "invalid or expired token")
			return
		}

		id := &model.Identity{
			UserID:      claims.UserID,
			Email:       claims.Email,
			DisplayName: claims.DisplayName,
		}

		ctx := context.WithValue(r.Context(), identityContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// observe records request metrics and an access log line per request.
func (h *Handler) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if pattern == "" {
			pattern = "unmatched"
		}
		elapsed := time.Since(start)

		h.metrics.ObserveHTTPRequest(r.Method, pattern, ww.Status(), elapsed.Seconds())
		h.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", elapsed).
			Msg("request completed")
	})
}
