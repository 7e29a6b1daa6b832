package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/sangyanhq/sangyan-api/internal/auth"
	"github.com/sangyanhq/sangyan-api/internal/identity"
	"github.com/sangyanhq/sangyan-api/internal/metrics"
	"github.com/sangyanhq/sangyan-api/internal/ratelimit"
	"github.com/sangyanhq/sangyan-api/internal/usecase"
)

// Deps carries everything the HTTP layer needs. Google may be nil when no
// OAuth client id is configured; the google login route then rejects with
// 501.
type Deps struct {
	Issuer      *auth.Issuer
	Credentials *identity.CredentialsService
	Google      *identity.GoogleService
	Hub         *identity.Hub
	Profiles    usecase.ProfileUsecase
	Ledger      usecase.LedgerUsecase
	Limiter     *ratelimit.Limiter
	Metrics     *metrics.Metrics
	Logger      *zerolog.Logger
}

// Handler is the HTTP transport for the identity and ledger services.
type Handler struct {
	issuer      *auth.Issuer
	credentials *identity.CredentialsService
	google      *identity.GoogleService
	hub         *identity.Hub
	profiles    usecase.ProfileUsecase
	ledger      usecase.LedgerUsecase
	limiter     *ratelimit.Limiter
	metrics     *metrics.Metrics
	logger      *zerolog.Logger
	validate    *validator.Validate
	trans       ut.Translator
}

// New creates the HTTP handler.
func New(deps Deps) *Handler {
	validate, trans := newValidator()

	return &Handler{
		issuer:      deps.Issuer,
		credentials: deps.Credentials,
		google:      deps.Google,
		hub:         deps.Hub,
		profiles:    deps.Profiles,
		ledger:      deps.Ledger,
		limiter:     deps.Limiter,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
		validate:    validate,
		trans:       trans,
	}
}

// Router builds the chi router with all routes mounted.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.observe)

	r.Get("/healthz", h.handleHealthz)
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.handleRegister)
			r.Post("/login", h.handleLogin)
			r.Post("/google", h.handleGoogleLogin)
			r.With(h.authenticate).Post("/logout", h.handleLogout)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.authenticate)

			r.Get("/profile", h.handleGetProfile)
			r.Patch("/profile", h.handleUpdateProfile)

			r.Route("/stones", func(r chi.Router) {
				r.Post("/earn", h.handleEarn)
				r.Post("/spend", h.handleSpend)
				r.Get("/history", h.handleHistory)
			})
		})
	})

	return r
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
