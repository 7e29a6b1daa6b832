package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/sangyanhq/sangyan-api/internal/auth"
	"github.com/sangyanhq/sangyan-api/internal/config"
	"github.com/sangyanhq/sangyan-api/internal/handler"
	"github.com/sangyanhq/sangyan-api/internal/identity"
	"github.com/sangyanhq/sangyan-api/internal/mailer"
	"github.com/sangyanhq/sangyan-api/internal/metrics"
	"github.com/sangyanhq/sangyan-api/internal/notifier"
	"github.com/sangyanhq/sangyan-api/internal/ratelimit"
	"github.com/sangyanhq/sangyan-api/internal/repository"
	"github.com/sangyanhq/sangyan-api/internal/session"
	"github.com/sangyanhq/sangyan-api/internal/usecase"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	profiles, creds := buildRepositories(ctx, cfg, &logger)

	m := metrics.New()
	mail := mailer.NewMailer(&logger)
	limiter := ratelimit.New(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst)

	toasts := notifier.NewLogNotifier(&logger)
	profileUsecase := usecase.NewProfileUsecase(profiles, mail, toasts, m, &logger)
	ledgerUsecase := usecase.NewLedgerUsecase(profiles, m, &logger)

	hub := identity.NewHub()
	credentialsService := identity.NewCredentialsService(creds, hub)

	var googleService *identity.GoogleService
	if cfg.Google.ClientID != "" {
		googleService = identity.NewGoogleService(cfg.Google.ClientID, hub)
	} else {
		logger.Warn().Msg("GOOGLE_CLIENT_ID not set, google sign-in disabled")
	}

	issuer := auth.NewIssuer(
		auth.NewJWTAuthenticator(cfg.Token.Issuer, cfg.Token.Issuer),
		cfg.Token.Issuer,
		cfg.Token.AccessSecret,
		cfg.Token.RefreshSecret,
		cfg.Token.AccessTTL,
		cfg.Token.RefreshTTL,
	)

	store := session.NewStore(hub, profileUsecase, toasts, m, &logger)
	store.Start(ctx)
	defer store.Close()

	snapshots, cancel := store.Subscribe()
	defer cancel()
	go func() {
		for snap := range snapshots {
			logger.Info().Str("state", string(snap.State)).Msg("session transition")
		}
	}()

	h := handler.New(handler.Deps{
		Issuer:      issuer,
		Credentials: credentialsService,
		Google:      googleService,
		Hub:         hub,
		Profiles:    profileUsecase,
		Ledger:      ledgerUsecase,
		Limiter:     limiter,
		Metrics:     m,
		Logger:      &logger,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      h.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// buildRepositories connects to MongoDB when a URI is configured, falling
// back to the in-memory store otherwise.
func buildRepositories(
	ctx context.Context,
	cfg *config.Config,
	logger *zerolog.Logger,
) (repository.ProfileRepository, repository.CredentialRepository) {
	if cfg.Mongo.URI == "" {
		logger.Warn().Msg("MONGO_URI not set, using in-memory store")
		return repository.NewProfileMemoryRepository(), repository.NewCredentialMemoryRepository()
	}

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping MongoDB")
	}

	db := client.Database(cfg.Mongo.Database)

	return repository.NewProfileMongoRepository(db),
		repository.NewCredentialMongoRepository(ctx, logger, db)
}
