package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sangyanhq/sangyan-api/internal/mailer"
	"github.com/sangyanhq/sangyan-api/internal/metrics"
	"github.com/sangyanhq/sangyan-api/internal/model"
	"github.com/sangyanhq/sangyan-api/internal/notifier"
	"github.com/sangyanhq/sangyan-api/internal/repository"
)

// ProfileUsecase defines the business logic for profile records.
type ProfileUsecase interface {
	// GetOrCreate reads the profile for the identity, materializing a
	// default record with the welcome bonus on first sight.
	GetOrCreate(ctx context.Context, identity model.Identity) (rec *model.ProfileRecord, created bool, err error)

	// Update merges non-ledger profile edits into the record.
	Update(ctx context.Context, userID string, params repository.UpdateProfileParams) (*model.ProfileRecord, error)
}

type profileUsecase struct {
	profiles repository.ProfileRepository
	mailer   *mailer.Mailer
	notifier notifier.Notifier
	metrics  *metrics.Metrics
	logger   *zerolog.Logger
}

// NewProfileUsecase creates a new instance of ProfileUsecase. The mailer
// may be nil, in which case welcome emails are skipped.
func NewProfileUsecase(
	profiles repository.ProfileRepository,
	m *mailer.Mailer,
	n notifier.Notifier,
	metrics *metrics.Metrics,
	logger *zerolog.Logger,
) ProfileUsecase {
	return &profileUsecase{
		profiles: profiles,
		mailer:   m,
		notifier: n,
		metrics:  metrics,
		logger:   logger,
	}
}

func (u *profileUsecase) GetOrCreate(
	ctx context.Context,
	identity model.Identity,
) (*model.ProfileRecord, bool, error) {
	rec, created, err := u.profiles.GetOrCreate(ctx, identity)
	if err != nil {
		return nil, false, err
	}

	if created {
		u.metrics.IncProfileCreate()
		u.logger.Info().
			Str("user_id", rec.UserID).
			Int64("balance", rec.Balance).
			Msg("profile created with welcome bonus")

		// Fire and forget; a failed email never fails the fetch.
		go u.sendWelcomeEmail(rec)
	}

	return rec, created, nil
}

func (u *profileUsecase) Update(
	ctx context.Context,
	userID string,
	params repository.UpdateProfileParams,
) (*model.ProfileRecord, error) {
	rec, err := u.profiles.Update(ctx, userID, params)
	if err != nil {
		return nil, err
	}

	u.notifier.Notify(notifier.Event{
		Level:   notifier.LevelSuccess,
		Message: "Profile updated successfully",
	})

	return rec, nil
}

func (u *profileUsecase) sendWelcomeEmail(rec *model.ProfileRecord) {
	if u.mailer == nil || rec.Email == "" {
		return
	}

	htmlBody := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Welcome to Sangyan! Your profile has been created and %d Paras
		Stones have been credited to your account as a welcome bonus.</p>
		<p>Your membership application is pending review.</p>

		<p>Thank you,</p>
		<p>Sangyan Team</p>
	`, rec.DisplayName, rec.Balance)

	if err := u.mailer.SendHTML([]string{rec.Email}, "Welcome to Sangyan", htmlBody); err != nil {
		u.logger.Error().Err(err).Str("user_id", rec.UserID).Msg("failed to send welcome email")
	}
}
