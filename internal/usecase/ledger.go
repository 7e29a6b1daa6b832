package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sangyanhq/sangyan-api/internal/metrics"
	"github.com/sangyanhq/sangyan-api/internal/model"
	"github.com/sangyanhq/sangyan-api/internal/repository"
)

// LedgerUsecase defines the business logic for the Paras Stones ledger.
// Every operation targets a single user's record; ledgers are independent
// per user.
type LedgerUsecase interface {
	// Earn credits amount stones and appends an earned transaction,
	// returning the refreshed record.
	Earn(ctx context.Context, userID string, amount int64, reason string) (*model.ProfileRecord, error)

	// Spend debits amount stones if the committed balance covers it.
	// Insufficient funds is a normal negative result, not an error.
	Spend(ctx context.Context, userID string, amount int64, reason string) (bool, error)

	// History returns the user's transactions in store write order.
	History(ctx context.Context, userID string) ([]model.Transaction, error)
}

var ErrInvalidAmount = errors.New("transaction amount must be positive")

type ledgerUsecase struct {
	profiles repository.ProfileRepository
	metrics  *metrics.Metrics
	logger   *zerolog.Logger
	now      func() time.Time
	newID    func() string
}

// NewLedgerUsecase creates a new instance of LedgerUsecase. Transaction ids
// come from a collision-resistant generator, never from timestamps.
func NewLedgerUsecase(
	profiles repository.ProfileRepository,
	metrics *metrics.Metrics,
	logger *zerolog.Logger,
) LedgerUsecase {
	return &ledgerUsecase{
		profiles: profiles,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

func (u *ledgerUsecase) Earn(
	ctx context.Context,
	userID string,
	amount int64,
	reason string,
) (*model.ProfileRecord, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	tx := model.Transaction{
		ID:        u.newID(),
		Amount:    amount,
		Kind:      model.TransactionEarned,
		Reason:    reason,
		Timestamp: u.now().UTC(),
	}

	rec, err := u.profiles.ApplyEarn(ctx, userID, tx)
	if err != nil {
		return nil, err
	}

	u.metrics.IncLedgerTransaction(string(model.TransactionEarned))
	u.logger.Debug().
		Str("user_id", userID).
		Int64("amount", amount).
		Str("reason", reason).
		Int64("balance", rec.Balance).
		Msg("stones earned")

	return rec, nil
}

func (u *ledgerUsecase) Spend(
	ctx context.Context,
	userID string,
	amount int64,
	reason string,
) (bool, error) {
	if amount <= 0 {
		return false, ErrInvalidAmount
	}

	tx := model.Transaction{
		ID:        u.newID(),
		Amount:    amount,
		Kind:      model.TransactionSpent,
		Reason:    reason,
		Timestamp: u.now().UTC(),
	}

	ok, err := u.profiles.ApplySpend(ctx, userID, tx)
	if err != nil {
		return false, err
	}

	if !ok {
		u.metrics.IncInsufficientFunds()
		u.logger.Debug().
			Str("user_id", userID).
			Int64("amount", amount).
			Msg("spend rejected, insufficient funds")
		return false, nil
	}

	u.metrics.IncLedgerTransaction(string(model.TransactionSpent))
	u.logger.Debug().
		Str("user_id", userID).
		Int64("amount", amount).
		Str("reason", reason).
		Msg("stones spent")

	return true, nil
}

func (u *ledgerUsecase) History(ctx context.Context, userID string) ([]model.Transaction, error) {
	rec, err := u.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	return rec.History, nil
}
