package repository

import (
	"context"

	"github.com/sangyanhq/sangyan-api/internal/model"
)

// ProfileRepository defines the interface for profile-record store
// operations. The record for a given user id is the unit of mutual
// exclusion: ledger operations are atomic with respect to each other, and
// non-ledger updates never clobber a concurrently committed balance or
// history change.
type ProfileRepository interface {
	// GetOrCreate reads the record for the identity's user id. If none
	// exists it persists a default record carrying the welcome bonus and
	// reports created=true. Creation uses a create-if-absent primitive so
	// concurrent first fetches grant the bonus at most once.
	GetOrCreate(ctx context.Context, identity model.Identity) (rec *model.ProfileRecord, created bool, err error)

	// Get reads the record for userID, failing with ErrNotFound if absent.
	Get(ctx context.Context, userID string) (*model.ProfileRecord, error)

	// Update merges the non-nil params into the existing record. Balance
	// and history are never touched. Fails with ErrNotFound if no record
	// exists for userID.
	Update(ctx context.Context, userID string, params UpdateProfileParams) (*model.ProfileRecord, error)

	// ApplyEarn atomically increments the balance by tx.Amount and appends
	// tx to the history, returning the refreshed record. Either both
	// effects commit or neither does.
	ApplyEarn(ctx context.Context, userID string, tx model.Transaction) (*model.ProfileRecord, error)

	// ApplySpend atomically decrements the balance by tx.Amount and
	// appends tx to the history, but only if the committed balance is at
	// least tx.Amount. Returns false with no mutation when funds are
	// insufficient; the check and the decrement are a single operation, so
	// the balance can never go negative under any interleaving.
	ApplySpend(ctx context.Context, userID string, tx model.Transaction) (bool, error)
}

// UpdateProfileParams defines the optional non-ledger fields for a partial
// profile update. Only the fields that are not nil will be updated.
type UpdateProfileParams struct {
	DisplayName      *string
	PhotoURL         *string
	Phone            *string
	DateOfBirth      *string
	Gender           *string
	Institute        *string
	Course           *string
	YearOfStudy      *string
	EnrollmentNumber *string
	Department       *string
	Specialization   *string
	Address          *string
	City             *string
	State            *string
	Pincode          *string
	Bio              *string
	Interests        *string
	Skills           *string
	Achievements     *string
	GithubURL        *string
	LinkedinURL      *string
	TwitterURL       *string
	WebsiteURL       *string
}
