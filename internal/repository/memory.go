package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sangyanhq/sangyan-api/internal/model"
)

// maxCommitRetries bounds the read-compare-write loop used to simulate
// atomic field updates. An exhausted loop surfaces as ErrStoreUnavailable.
const maxCommitRetries = 5

type memoryRecord struct {
	rec     *model.ProfileRecord
	version uint64
}

type profileMemoryRepository struct {
	mu      sync.RWMutex
	records map[string]*memoryRecord
	now     func() time.Time
}

// NewProfileMemoryRepository creates an in-memory ProfileRepository used in
// tests and local development. It has no native atomic increment, so ledger
// operations and partial updates go through a versioned compare-and-swap
// retry loop: each attempt re-reads the committed record, re-validates
// against it, and commits only if no other writer got there first.
func NewProfileMemoryRepository() ProfileRepository {
	return &profileMemoryRepository{
		records: make(map[string]*memoryRecord),
		now:     time.Now,
	}
}

func (r *profileMemoryRepository) GetOrCreate(
	ctx context.Context,
	identity model.Identity,
) (*model.ProfileRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, storeErr(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.records[identity.UserID]; ok {
		return existing.rec.Clone(), false, nil
	}

	rec := newDefaultRecord(identity, uuid.NewString(), r.now())
	r.records[identity.UserID] = &memoryRecord{rec: rec}

	return rec.Clone(), true, nil
}

func (r *profileMemoryRepository) Get(ctx context.Context, userID string) (*model.ProfileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, storeErr(err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	existing, ok := r.records[userID]
	if !ok {
		return nil, ErrNotFound
	}

	return existing.rec.Clone(), nil
}

// read returns a private copy of the committed record along with the
// version it was read at.
func (r *profileMemoryRepository) read(userID string) (*model.ProfileRecord, uint64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	existing, ok := r.records[userID]
	if !ok {
		return nil, 0, false
	}

	return existing.rec.Clone(), existing.version, true
}

// commit installs next if the record is still at the version the caller
// read it at. A false return means another writer committed in between and
// the caller must re-read and retry.
func (r *profileMemoryRepository) commit(userID string, version uint64, next *model.ProfileRecord) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.records[userID]
	if !ok || existing.version != version {
		return false
	}

	existing.rec = next
	existing.version++

	return true
}

func (r *profileMemoryRepository) Update(
	ctx context.Context,
	userID string,
	params UpdateProfileParams,
) (*model.ProfileRecord, error) {
	if !params.hasFields() {
		return nil, ErrNoFieldsToUpdate
	}

	for attempt := 0; attempt < maxCommitRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, storeErr(err)
		}

		rec, version, ok := r.read(userID)
		if !ok {
			return nil, ErrNotFound
		}

		params.apply(rec)
		rec.UpdatedAt = r.now().UTC()

		if r.commit(userID, version, rec) {
			return rec.Clone(), nil
		}
	}

	return nil, fmt.Errorf("%w: update retries exhausted", ErrStoreUnavailable)
}

func (r *profileMemoryRepository) ApplyEarn(
	ctx context.Context,
	userID string,
	tx model.Transaction,
) (*model.ProfileRecord, error) {
	for attempt := 0; attempt < maxCommitRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, storeErr(err)
		}

		rec, version, ok := r.read(userID)
		if !ok {
			return nil, ErrNotFound
		}

		rec.Balance += tx.Amount
		rec.History = append(rec.History, tx)

		if r.commit(userID, version, rec) {
			return rec.Clone(), nil
		}
	}

	return nil, fmt.Errorf("%w: earn retries exhausted", ErrStoreUnavailable)
}

func (r *profileMemoryRepository) ApplySpend(
	ctx context.Context,
	userID string,
	tx model.Transaction,
) (bool, error) {
	for attempt := 0; attempt < maxCommitRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return false, storeErr(err)
		}

		// Sufficiency is re-validated on every attempt against the freshly
		// read committed balance, never against a stale value from before
		// a lost race.
		rec, version, ok := r.read(userID)
		if !ok {
			return false, ErrNotFound
		}

		if rec.Balance < tx.Amount {
			return false, nil
		}

		rec.Balance -= tx.Amount
		rec.History = append(rec.History, tx)

		if r.commit(userID, version, rec) {
			return true, nil
		}
	}

	return false, fmt.Errorf("%w: spend retries exhausted", ErrStoreUnavailable)
}

func (p UpdateProfileParams) hasFields() bool {
	return p.DisplayName != nil || p.PhotoURL != nil || p.Phone != nil ||
		p.DateOfBirth != nil || p.Gender != nil || p.Institute != nil ||
		p.Course != nil || p.YearOfStudy != nil || p.EnrollmentNumber != nil ||
		p.Department != nil || p.Specialization != nil || p.Address != nil ||
		p.City != nil || p.State != nil || p.Pincode != nil || p.Bio != nil ||
		p.Interests != nil || p.Skills != nil || p.Achievements != nil ||
		p.GithubURL != nil || p.LinkedinURL != nil || p.TwitterURL != nil ||
		p.WebsiteURL != nil
}

func (p UpdateProfileParams) apply(rec *model.ProfileRecord) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&rec.DisplayName, p.DisplayName)
	set(&rec.PhotoURL, p.PhotoURL)
	set(&rec.Phone, p.Phone)
	set(&rec.DateOfBirth, p.DateOfBirth)
	set(&rec.Gender, p.Gender)
	set(&rec.Institute, p.Institute)
	set(&rec.Course, p.Course)
	set(&rec.YearOfStudy, p.YearOfStudy)
	set(&rec.EnrollmentNumber, p.EnrollmentNumber)
	set(&rec.Department, p.Department)
	set(&rec.Specialization, p.Specialization)
	set(&rec.Address, p.Address)
	set(&rec.City, p.City)
	set(&rec.State, p.State)
	set(&rec.Pincode, p.Pincode)
	set(&rec.Bio, p.Bio)
	set(&rec.Interests, p.Interests)
	set(&rec.Skills, p.Skills)
	set(&rec.Achievements, p.Achievements)
	set(&rec.GithubURL, p.GithubURL)
	set(&rec.LinkedinURL, p.LinkedinURL)
	set(&rec.TwitterURL, p.TwitterURL)
	set(&rec.WebsiteURL, p.WebsiteURL)
}
