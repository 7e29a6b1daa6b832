package repository

import (
	"time"

	"github.com/sangyanhq/sangyan-api/internal/model"
)

// Persistence layout: one document per user in the users collection, keyed
// by the external user id. Timestamps serialize as RFC 3339 strings and
// transaction kinds as the literal strings "earned" / "spent", so a stored
// document round-trips to an identical record.

type transactionDoc struct {
	ID        string `bson:"id"`
	Amount    int64  `bson:"amount"`
	Type      string `bson:"type"`
	Reason    string `bson:"reason"`
	Timestamp string `bson:"timestamp"`
}

type profileDoc struct {
	UserID           string           `bson:"_id"`
	Email            string           `bson:"email"`
	DisplayName      string           `bson:"display_name"`
	PhotoURL         string           `bson:"photo_url"`
	Role             string           `bson:"role"`
	MembershipStatus string           `bson:"membership_status"`
	CreatedAt        string           `bson:"created_at"`
	UpdatedAt        string           `bson:"updated_at"`
	Phone            string           `bson:"phone,omitempty"`
	DateOfBirth      string           `bson:"date_of_birth,omitempty"`
	Gender           string           `bson:"gender,omitempty"`
	Institute        string           `bson:"institute,omitempty"`
	Course           string           `bson:"course,omitempty"`
	YearOfStudy      string           `bson:"year_of_study,omitempty"`
	EnrollmentNumber string           `bson:"enrollment_number,omitempty"`
	Department       string           `bson:"department,omitempty"`
	Specialization   string           `bson:"specialization,omitempty"`
	Address          string           `bson:"address,omitempty"`
	City             string           `bson:"city,omitempty"`
	State            string           `bson:"state,omitempty"`
	Pincode          string           `bson:"pincode,omitempty"`
	Bio              string           `bson:"bio,omitempty"`
	Interests        string           `bson:"interests,omitempty"`
	Skills           string           `bson:"skills,omitempty"`
	Achievements     string           `bson:"achievements,omitempty"`
	GithubURL        string           `bson:"github_url,omitempty"`
	LinkedinURL      string           `bson:"linkedin_url,omitempty"`
	TwitterURL       string           `bson:"twitter_url,omitempty"`
	WebsiteURL       string           `bson:"website_url,omitempty"`
	Balance          int64            `bson:"balance"`
	History          []transactionDoc `bson:"history"`
}

const timestampFormat = time.RFC3339Nano

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampFormat)
}

func parseTimestamp(s string) (time.Time, error) {
	return time.Parse(timestampFormat, s)
}

func toTransactionDoc(tx model.Transaction) transactionDoc {
	return transactionDoc{
		ID:        tx.ID,
		Amount:    tx.Amount,
		Type:      string(tx.Kind),
		Reason:    tx.Reason,
		Timestamp: formatTimestamp(tx.Timestamp),
	}
}

func (d transactionDoc) toModel() (model.Transaction, error) {
	ts, err := parseTimestamp(d.Timestamp)
	if err != nil {
		return model.Transaction{}, err
	}
	return model.Transaction{
		ID:        d.ID,
		Amount:    d.Amount,
		Kind:      model.TransactionKind(d.Type),
		Reason:    d.Reason,
		Timestamp: ts,
	}, nil
}

func toProfileDoc(rec *model.ProfileRecord) *profileDoc {
	history := make([]transactionDoc, len(rec.History))
	for i, tx := range rec.History {
		history[i] = toTransactionDoc(tx)
	}
	return &profileDoc{
		UserID:           rec.UserID,
		Email:            rec.Email,
		DisplayName:      rec.DisplayName,
		PhotoURL:         rec.PhotoURL,
		Role:             string(rec.Role),
		MembershipStatus: string(rec.MembershipStatus),
		CreatedAt:        formatTimestamp(rec.CreatedAt),
		UpdatedAt:        formatTimestamp(rec.UpdatedAt),
		Phone:            rec.Phone,
		DateOfBirth:      rec.DateOfBirth,
		Gender:           rec.Gender,
		Institute:        rec.Institute,
		Course:           rec.Course,
		YearOfStudy:      rec.YearOfStudy,
		EnrollmentNumber: rec.EnrollmentNumber,
		Department:       rec.Department,
		Specialization:   rec.Specialization,
		Address:          rec.Address,
		City:             rec.City,
		State:            rec.State,
		Pincode:          rec.Pincode,
		Bio:              rec.Bio,
		Interests:        rec.Interests,
		Skills:           rec.Skills,
		Achievements:     rec.Achievements,
		GithubURL:        rec.GithubURL,
		LinkedinURL:      rec.LinkedinURL,
		TwitterURL:       rec.TwitterURL,
		WebsiteURL:       rec.WebsiteURL,
		Balance:          rec.Balance,
		History:          history,
	}
}

func (d *profileDoc) toModel() (*model.ProfileRecord, error) {
	createdAt, err := parseTimestamp(d.CreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseTimestamp(d.UpdatedAt)
	if err != nil {
		return nil, err
	}

	history := make([]model.Transaction, len(d.History))
	for i, txDoc := range d.History {
		tx, err := txDoc.toModel()
		if err != nil {
			return nil, err
		}
		history[i] = tx
	}

	return &model.ProfileRecord{
		UserID:           d.UserID,
		Email:            d.Email,
		DisplayName:      d.DisplayName,
		PhotoURL:         d.PhotoURL,
		Role:             model.Role(d.Role),
		MembershipStatus: model.MembershipStatus(d.MembershipStatus),
		CreatedAt:        createdAt,
		UpdatedAt:        updatedAt,
		Phone:            d.Phone,
		DateOfBirth:      d.DateOfBirth,
		Gender:           d.Gender,
		Institute:        d.Institute,
		Course:           d.Course,
		YearOfStudy:      d.YearOfStudy,
		EnrollmentNumber: d.EnrollmentNumber,
		Department:       d.Department,
		Specialization:   d.Specialization,
		Address:          d.Address,
		City:             d.City,
		State:            d.State,
		Pincode:          d.Pincode,
		Bio:              d.Bio,
		Interests:        d.Interests,
		Skills:           d.Skills,
		Achievements:     d.Achievements,
		GithubURL:        d.GithubURL,
		LinkedinURL:      d.LinkedinURL,
		TwitterURL:       d.TwitterURL,
		WebsiteURL:       d.WebsiteURL,
		Balance:          d.Balance,
		History:          history,
	}, nil
}

// newDefaultRecord constructs the record persisted on first sight of a user:
// guest role, pending membership, and the one-time welcome bonus already
// applied to both balance and history.
func newDefaultRecord(identity model.Identity, txID string, now time.Time) *model.ProfileRecord {
	now = now.UTC()
	return &model.ProfileRecord{
		UserID:           identity.UserID,
		Email:            identity.Email,
		DisplayName:      identity.DisplayName,
		PhotoURL:         identity.PhotoURL,
		Role:             model.RoleGuest,
		MembershipStatus: model.MembershipPending,
		CreatedAt:        now,
		UpdatedAt:        now,
		Balance:          model.WelcomeBonus,
		History: []model.Transaction{{
			ID:        txID,
			Amount:    model.WelcomeBonus,
			Kind:      model.TransactionEarned,
			Reason:    "welcome bonus",
			Timestamp: now,
		}},
	}
}
