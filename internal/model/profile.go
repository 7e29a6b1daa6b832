package model

import "time"

// Role represents a user's role in the community.
type Role string

const (
	RoleGuest  Role = "guest"
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// MembershipStatus represents the state of a user's membership application.
type MembershipStatus string

const (
	MembershipPending  MembershipStatus = "pending"
	MembershipApproved MembershipStatus = "approved"
	MembershipRejected MembershipStatus = "rejected"
)

// WelcomeBonus is the one-time Paras Stones credit granted when a profile
// is created for a user seen for the first time.
const WelcomeBonus int64 = 100

// ProfileRecord is the durable per-user record combining profile attributes
// and ledger state. One record exists per user id; the record is the unit of
// mutual exclusion for concurrent writes.
type ProfileRecord struct {
	UserID           string
	Email            string
	DisplayName      string
	PhotoURL         string
	Role             Role
	MembershipStatus MembershipStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Phone            string
	DateOfBirth      string
	Gender           string
	Institute        string
	Course           string
	YearOfStudy      string
	EnrollmentNumber string
	Department       string
	Specialization   string
	Address          string
	City             string
	State            string
	Pincode          string
	Bio              string
	Interests        string
	Skills           string
	Achievements     string
	GithubURL        string
	LinkedinURL      string
	TwitterURL       string
	WebsiteURL       string

	// Balance and History are owned by the ledger; they are only ever
	// mutated together through atomic repository operations.
	Balance int64
	History []Transaction
}

// HistoryTotal returns the sum of signed transaction amounts. For any
// committed record this equals Balance.
func (p *ProfileRecord) HistoryTotal() int64 {
	var total int64
	for _, t := range p.History {
		total += t.SignedAmount()
	}
	return total
}

// Clone returns a deep copy of the record. The ledger history is copied so
// callers cannot alias the stored slice.
func (p *ProfileRecord) Clone() *ProfileRecord {
	clone := *p
	clone.History = make([]Transaction, len(p.History))
	copy(clone.History, p.History)
	return &clone
}
