package model

import "time"

// TransactionKind represents the direction of a ledger transaction.
type TransactionKind string

const (
	TransactionEarned TransactionKind = "earned"
	TransactionSpent  TransactionKind = "spent"
)

// Transaction is a single immutable entry in a profile's ledger history.
// Once appended it is never mutated or removed.
type Transaction struct {
	ID        string
	Amount    int64
	Kind      TransactionKind
	Reason    string
	Timestamp time.Time
}

// SignedAmount returns the amount with its accounting sign applied:
// positive for earned, negative for spent.
func (t Transaction) SignedAmount() int64 {
	if t.Kind == TransactionSpent {
		return -t.Amount
	}
	return t.Amount
}
