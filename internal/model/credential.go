package model

import "time"

// Credential represents a locally registered email/password login. External
// federated identities never have one; they are verified by their provider.
type Credential struct {
	UserID       string
	Email        string
	PasswordHash string
	DisplayName  string
	CreatedAt    time.Time
}
