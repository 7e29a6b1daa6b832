package model

// Identity represents the authenticated principal supplied by an external
// authentication provider. It is replaced wholesale on every provider event
// and carries facts only, no decisions.
type Identity struct {
	UserID      string
	Email       string
	DisplayName string
	PhotoURL    string
}
