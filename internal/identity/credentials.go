package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/matthewhartstonge/argon2"

	"github.com/sangyanhq/sangyan-api/internal/model"
	"github.com/sangyanhq/sangyan-api/internal/repository"
)

var (
	ErrEmailAlreadyRegistered = errors.New("email is already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
)

// CredentialsService implements the email/password sign-in entry point.
// Successful registrations and logins publish the verified identity to the
// hub, which drives the session store downstream.
type CredentialsService struct {
	creds repository.CredentialRepository
	hub   *Hub
	argon argon2.Config
	now   func() time.Time
	newID func() string
}

// NewCredentialsService creates a CredentialsService with argon2 defaults.
func NewCredentialsService(creds repository.CredentialRepository, hub *Hub) *CredentialsService {
	return &CredentialsService{
		creds: creds,
		hub:   hub,
		argon: argon2.DefaultConfig(),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Register creates a credential for a new user, assigns a stable user id,
// and signs the user in.
func (s *CredentialsService) Register(
	ctx context.Context,
	email, password, displayName string,
) (*model.Identity, error) {
	email = normalizeEmail(email)

	hash, err := s.argon.HashEncoded([]byte(password))
	if err != nil {
		return nil, err
	}

	cred := &model.Credential{
		UserID:       s.newID(),
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		CreatedAt:    s.now(),
	}

	if err := s.creds.Create(ctx, cred); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, ErrEmailAlreadyRegistered
		}
		return nil, err
	}

	identity := model.Identity{
		UserID:      cred.UserID,
		Email:       cred.Email,
		DisplayName: cred.DisplayName,
	}
	s.hub.SignIn(identity)

	return &identity, nil
}

// Login verifies an email/password pair and signs the user in.
func (s *CredentialsService) Login(ctx context.Context, email, password string) (*model.Identity, error) {
	cred, err := s.creds.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := argon2.VerifyEncoded([]byte(password), []byte(cred.PasswordHash))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	identity := model.Identity{
		UserID:      cred.UserID,
		Email:       cred.Email,
		DisplayName: cred.DisplayName,
	}
	s.hub.SignIn(identity)

	return &identity, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
