package identity

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/sangyanhq/sangyan-api/internal/model"
)

var ErrInvalidGoogleAudience = errors.New("invalid google audience")

// GoogleService implements the Google federated sign-in entry point. It
// validates an ID token against the configured client id and publishes the
// resulting identity to the hub.
type GoogleService struct {
	clientID string
	hub      *Hub
}

// NewGoogleService creates a GoogleService for the given OAuth client id.
func NewGoogleService(clientID string, hub *Hub) *GoogleService {
	return &GoogleService{clientID: clientID, hub: hub}
}

// SignIn validates the ID token and signs the user in. The Google subject
// id is the stable user id for everything downstream.
func (s *GoogleService) SignIn(ctx context.Context, idToken string) (*model.Identity, error) {
	oauth2Service, err := oauth2.NewService(ctx, option.WithHTTPClient(&http.Client{}))
	if err != nil {
		return nil, err
	}

	tokenInfoCall := oauth2Service.Tokeninfo()
	tokenInfoCall.IdToken(idToken)
	tokenInfo, err := tokenInfoCall.Do()
	if err != nil {
		return nil, err
	}

	if tokenInfo.Audience != s.clientID {
		return nil, ErrInvalidGoogleAudience
	}

	identity := model.Identity{
		UserID: tokenInfo.UserId,
		Email:  tokenInfo.Email,
	}
	s.hub.SignIn(identity)

	return &identity, nil
}
