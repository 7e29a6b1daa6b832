package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are the custom claims carried by access and refresh tokens.
// The identity mirror fields let the API materialize a default profile
// without a round trip to the provider.
type TokenClaims struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Tokens bundles the token pair returned on sign-in.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Issuer mints and validates token pairs for authenticated users.
type Issuer struct {
	jwtAuth       JWTAuthenticator
	issuer        string
	accessSecret  string
	refreshSecret string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewIssuer creates a token Issuer. The issuer string doubles as the
// expected audience.
func NewIssuer(
	jwtAuth JWTAuthenticator,
	issuer string,
	accessSecret, refreshSecret string,
	accessTTL, refreshTTL time.Duration,
) *Issuer {
	return &Issuer{
		jwtAuth:       jwtAuth,
		issuer:        issuer,
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// Issue generates an access/refresh token pair for the given user.
func (i *Issuer) Issue(userID, email, displayName string) (*Tokens, error) {
	accessToken, err := i.generate(userID, email, displayName, i.accessSecret, i.accessTTL)
	if err != nil {
		return nil, err
	}

	refreshToken, err := i.generate(userID, email, displayName, i.refreshSecret, i.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &Tokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ValidateAccess validates an access token and returns its claims.
func (i *Issuer) ValidateAccess(token string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	if _, err := i.jwtAuth.ValidateTokenWithClaims(token, i.accessSecret, claims); err != nil {
		return nil, err
	}

	return claims, nil
}

func (i *Issuer) generate(userID, email, displayName, secret string, expiresIn time.Duration) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		UserID:      userID,
		Email:       email,
		DisplayName: displayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.issuer},
		},
	}

	return i.jwtAuth.GenerateToken(claims, secret)
}
