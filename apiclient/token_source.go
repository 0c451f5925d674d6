package apiclient

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-flexcrew-dashboard/credentials"
	apperrors "github.com/jrsteele09/go-flexcrew-dashboard/internal/errors"
	"golang.org/x/oauth2"
)

var _ oauth2.TokenSource = (*StoreTokenSource)(nil)

// StoreTokenSource reads the access token from the credential store on every
// call, so a token replaced after the client was built is picked up.
type StoreTokenSource struct {
	store credentials.Store
}

func NewStoreTokenSource(store credentials.Store) *StoreTokenSource {
	return &StoreTokenSource{store: store}
}

// Token returns the stored access token. An empty store yields an empty token
// and no error; the transport then sends the request without credentials.
func (s *StoreTokenSource) Token() (*oauth2.Token, error) {
	record, err := s.store.Load()
	if err != nil {
		return nil, apperrors.Wrapf(err, "[StoreTokenSource Token] load")
	}
	if record.AccessToken == "" {
		return &oauth2.Token{}, nil
	}
	return &oauth2.Token{
		AccessToken: record.AccessToken,
		TokenType:   "Bearer",
		Expiry:      TokenExpiry(record.AccessToken),
	}, nil
}

// TokenExpiry returns the exp claim of a JWT without verifying its signature.
// Opaque or malformed tokens report the zero time, which oauth2 treats as
// never expiring.
func TokenExpiry(raw string) time.Time {
	claims := jwtlib.RegisteredClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(raw, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// TokenSubject returns the sub claim of a JWT (the user email for FlexCrew tokens)
func TokenSubject(raw string) string {
	claims := jwtlib.RegisteredClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(raw, &claims); err != nil {
		return ""
	}
	return claims.Subject
}
