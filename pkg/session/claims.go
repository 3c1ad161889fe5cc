package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoToken is returned when the session has no access token.
var ErrNoToken = errors.New("no access token")

// Claims decodes the claims of the access token without verifying its
// signature. The backend is the only party that validates tokens; this is
// for display.
func (s *Session) Claims() (jwt.MapClaims, error) {
	tok := s.AccessToken()
	if tok == "" {
		return nil, ErrNoToken
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return nil, fmt.Errorf("failed to decode access token: %w", err)
	}

	return claims, nil
}

// ExpiresAt returns the "exp" claim of the access token. The zero time is
// returned when the token carries no expiry.
func (s *Session) ExpiresAt() (time.Time, error) {
	claims, err := s.Claims()
	if err != nil {
		return time.Time{}, err
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid exp claim: %w", err)
	}
	if exp == nil {
		return time.Time{}, nil
	}

	return exp.Time, nil
}
