package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is what the access token says about itself. It is decoded
// without verifying the signature and is only used for display.
type TokenClaims struct {
	UserID    string
	TokenType string
	ExpiresAt time.Time
}

// Expired reports whether the token's exp is in the past relative to now.
func (c TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// ParseClaims decodes the claims of a JWT without verifying it.
func ParseClaims(token string) (TokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenClaims{}, fmt.Errorf("auth: decoding token: %w", err)
	}

	var tc TokenClaims
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		tc.ExpiresAt = exp.Time
	}
	switch v := claims["user_id"].(type) {
	case float64:
		tc.UserID = fmt.Sprintf("%.0f", v)
	case string:
		tc.UserID = v
	}
	if tc.UserID == "" {
		if sub, err := claims.GetSubject(); err == nil {
			tc.UserID = sub
		}
	}
	if tt, ok := claims["token_type"].(string); ok {
		tc.TokenType = tt
	}
	return tc, nil
}

// Claims decodes the stored access token.
func (s *Store) Claims(ctx context.Context) (TokenClaims, bool) {
	token, ok := s.AccessToken(ctx)
	if !ok {
		return TokenClaims{}, false
	}
	tc, err := ParseClaims(token)
	if err != nil {
		s.log.WithError(err).Debug("access token is not a JWT")
		return TokenClaims{}, false
	}
	return tc, true
}
