// Package auth holds the credential store for the access/refresh token pair.
package auth

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/famfin/internal/store"
)

// Storage keys for the token pair.
const (
	AccessTokenKey  = "tfr_access_token"
	RefreshTokenKey = "tfr_refresh_token"
)

// ErrNotLoggedIn is returned by operations that need a stored access token.
var ErrNotLoggedIn = errors.New("auth: not logged in")

// Store persists the access and refresh tokens in a KV backend.
// Reads never fail: a backend error is logged and reported as absent.
type Store struct {
	kv  store.KV
	log *logrus.Logger
}

// NewStore returns a credential store over kv.
func NewStore(kv store.KV, log *logrus.Logger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{kv: kv, log: log}
}

// SetTokens writes both tokens. The first write error is returned as is.
func (s *Store) SetTokens(ctx context.Context, access, refresh string) error {
	if err := s.kv.Set(ctx, AccessTokenKey, access); err != nil {
		return err
	}
	return s.kv.Set(ctx, RefreshTokenKey, refresh)
}

// SetAccessToken replaces the access token after a refresh.
func (s *Store) SetAccessToken(ctx context.Context, access string) error {
	return s.kv.Set(ctx, AccessTokenKey, access)
}

// AccessToken returns the stored access token.
func (s *Store) AccessToken(ctx context.Context) (string, bool) {
	return s.read(ctx, AccessTokenKey)
}

// RefreshToken returns the stored refresh token.
func (s *Store) RefreshToken(ctx context.Context) (string, bool) {
	return s.read(ctx, RefreshTokenKey)
}

// ClearTokens removes both tokens. Safe to call when nothing is stored.
func (s *Store) ClearTokens(ctx context.Context) {
	for _, key := range []string{AccessTokenKey, RefreshTokenKey} {
		if err := s.kv.Delete(ctx, key); err != nil {
			s.log.WithError(err).WithField("key", key).Warn("clearing credential")
		}
	}
}

// IsLoggedIn reports whether an access token is present. It does not check
// whether the token is still valid.
func (s *Store) IsLoggedIn(ctx context.Context) bool {
	_, ok := s.AccessToken(ctx)
	return ok
}

// StoredKeys lists the keys held by the backend, for diagnostics.
func (s *Store) StoredKeys(ctx context.Context) ([]string, error) {
	return s.kv.Keys(ctx)
}

func (s *Store) read(ctx context.Context, key string) (string, bool) {
	v, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.WithError(err).WithField("key", key).Warn("reading credential")
		}
		return "", false
	}
	if v == "" {
		return "", false
	}
	return v, true
}
