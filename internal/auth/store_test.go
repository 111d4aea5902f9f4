package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/theirongolddev/famfin/internal/logging"
	"github.com/theirongolddev/famfin/internal/store"
)

type brokenKV struct{}

var errBroken = errors.New("backend unavailable")

func (brokenKV) Get(context.Context, string) (string, error) { return "", errBroken }
func (brokenKV) Set(context.Context, string, string) error   { return errBroken }
func (brokenKV) Delete(context.Context, string) error        { return errBroken }
func (brokenKV) Keys(context.Context) ([]string, error)      { return nil, errBroken }

func TestTokenLifecycle(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	s := NewStore(kv, logging.Discard())

	if s.IsLoggedIn(ctx) {
		t.Fatal("fresh store reports logged in")
	}

	if err := s.SetTokens(ctx, "a", "r"); err != nil {
		t.Fatalf("SetTokens: %v", err)
	}
	if tok, ok := s.AccessToken(ctx); !ok || tok != "a" {
		t.Fatalf("AccessToken = %q, %v; want a", tok, ok)
	}
	if tok, ok := s.RefreshToken(ctx); !ok || tok != "r" {
		t.Fatalf("RefreshToken = %q, %v; want r", tok, ok)
	}
	if !s.IsLoggedIn(ctx) {
		t.Fatal("IsLoggedIn = false after SetTokens")
	}
	if v, _ := kv.Get(ctx, "tfr_access_token"); v != "a" {
		t.Fatalf("raw access key = %q", v)
	}
	if keys, err := s.StoredKeys(ctx); err != nil || len(keys) != 2 || keys[0] != AccessTokenKey || keys[1] != RefreshTokenKey {
		t.Fatalf("StoredKeys = %v, %v", keys, err)
	}

	s.ClearTokens(ctx)
	if _, ok := s.AccessToken(ctx); ok {
		t.Fatal("access token present after ClearTokens")
	}
	if _, ok := s.RefreshToken(ctx); ok {
		t.Fatal("refresh token present after ClearTokens")
	}
	if s.IsLoggedIn(ctx) {
		t.Fatal("IsLoggedIn = true after ClearTokens")
	}
	if keys, _ := s.StoredKeys(ctx); len(keys) != 0 {
		t.Fatalf("StoredKeys after ClearTokens = %v", keys)
	}

	s.ClearTokens(ctx)
}

func TestSetAccessTokenKeepsRefresh(t *testing.T) {
	ctx := context.Background()
	s := NewStore(store.NewMemory(), logging.Discard())
	_ = s.SetTokens(ctx, "A1", "R1")

	if err := s.SetAccessToken(ctx, "A2"); err != nil {
		t.Fatal(err)
	}
	if tok, _ := s.AccessToken(ctx); tok != "A2" {
		t.Fatalf("AccessToken = %q, want A2", tok)
	}
	if tok, _ := s.RefreshToken(ctx); tok != "R1" {
		t.Fatalf("RefreshToken = %q, want R1", tok)
	}
}

func TestBackendErrorsAreSwallowedOnRead(t *testing.T) {
	ctx := context.Background()
	s := NewStore(brokenKV{}, logging.Discard())

	if _, ok := s.AccessToken(ctx); ok {
		t.Fatal("AccessToken reported present on backend error")
	}
	if s.IsLoggedIn(ctx) {
		t.Fatal("IsLoggedIn = true on backend error")
	}
	s.ClearTokens(ctx)

	if err := s.SetTokens(ctx, "a", "r"); !errors.Is(err, errBroken) {
		t.Fatalf("SetTokens err = %v, want backend error", err)
	}
}

func TestClaims(t *testing.T) {
	ctx := context.Background()
	exp := time.Now().Add(5 * time.Minute).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":    42,
		"token_type": "access",
		"exp":        exp.Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}

	s := NewStore(store.NewMemory(), logging.Discard())
	if _, ok := s.Claims(ctx); ok {
		t.Fatal("Claims ok with no token")
	}
	_ = s.SetTokens(ctx, token, "r")

	tc, ok := s.Claims(ctx)
	if !ok {
		t.Fatal("Claims not decoded")
	}
	if tc.UserID != "42" || tc.TokenType != "access" {
		t.Fatalf("claims = %+v", tc)
	}
	if !tc.ExpiresAt.Equal(exp) {
		t.Fatalf("ExpiresAt = %v, want %v", tc.ExpiresAt, exp)
	}
	if tc.Expired(time.Now()) {
		t.Fatal("fresh token reported expired")
	}
	if !tc.Expired(exp.Add(time.Second)) {
		t.Fatal("token not expired after exp")
	}

	_ = s.SetTokens(ctx, "opaque", "r")
	if _, ok := s.Claims(ctx); ok {
		t.Fatal("Claims ok for non-JWT token")
	}
}
