package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/theirongolddev/famfin/internal/model"
)

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, in model.RegisterInput) (*model.User, error) {
	var u model.User
	err := c.call(ctx, "Registration", Request{Method: http.MethodPost, Path: "/api/register/", Body: in, Anonymous: true}, &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Login exchanges credentials for a token pair and stores it.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (*model.TokenPair, error) {
	var pair model.TokenPair
	err := c.call(ctx, "Login", Request{Method: http.MethodPost, Path: "/api/token/", Body: creds, Anonymous: true}, &pair)
	if err != nil {
		return nil, err
	}
	if pair.Access == "" || pair.Refresh == "" {
		return nil, errors.New("api: login response is missing tokens")
	}
	if err := c.creds.SetTokens(ctx, pair.Access, pair.Refresh); err != nil {
		return nil, err
	}
	return &pair, nil
}

// Refresh forces a token refresh.
func (c *Client) Refresh(ctx context.Context) error {
	return c.refresh(ctx)
}

// Logout forgets the stored tokens. There is no server-side logout.
func (c *Client) Logout(ctx context.Context) {
	c.creds.ClearTokens(ctx)
}

// IsLoggedIn reports whether an access token is stored.
func (c *Client) IsLoggedIn(ctx context.Context) bool {
	return c.creds.IsLoggedIn(ctx)
}
