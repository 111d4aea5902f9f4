package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/theirongolddev/famfin/internal/model"
)

const refreshPath = "/api/token/refresh/"

// RefreshState is the token refresh lifecycle as last observed.
type RefreshState int32

const (
	RefreshIdle RefreshState = iota
	RefreshRefreshing
	RefreshFailed
)

func (s RefreshState) String() string {
	switch s {
	case RefreshRefreshing:
		return "refreshing"
	case RefreshFailed:
		return "failed"
	default:
		return "idle"
	}
}

type refreshTracker struct {
	v atomic.Int32
}

func (t *refreshTracker) set(s RefreshState) { t.v.Store(int32(s)) }
func (t *refreshTracker) get() RefreshState  { return RefreshState(t.v.Load()) }

// RefreshState reports where the refresh flow currently stands.
func (c *Client) RefreshState() RefreshState { return c.state.get() }

// refresh exchanges the stored refresh token for a new access token.
// Concurrent callers share one in-flight exchange. The exchange is detached
// from any single caller's cancellation and bounded by the client timeout;
// a caller whose ctx ends first stops waiting without aborting it.
func (c *Client) refresh(ctx context.Context) error {
	ch := c.refreshes.DoChan("refresh", func() (any, error) {
		return nil, c.exchangeRefreshToken(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		if res.Shared {
			c.log.Debug("joined in-flight token refresh")
		}
		return res.Err
	case <-ctx.Done():
		return &AuthenticationError{
			Message: "authentication failed, please login again",
			Err:     &NetworkError{Op: http.MethodPost + " " + refreshPath, Err: ctx.Err()},
		}
	}
}

func (c *Client) exchangeRefreshToken(ctx context.Context) error {
	c.state.set(RefreshRefreshing)

	refresh, ok := c.creds.RefreshToken(ctx)
	if !ok {
		c.creds.ClearTokens(ctx)
		c.state.set(RefreshFailed)
		return &AuthenticationError{Message: "authentication failed, please login again", Err: ErrNoRefreshToken}
	}

	payload, err := json.Marshal(map[string]string{"refresh": refresh})
	if err != nil {
		c.state.set(RefreshFailed)
		return &AuthenticationError{Message: "authentication failed, please login again", Err: err}
	}

	resp, err := c.send(ctx, Request{Method: http.MethodPost, Path: refreshPath, Anonymous: true}, payload, uuid.NewString())
	if err != nil {
		// Transport failures leave the tokens in place so a later attempt can succeed.
		c.state.set(RefreshFailed)
		c.log.WithError(err).Warn("token refresh could not reach backend")
		return &AuthenticationError{Message: "authentication failed, please login again", Err: err}
	}

	if !resp.OK() {
		c.creds.ClearTokens(ctx)
		c.state.set(RefreshFailed)
		c.log.WithField("status", resp.StatusCode).Info("refresh token rejected, credentials cleared")
		return &AuthenticationError{Message: "session expired, please login again", Err: errorFromResponse("Token refresh", resp)}
	}

	var pair model.TokenPair
	if err := json.Unmarshal(resp.Body, &pair); err != nil || pair.Access == "" {
		c.creds.ClearTokens(ctx)
		c.state.set(RefreshFailed)
		if err == nil {
			err = errors.New("refresh response carried no access token")
		}
		return &AuthenticationError{Message: "session expired, please login again", Err: err}
	}

	if pair.Refresh != "" {
		err = c.creds.SetTokens(ctx, pair.Access, pair.Refresh)
	} else {
		err = c.creds.SetAccessToken(ctx, pair.Access)
	}
	if err != nil {
		c.state.set(RefreshFailed)
		return &AuthenticationError{Message: "could not store refreshed token", Err: err}
	}

	c.state.set(RefreshIdle)
	c.log.Info("access token refreshed")
	return nil
}
