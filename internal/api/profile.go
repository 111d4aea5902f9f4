package api

import (
	"context"

	"github.com/theirongolddev/famfin/internal/model"
)

// Profile returns the user's profile.
func (c *Client) Profile(ctx context.Context) (*model.Profile, error) {
	var out model.Profile
	if err := c.get(ctx, "Fetching profile", "/api/profile/", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile applies a partial profile update.
func (c *Client) UpdateProfile(ctx context.Context, in model.ProfileUpdate) (*model.Profile, error) {
	var out model.Profile
	if err := c.patch(ctx, "Updating profile", "/api/profile/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetMonthlyIncome updates the monthly income.
func (c *Client) SetMonthlyIncome(ctx context.Context, income float64) (*model.Profile, error) {
	return c.UpdateProfile(ctx, model.ProfileUpdate{MonthlyIncome: &income})
}
