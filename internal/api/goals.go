package api

import (
	"context"
	"fmt"

	"github.com/theirongolddev/famfin/internal/model"
)

// Goals lists the personal goals and the family goals visible to the user.
func (c *Client) Goals(ctx context.Context) ([]model.Goal, error) {
	var out []model.Goal
	if err := c.get(ctx, "Fetching goals", "/api/goals/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateGoal creates a goal.
func (c *Client) CreateGoal(ctx context.Context, in model.GoalInput) (*model.Goal, error) {
	var out model.Goal
	if err := c.post(ctx, "Creating goal", "/api/goals/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateGoal applies a partial update.
func (c *Client) UpdateGoal(ctx context.Context, id int64, in model.GoalUpdate) (*model.Goal, error) {
	var out model.Goal
	if err := c.patch(ctx, "Updating goal", goalPath(id, ""), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteGoal removes a goal.
func (c *Client) DeleteGoal(ctx context.Context, id int64) error {
	return c.delete(ctx, "Deleting goal", goalPath(id, ""), nil)
}

// PinGoal pins a goal to the top of the list.
func (c *Client) PinGoal(ctx context.Context, id int64) (*model.Message, error) {
	var out model.Message
	if err := c.post(ctx, "Pinning goal", goalPath(id, "pin/"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UnpinGoal unpins a goal.
func (c *Client) UnpinGoal(ctx context.Context, id int64) (*model.Message, error) {
	var out model.Message
	if err := c.post(ctx, "Unpinning goal", goalPath(id, "unpin/"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func goalPath(id int64, action string) string {
	return fmt.Sprintf("/api/goals/%d/%s", id, action)
}

// Contributions lists the user's contributions across all goals.
func (c *Client) Contributions(ctx context.Context) ([]model.Contribution, error) {
	var out []model.Contribution
	if err := c.get(ctx, "Fetching contributions", "/api/contributions/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateContribution records money put toward a goal.
func (c *Client) CreateContribution(ctx context.Context, in model.ContributionInput) (*model.Contribution, error) {
	var out model.Contribution
	if err := c.post(ctx, "Adding contribution", "/api/contributions/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
