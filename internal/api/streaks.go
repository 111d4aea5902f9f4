package api

import (
	"context"
	"fmt"

	"github.com/theirongolddev/famfin/internal/model"
)

// Streaks lists the user's streak records. The backend keeps one per user.
func (c *Client) Streaks(ctx context.Context) ([]model.Streak, error) {
	var out []model.Streak
	if err := c.get(ctx, "Fetching streak", "/api/streaks/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Streak returns the user's streak, or nil if none has been started.
func (c *Client) Streak(ctx context.Context) (*model.Streak, error) {
	all, err := c.Streaks(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}
	return &all[0], nil
}

// CreateStreak starts a streak at count.
func (c *Client) CreateStreak(ctx context.Context, count int) (*model.Streak, error) {
	var out model.Streak
	if err := c.post(ctx, "Creating streak", "/api/streaks/", map[string]int{"count": count}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateStreak applies a partial update.
func (c *Client) UpdateStreak(ctx context.Context, id int64, in model.StreakUpdate) (*model.Streak, error) {
	var out model.Streak
	if err := c.patch(ctx, "Updating streak", fmt.Sprintf("/api/streaks/%d/", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckInStreak records today's activity. The backend increments the count
// once per day and resets it after a missed day.
func (c *Client) CheckInStreak(ctx context.Context, id int64) (*model.Streak, error) {
	var out model.Streak
	if err := c.post(ctx, "Updating streak", fmt.Sprintf("/api/streaks/%d/update_streak/", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EnsureStreak returns the user's streak, creating one at zero if missing,
// and checks in for today.
func (c *Client) EnsureStreak(ctx context.Context) (*model.Streak, error) {
	s, err := c.Streak(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil {
		if s, err = c.CreateStreak(ctx, 0); err != nil {
			return nil, err
		}
	}
	updated, err := c.CheckInStreak(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	if updated.ID == 0 {
		// Some backend versions answer the check-in with a message only.
		return c.Streak(ctx)
	}
	return updated, nil
}
