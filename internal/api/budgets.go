package api

import (
	"context"
	"fmt"

	"github.com/theirongolddev/famfin/internal/model"
)

// Budgets lists the user's personal budgets.
func (c *Client) Budgets(ctx context.Context) ([]model.Budget, error) {
	var out []model.Budget
	if err := c.get(ctx, "Fetching budgets", "/api/budgets/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateBudget creates a personal budget.
func (c *Client) CreateBudget(ctx context.Context, in model.BudgetInput) (*model.Budget, error) {
	var out model.Budget
	if err := c.post(ctx, "Creating budget", "/api/budgets/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateBudget replaces a budget's name, category and amount.
func (c *Client) UpdateBudget(ctx context.Context, id int64, in model.BudgetInput) (*model.Budget, error) {
	var out model.Budget
	if err := c.patch(ctx, "Updating budget", fmt.Sprintf("/api/budgets/%d/", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteBudget removes a budget.
func (c *Client) DeleteBudget(ctx context.Context, id int64) error {
	return c.delete(ctx, "Deleting budget", fmt.Sprintf("/api/budgets/%d/", id), nil)
}

// FamilyBudgets lists budgets shared with the user's family.
func (c *Client) FamilyBudgets(ctx context.Context) ([]model.Budget, error) {
	var out []model.Budget
	if err := c.get(ctx, "Fetching family budgets", "/api/family/budgets/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateFamilyBudget creates a budget shared with the user's family.
func (c *Client) CreateFamilyBudget(ctx context.Context, in model.BudgetInput) (*model.Budget, error) {
	var out model.Budget
	if err := c.post(ctx, "Creating family budget", "/api/family/budgets/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
