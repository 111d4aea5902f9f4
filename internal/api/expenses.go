package api

import (
	"context"
	"fmt"

	"github.com/theirongolddev/famfin/internal/model"
)

// Expenses lists the user's expenses.
func (c *Client) Expenses(ctx context.Context) ([]model.Expense, error) {
	var out []model.Expense
	if err := c.get(ctx, "Fetching expenses", "/api/expenses/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RecentExpenses lists the most recent expenses.
func (c *Client) RecentExpenses(ctx context.Context) ([]model.Expense, error) {
	var out []model.Expense
	if err := c.get(ctx, "Fetching recent expenses", "/api/expenses/recent/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddExpense records an expense.
func (c *Client) AddExpense(ctx context.Context, in model.ExpenseInput) (*model.Expense, error) {
	var out model.Expense
	if err := c.post(ctx, "Adding expense", "/api/expenses/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateExpense applies a partial update.
func (c *Client) UpdateExpense(ctx context.Context, id int64, in model.ExpenseUpdate) (*model.Expense, error) {
	var out model.Expense
	if err := c.patch(ctx, "Updating expense", fmt.Sprintf("/api/expenses/%d/", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteExpense removes an expense.
func (c *Client) DeleteExpense(ctx context.Context, id int64) (*model.Message, error) {
	var out model.Message
	if err := c.delete(ctx, "Deleting expense", fmt.Sprintf("/api/expenses/%d/", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
