package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/theirongolddev/famfin/internal/model"
)

// Families lists the families the user can see.
func (c *Client) Families(ctx context.Context) ([]model.Family, error) {
	var out []model.Family
	if err := c.get(ctx, "Fetching families", "/api/families/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateFamily creates a family with the user as its first member.
func (c *Client) CreateFamily(ctx context.Context, in model.FamilyInput) (*model.Family, error) {
	var out model.Family
	if err := c.post(ctx, "Creating family", "/api/families/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RenameFamily changes a family's name.
func (c *Client) RenameFamily(ctx context.Context, id int64, in model.FamilyInput) (*model.Family, error) {
	var out model.Family
	if err := c.patch(ctx, "Updating family", fmt.Sprintf("/api/families/%d/", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LeaveFamily removes the user from a family.
func (c *Client) LeaveFamily(ctx context.Context, id int64) (*model.Message, error) {
	var out model.Message
	if err := c.delete(ctx, "Leaving family", fmt.Sprintf("/api/families/%d/", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CurrentFamily returns the user's family, or nil when they have none.
func (c *Client) CurrentFamily(ctx context.Context) (*model.Family, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/user/familyID/"})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if !resp.OK() {
		return nil, errorFromResponse("Fetching family", resp)
	}

	var f model.Family
	if err := decodeJSON(resp.Body, &f); err != nil {
		return nil, fmt.Errorf("api: parsing family: %w", err)
	}
	if f.ID == 0 {
		return nil, nil
	}
	return &f, nil
}

// AddFamilyMember adds a user to the family by username.
func (c *Client) AddFamilyMember(ctx context.Context, familyID int64, username string) (*model.MemberResult, error) {
	return c.changeMember(ctx, http.MethodPost, "Adding family member", familyID, username)
}

// RemoveFamilyMember removes a user from the family by username.
func (c *Client) RemoveFamilyMember(ctx context.Context, familyID int64, username string) (*model.MemberResult, error) {
	return c.changeMember(ctx, http.MethodDelete, "Removing family member", familyID, username)
}

func (c *Client) changeMember(ctx context.Context, method, op string, familyID int64, username string) (*model.MemberResult, error) {
	var out model.MemberResult
	req := Request{
		Method: method,
		Path:   fmt.Sprintf("/api/families/%d/members/", familyID),
		Body:   map[string]string{"username": username},
	}
	if err := c.call(ctx, op, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
