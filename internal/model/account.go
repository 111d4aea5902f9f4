package model

import (
	"bytes"
	"encoding/json"
)

// Credentials are the username and password exchanged for a token pair.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterInput is the body for creating an account.
type RegisterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// TokenPair is the backend's response to a login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// User is the account returned by registration.
type User struct {
	ID       int64  `json:"id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Profile holds per-user settings.
type Profile struct {
	Username      string `json:"username,omitempty"`
	Email         string `json:"email,omitempty"`
	MonthlyIncome Amount `json:"monthly_income"`
	Family        Ref    `json:"family"`
}

// ProfileUpdate is a partial profile update.
type ProfileUpdate struct {
	MonthlyIncome *float64 `json:"monthly_income,omitempty"`
}

// Family is a group of users sharing goals and budgets.
type Family struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Members []Member `json:"members"`
}

// FamilyInput is the body for creating or renaming a family.
type FamilyInput struct {
	Name string `json:"name"`
}

// Member is a family member. The backend sends either a bare user id or a
// user object depending on the serializer.
type Member struct {
	ID       int64  `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
}

// UnmarshalJSON decodes a member from a user id or a user object.
func (m *Member) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		type plain Member
		var p plain
		if err := json.Unmarshal(b, &p); err != nil {
			return err
		}
		*m = Member(p)
		return nil
	}
	var r Ref
	if err := r.UnmarshalJSON(b); err != nil {
		return err
	}
	*m = Member{ID: r.ID}
	return nil
}

// Label returns the username, or the id when only the id is known.
func (m Member) Label() string {
	if m.Username != "" {
		return m.Username
	}
	return "user #" + RefTo(m.ID).String()
}

// MemberResult is the response to adding or removing a family member.
type MemberResult struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Streak is the consecutive-day engagement counter.
type Streak struct {
	ID          int64 `json:"id"`
	Count       int   `json:"count"`
	LastUpdated Date  `json:"last_updated"`
}

// StreakUpdate is a partial streak update.
type StreakUpdate struct {
	Count *int `json:"count,omitempty"`
}
