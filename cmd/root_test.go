package cmd

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/theirongolddev/famfin/internal/api"
	"github.com/theirongolddev/famfin/internal/auth"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"42", 42, false},
		{"#7", 7, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := parseID(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseID(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("parseID(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestOptionalID(t *testing.T) {
	id, err := optionalID("")
	if err != nil || id != nil {
		t.Fatalf("optionalID(\"\") = %v, %v; want nil, nil", id, err)
	}
	id, err = optionalID("12")
	if err != nil || id == nil || *id != 12 {
		t.Fatalf("optionalID(\"12\") = %v, %v", id, err)
	}
	if _, err := optionalID("x"); err == nil {
		t.Fatal("expected error for non-numeric id")
	}
}

func TestParseAmountArg(t *testing.T) {
	v, err := parseAmountArg("$1,234.50")
	if err != nil {
		t.Fatalf("parseAmountArg: %v", err)
	}
	if v != 1234.5 {
		t.Fatalf("parseAmountArg = %v, want 1234.5", v)
	}
	if _, err := parseAmountArg("-5"); err == nil {
		t.Fatal("expected negative amount to be rejected")
	}
	if _, err := parseAmountArg("lots"); err == nil {
		t.Fatal("expected garbage to be rejected")
	}
}

func TestDescribeError(t *testing.T) {
	rt.cfg.Backend.URL = "http://finance.test"
	defer func() { rt.cfg.Backend.URL = "" }()

	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "not logged in",
			err:  fmt.Errorf("loading: %w", auth.ErrNotLoggedIn),
			want: []string{"famfin login"},
		},
		{
			name: "auth",
			err:  &api.AuthenticationError{Message: "session expired"},
			want: []string{"session expired", "famfin login"},
		},
		{
			name: "network",
			err:  &api.NetworkError{Op: "list budgets", Err: errors.New("connection refused")},
			want: []string{"http://finance.test", "connection refused"},
		},
		{
			name: "single field",
			err: &api.ValidationError{Op: "add expense", StatusCode: 400, Message: "amount: must be positive",
				Fields: []api.FieldError{{Field: "amount", Message: "must be positive"}}},
			want: []string{"amount: must be positive"},
		},
		{
			name: "many fields",
			err: &api.ValidationError{Op: "create goal", StatusCode: 400, Message: "name: required",
				Fields: []api.FieldError{{Field: "name", Message: "required"}, {Field: "amount", Message: "too large"}}},
			want: []string{"create goal was rejected", "    name: required", "    amount: too large"},
		},
		{
			name: "server",
			err:  &api.ServerError{Op: "list goals", StatusCode: 500, Message: "list goals: 500 Internal Server Error"},
			want: []string{"500 Internal Server Error"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := describeError(tt.err)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Fatalf("describeError = %q, want it to contain %q", got, w)
				}
			}
		})
	}
}

func TestToday(t *testing.T) {
	d := today()
	if d.Hour() != 0 || d.Minute() != 0 || d.Location().String() != "UTC" {
		t.Fatalf("today() = %v, want UTC midnight", d)
	}
}
