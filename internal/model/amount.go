// Package model defines the domain types exchanged with the famfin backend.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Amount is a monetary value. The backend serializes decimals as strings
// ("100.00") while clients send plain numbers, so Amount accepts both and
// always encodes as a JSON number.
type Amount float64

// UnmarshalJSON decodes a number, a numeric string, or null.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = 0
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("model: decoding amount: %w", err)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*a = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("model: invalid amount %q: %w", s, err)
		}
		*a = Amount(f)
		return nil
	}

	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("model: decoding amount: %w", err)
	}
	*a = Amount(f)
	return nil
}

// MarshalJSON encodes the amount as a float64 number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(a))
}

// Float64 returns the amount as a float64.
func (a Amount) Float64() float64 { return float64(a) }

// AmountPtr returns a pointer to v as an Amount.
func AmountPtr(v float64) *Amount {
	a := Amount(v)
	return &a
}

// ParseAmount parses user input such as "12.50" or "$12.50".
// Non-numeric input is rejected so it never reaches the backend.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, fmt.Errorf("amount is required")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return f, nil
}

// Ref is a foreign key as the backend renders it: an integer id, a numeric
// string, a nested object with an "id" field, or null.
type Ref struct {
	ID    int64
	Valid bool
}

// RefTo returns a present reference to id.
func RefTo(id int64) Ref { return Ref{ID: id, Valid: true} }

// Is reports whether r is present and points at id.
func (r Ref) Is(id int64) bool { return r.Valid && r.ID == id }

// UnmarshalJSON decodes any of the accepted reference forms.
func (r *Ref) UnmarshalJSON(b []byte) error {
	*r = Ref{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	switch b[0] {
	case '{':
		var obj struct {
			ID *Ref `json:"id"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return fmt.Errorf("model: decoding reference: %w", err)
		}
		if obj.ID != nil {
			*r = *obj.ID
		}
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("model: decoding reference: %w", err)
		}
		if s == "" {
			return nil
		}
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("model: invalid reference %q: %w", s, err)
		}
		*r = RefTo(id)
		return nil
	}

	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("model: decoding reference: %w", err)
	}
	*r = RefTo(int64(f))
	return nil
}

// MarshalJSON encodes the id, or null when absent.
func (r Ref) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(r.ID, 10)), nil
}

func (r Ref) String() string {
	if !r.Valid {
		return "-"
	}
	return strconv.FormatInt(r.ID, 10)
}

// Date is a calendar date or timestamp. The backend sends DateField values
// as "2006-01-02" and DateTimeField values as RFC 3339.
type Date struct {
	time.Time
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// UnmarshalJSON decodes any of the accepted date layouts. Null leaves the zero time.
func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		d.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("model: decoding date: %w", err)
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("model: unrecognized date %q", s)
}

// MarshalJSON encodes the date as "2006-01-02", or null when zero.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(time.DateOnly))
}

// DateOf returns a Date for t.
func DateOf(t time.Time) Date { return Date{Time: t} }
