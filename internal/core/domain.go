package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// Transaction is a signed monetary record owned by the wallet API.
	// Negative amounts are expenses, positive amounts are income.
	Transaction struct {
		ID        string          `json:"id"`
		UserID    string          `json:"user_id,omitempty"`
		Title     string          `json:"title"`
		Category  string          `json:"category"`
		Amount    decimal.Decimal `json:"amount"`
		CreatedAt time.Time       `json:"created_at"`
	}

	// Timestamp is an ISO-8601 instant as the wallet API writes it. Values
	// without a zone are read as UTC.
	Timestamp struct {
		time.Time
	}

	// Summary is the server-computed aggregate for a user.
	Summary struct {
		Balance  decimal.Decimal `json:"balance"`
		Income   decimal.Decimal `json:"income"`
		Expenses decimal.Decimal `json:"expenses"`
	}

	// User is the subset of the identity provider's user the app reads.
	User struct {
		ID        string
		FirstName string
		Email     string
	}
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z07",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var (
	ErrEmptyTitle      = errors.New("title is required")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrMissingCategory = errors.New("category is required")
)

// IsIncome reports whether the transaction adds to the balance.
func (t Transaction) IsIncome() bool {
	return t.Amount.IsPositive()
}

// IsZero reports whether the summary holds only zero values.
func (s Summary) IsZero() bool {
	return s.Balance.IsZero() && s.Income.IsZero() && s.Expenses.IsZero()
}

// DisplayName returns the first name, falling back to the local part
// of the primary email address.
func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.FirstName); name != "" {
		return name
	}
	local, _, _ := strings.Cut(u.Email, "@")
	return local
}

// ParseTimestamp accepts RFC 3339, zone-less date-times, the Postgres text
// form and plain dates.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		ts.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if strings.TrimSpace(s) == "" {
		ts.Time = time.Time{}
		return nil
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	ts.Time = t
	return nil
}

// UnmarshalJSON decodes created_at through Timestamp so one odd date does
// not fail the whole list.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type plain Transaction
	aux := struct {
		*plain
		CreatedAt Timestamp `json:"created_at"`
	}{plain: (*plain)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.CreatedAt = aux.CreatedAt.Time
	return nil
}
