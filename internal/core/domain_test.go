package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestUserDisplayName(t *testing.T) {
	cases := []struct {
		u    User
		want string
	}{
		{User{FirstName: "Ada", Email: "ada@example.com"}, "Ada"},
		{User{FirstName: "  ", Email: "grace@example.com"}, "grace"},
		{User{Email: "noat"}, "noat"},
		{User{}, ""},
	}
	for i, tc := range cases {
		if got := tc.u.DisplayName(); got != tc.want {
			t.Fatalf("case %d: DisplayName() = %q, want %q", i, got, tc.want)
		}
	}
}

func TestTransactionDecodesStringAndNumberAmounts(t *testing.T) {
	raw := `[
		{"id":"1","title":"Coffee","category":"food","amount":"-12.50","created_at":"2025-03-02T09:30:00.000Z"},
		{"id":"2","title":"Salary","category":"income","amount":30,"created_at":"2025-03-01T09:30:00Z"}
	]`
	var txs []Transaction
	if err := json.Unmarshal([]byte(raw), &txs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if txs[0].Amount.String() != "-12.5" || txs[0].IsIncome() {
		t.Fatalf("unexpected first transaction: %+v", txs[0])
	}
	if txs[1].Amount.String() != "30" || !txs[1].IsIncome() {
		t.Fatalf("unexpected second transaction: %+v", txs[1])
	}
	if txs[0].CreatedAt.Day() != 2 {
		t.Fatalf("created_at not parsed: %v", txs[0].CreatedAt)
	}
}

func TestSummaryIsZero(t *testing.T) {
	var s Summary
	if !s.IsZero() {
		t.Fatalf("zero value summary should be zero")
	}
	if err := json.Unmarshal([]byte(`{"balance":"10.00","income":"12","expenses":"-2"}`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.IsZero() || s.Balance.String() != "10" {
		t.Fatalf("unexpected summary %+v", s)
	}
}

func TestTransactionDecodesTimestampLayouts(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Time
	}{
		{`"2025-06-01T10:00:00.123Z"`, time.Date(2025, 6, 1, 10, 0, 0, 123000000, time.UTC)},
		{`"2025-06-01T12:00:00+02:00"`, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)},
		{`"2025-06-01T10:00:00"`, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)},
		{`"2025-06-01 10:00:00.5+00"`, time.Date(2025, 6, 1, 10, 0, 0, 500000000, time.UTC)},
		{`"2025-06-01 10:00:00"`, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)},
		{`"2025-06-01"`, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		{`null`, time.Time{}},
		{`""`, time.Time{}},
	}
	for _, tc := range cases {
		raw := `{"id":"1","title":"Coffee","category":"food","amount":-3,"created_at":` + tc.raw + `}`
		var tx Transaction
		if err := json.Unmarshal([]byte(raw), &tx); err != nil {
			t.Fatalf("%s: unmarshal: %v", tc.raw, err)
		}
		if !tx.CreatedAt.Equal(tc.want) {
			t.Fatalf("%s: CreatedAt = %v, want %v", tc.raw, tx.CreatedAt, tc.want)
		}
		if tx.ID != "1" || tx.Title != "Coffee" || tx.Amount.String() != "-3" {
			t.Fatalf("%s: other fields lost: %+v", tc.raw, tx)
		}
	}
}

func TestTransactionRejectsUnknownTimestamp(t *testing.T) {
	raw := `{"id":"1","created_at":"yesterday"}`
	var tx Transaction
	if err := json.Unmarshal([]byte(raw), &tx); err == nil {
		t.Fatal("expected error for unparseable created_at")
	}
}

func TestTransactionTimestampRoundTrip(t *testing.T) {
	in := Transaction{ID: "1", CreatedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Transaction
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !out.CreatedAt.Equal(in.CreatedAt) {
		t.Fatalf("CreatedAt = %v, want %v", out.CreatedAt, in.CreatedAt)
	}
}
