package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"15", "15", true},
		{"1.23", "1.23", true},
		{" 2.50 ", "2.5", true},
		{"0.01", "0.01", true},
		{"0", "", false},
		{"-1", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
		{"   ", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err != ErrInvalidAmount {
			t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		in   decimal.Decimal
		want string
	}{
		{decimal.NewFromInt(-42), "-$42.00"},
		{decimal.NewFromInt(42), "$42.00"},
		{decimal.Zero, "$0.00"},
		{decimal.RequireFromString("1234.5"), "$1234.50"},
		{decimal.RequireFromString("-0.125"), "-$0.13"},
	}
	for _, tc := range cases {
		if got := FormatCurrency(tc.in); got != tc.want {
			t.Fatalf("FormatCurrency(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBalanceCardFormatting(t *testing.T) {
	if got := FormatIncome(decimal.NewFromInt(30)); got != "+$30.00" {
		t.Fatalf("income = %q", got)
	}
	// Expenses are always shown negative, whatever sign the backend reports.
	for _, in := range []int64{17, -17} {
		if got := FormatExpenses(decimal.NewFromInt(in)); got != "-$17.00" {
			t.Fatalf("expenses(%d) = %q", in, got)
		}
	}
}

func TestFormatTransactionAmount(t *testing.T) {
	cases := map[string]string{
		"30":     "+$30.00",
		"-12.5":  "-$12.50",
		"0":      "-$0.00",
		"0.999":  "+$1.00",
	}
	for in, want := range cases {
		if got := FormatTransactionAmount(decimal.RequireFromString(in)); got != want {
			t.Fatalf("FormatTransactionAmount(%s) = %q, want %q", in, got, want)
		}
	}
}
