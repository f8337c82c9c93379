// Package core provides the domain types shared by the client.
//
// This file contains amount parsing and the currency formatting used by the
// balance card and the transaction list.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-entered amount into a decimal.
//
// Surrounding whitespace is ignored. Blank input, non-numeric input and
// values that are zero or negative return ErrInvalidAmount; the sign of a
// transaction is chosen separately (see TransactionDraft.SignedAmount).
//
// Examples:
//   ParseAmount("15")     -> 15, nil
//   ParseAmount(" 2.50 ") -> 2.5, nil
//   ParseAmount("0")      -> 0, ErrInvalidAmount
//   ParseAmount("abc")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatCurrency renders an amount as a dollar string with a leading minus
// for negative values and exactly two decimals, e.g. -42 -> "-$42.00".
func FormatCurrency(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return sign + "$" + d.Abs().StringFixed(2)
}

// FormatIncome renders the income figure of the balance card.
func FormatIncome(d decimal.Decimal) string {
	return "+" + FormatCurrency(d)
}

// FormatExpenses renders the expenses figure of the balance card. The
// backend may report expenses as a positive or negative total; it is
// always shown as negative.
func FormatExpenses(d decimal.Decimal) string {
	return FormatCurrency(d.Abs().Neg())
}

// FormatTransactionAmount renders a list row amount: "+$x.xx" for income
// and "-$x.xx" for everything else, including zero.
func FormatTransactionAmount(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+$" + d.Abs().StringFixed(2)
	}
	return "-$" + d.Abs().StringFixed(2)
}
