package core

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Series selects which sequence of a Chart is plotted.
type Series string

const (
	SeriesIncome  Series = "income"
	SeriesExpense Series = "expense"
	SeriesBalance Series = "balance"
)

// ParseSeries maps a query value to a Series, defaulting to balance.
func ParseSeries(s string) Series {
	switch Series(s) {
	case SeriesIncome, SeriesExpense:
		return Series(s)
	default:
		return SeriesBalance
	}
}

// Label returns the caption shown under the chart.
func (s Series) Label() string {
	switch s {
	case SeriesIncome:
		return "Income"
	case SeriesExpense:
		return "Expenses"
	default:
		return "Balance"
	}
}

// Color returns the stroke color for the series.
func (s Series) Color() string {
	switch s {
	case SeriesIncome:
		return "#22c55e"
	case SeriesExpense:
		return "#ef4444"
	default:
		return "#2563eb"
	}
}

// Chart holds parallel sequences derived from a set of transactions, in
// chronological order.
type Chart struct {
	Labels  []string
	Income  []decimal.Decimal
	Expense []decimal.Decimal
	Balance []decimal.Decimal
}

// Len returns the number of points in the chart.
func (c Chart) Len() int {
	return len(c.Labels)
}

// Values returns the sequence for the given series.
func (c Chart) Values(s Series) []decimal.Decimal {
	switch s {
	case SeriesIncome:
		return c.Income
	case SeriesExpense:
		return c.Expense
	default:
		return c.Balance
	}
}

// DeriveChart sorts a copy of txs ascending by creation time and produces
// per-entry income, per-entry expense magnitude and the running balance.
// Labels use day/month in loc; a nil loc means time.Local.
func DeriveChart(txs []Transaction, loc *time.Location) Chart {
	if loc == nil {
		loc = time.Local
	}
	sorted := make([]Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	chart := Chart{
		Labels:  make([]string, 0, len(sorted)),
		Income:  make([]decimal.Decimal, 0, len(sorted)),
		Expense: make([]decimal.Decimal, 0, len(sorted)),
		Balance: make([]decimal.Decimal, 0, len(sorted)),
	}
	running := decimal.Zero
	for _, tx := range sorted {
		at := tx.CreatedAt.In(loc)
		chart.Labels = append(chart.Labels, fmt.Sprintf("%d/%d", at.Day(), int(at.Month())))
		if tx.Amount.IsPositive() {
			chart.Income = append(chart.Income, tx.Amount)
			chart.Expense = append(chart.Expense, decimal.Zero)
		} else {
			chart.Income = append(chart.Income, decimal.Zero)
			chart.Expense = append(chart.Expense, tx.Amount.Abs())
		}
		running = running.Add(tx.Amount)
		chart.Balance = append(chart.Balance, running)
	}
	return chart
}
