package devapi

import (
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	s := NewStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	s.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Hour)
	}
	id := 0
	s.newID = func() string {
		id++
		return fmt.Sprintf("tx_%02d", id)
	}
	return s
}

func TestStoreListNewestFirst(t *testing.T) {
	s := newTestStore()
	s.Create("u1", "first", "food", decimal.NewFromInt(-5))
	s.Create("u1", "second", "income", decimal.NewFromInt(100))
	s.Create("u2", "other user", "food", decimal.NewFromInt(-1))

	txs := s.List("u1")
	require.Len(t, txs, 2)
	assert.Equal(t, "second", txs[0].Title)
	assert.Equal(t, "first", txs[1].Title)
	assert.Empty(t, s.List("nobody"))
	assert.NotNil(t, s.List("nobody"))
}

func TestStoreLastWindow(t *testing.T) {
	s := newTestStore()
	for i := 0; i < 12; i++ {
		s.Create("u1", fmt.Sprintf("t%d", i), "other", decimal.NewFromInt(-1))
	}

	last := s.Last("u1", LastWindow)
	require.Len(t, last, LastWindow)
	assert.Equal(t, "t11", last[0].Title)
	assert.Equal(t, "t2", last[9].Title)
}

func TestStoreSummary(t *testing.T) {
	s := newTestStore()
	s.Create("u1", "salary", "income", decimal.RequireFromString("1000"))
	s.Create("u1", "rent", "bills", decimal.RequireFromString("-400.50"))
	s.Create("u1", "food", "food", decimal.RequireFromString("-99.50"))

	sum := s.Summary("u1")
	assert.True(t, sum.Balance.Equal(decimal.RequireFromString("500")), sum.Balance.String())
	assert.True(t, sum.Income.Equal(decimal.RequireFromString("1000")), sum.Income.String())
	assert.True(t, sum.Expenses.Equal(decimal.RequireFromString("-500")), sum.Expenses.String())
}

func TestStoreDelete(t *testing.T) {
	s := newTestStore()
	tx := s.Create("u1", "x", "food", decimal.NewFromInt(-1))

	assert.True(t, s.Delete(tx.ID))
	assert.False(t, s.Delete(tx.ID))
	assert.Empty(t, s.List("u1"))
}

func TestStoreSeed(t *testing.T) {
	s := newTestStore()
	seeded := s.Seed("u1", 25, gofakeit.New(42))

	require.Len(t, seeded, 25)
	assert.Len(t, s.List("u1"), 25)
	for _, tx := range seeded {
		assert.NotEmpty(t, tx.Title)
		assert.False(t, tx.Amount.IsZero())
		if tx.Category == "income" {
			assert.True(t, tx.Amount.IsPositive(), "income %s", tx.Amount)
		} else {
			assert.True(t, tx.Amount.IsNegative(), "expense %s", tx.Amount)
		}
	}
}
