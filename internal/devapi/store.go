// Package devapi is an in-memory stand-in for the wallet REST API used for
// local development and end-to-end tests of the client.
package devapi

import (
	"sort"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/codingniket/FinApp/internal/core"
)

// LastWindow is the size of the last10 endpoint's window.
const LastWindow = 10

// Store keeps transactions in memory. It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	byID  map[string]core.Transaction
	now   func() time.Time
	newID func() string
}

func NewStore() *Store {
	return &Store{
		byID:  make(map[string]core.Transaction),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// List returns the user's transactions, newest first.
func (s *Store) List(userID string) []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Transaction, 0)
	for _, tx := range s.byID {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Last returns at most n of the newest transactions.
func (s *Store) Last(userID string, n int) []core.Transaction {
	txs := s.List(userID)
	if len(txs) > n {
		txs = txs[:n]
	}
	return txs
}

// Summary totals the user's transactions. Expenses are reported as a
// negative sum.
func (s *Store) Summary(userID string) core.Summary {
	var sum core.Summary
	for _, tx := range s.List(userID) {
		sum.Balance = sum.Balance.Add(tx.Amount)
		if tx.Amount.IsPositive() {
			sum.Income = sum.Income.Add(tx.Amount)
		} else {
			sum.Expenses = sum.Expenses.Add(tx.Amount)
		}
	}
	return sum
}

func (s *Store) Create(userID, title, category string, amount decimal.Decimal) core.Transaction {
	tx := core.Transaction{
		ID:        s.newID(),
		UserID:    userID,
		Title:     title,
		Category:  category,
		Amount:    amount,
		CreatedAt: s.now().UTC(),
	}
	s.put(tx)
	return tx
}

func (s *Store) put(tx core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[tx.ID] = tx
}

// Delete reports whether a transaction was removed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	return true
}

// Seed adds n random transactions for userID spread over the last 60 days.
func (s *Store) Seed(userID string, n int, faker *gofakeit.Faker) []core.Transaction {
	if faker == nil {
		faker = gofakeit.New(0)
	}
	end := s.now().UTC()
	start := end.AddDate(0, 0, -60)

	seeded := make([]core.Transaction, 0, n)
	for i := 0; i < n; i++ {
		cat := core.Categories[faker.IntRange(0, len(core.Categories)-1)]
		var title string
		var amount decimal.Decimal
		if cat.ID == "income" {
			title = faker.Company() + " payout"
			amount = decimal.NewFromFloat(faker.Price(200, 3000)).Round(2)
		} else {
			title = faker.ProductName()
			amount = decimal.NewFromFloat(faker.Price(1, 250)).Round(2).Neg()
		}
		if amount.IsZero() {
			amount = decimal.NewFromInt(-1)
		}
		tx := core.Transaction{
			ID:        s.newID(),
			UserID:    userID,
			Title:     title,
			Category:  cat.ID,
			Amount:    amount,
			CreatedAt: faker.DateRange(start, end).UTC(),
		}
		s.put(tx)
		seeded = append(seeded, tx)
	}
	return seeded
}
