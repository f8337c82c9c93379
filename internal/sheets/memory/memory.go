package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/codingniket/FinApp/internal/core"
	"github.com/codingniket/FinApp/internal/sheets"
)

// Row is one exported transaction.
type Row struct {
	UserID      string
	Transaction core.Transaction
	Status      string
}

type Store struct {
	mu   sync.Mutex
	rows []Row
}

var _ sheets.TransactionExporter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// Append stores the transaction and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, userID string, tx core.Transaction) (string, error) {
	if tx.ID == "" {
		return "", errors.New("transaction id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, Row{UserID: userID, Transaction: tx, Status: sheets.StatusActive})
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

func (s *Store) MarkDeleted(_ context.Context, transactionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rows {
		if s.rows[i].Transaction.ID == transactionID {
			s.rows[i].Status = sheets.StatusDeleted
			return nil
		}
	}
	return fmt.Errorf("%s: %w", transactionID, sheets.ErrRowNotFound)
}

// Rows returns a copy of the stored rows in insertion order.
func (s *Store) Rows() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Row(nil), s.rows...)
}
