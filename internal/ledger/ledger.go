// Package ledger holds the per-screen transaction state: the full list with
// its summary, and the recent window used by the trend chart.
//
// A view belongs to one screen instance. Fetch failures never reach the
// caller; the affected slice falls back to its empty default and the
// failure is logged.
package ledger

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/codingniket/FinApp/internal/api"
	"github.com/codingniket/FinApp/internal/core"
	applog "github.com/codingniket/FinApp/internal/log"
)

// TransactionsAPI is the part of the wallet client used by Transactions.
type TransactionsAPI interface {
	ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error)
	GetSummary(ctx context.Context, userID string) (core.Summary, error)
	DeleteTransaction(ctx context.Context, id string) error
}

// RecentAPI is the part of the wallet client used by Recent.
type RecentAPI interface {
	LastTransactions(ctx context.Context, userID string) ([]core.Transaction, error)
}

// Notifier shows a modal-style message to the user.
type Notifier interface {
	Alert(title, message string)
}

// Alert messages shown after a delete.
const (
	AlertDeleted      = "Transaction deleted successfully"
	AlertErrorTitle   = "Error"
	deleteFailedAlert = "Failed to delete transaction"
)

// Snapshot is a copy of a Transactions view's state.
type Snapshot struct {
	Transactions []core.Transaction
	Summary      core.Summary
	IsLoading    bool
}

// Transactions is the state behind the home screen.
type Transactions struct {
	api      TransactionsAPI
	userID   string
	notifier Notifier
	logger   *applog.Logger

	mu           sync.RWMutex
	transactions []core.Transaction
	summary      core.Summary
	isLoading    bool
}

// NewTransactions returns a view in its initial loading state.
func NewTransactions(client TransactionsAPI, userID string, notifier Notifier, logger *applog.Logger) *Transactions {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Transactions{
		api:          client,
		userID:       userID,
		notifier:     notifier,
		logger:       logger.WithComponent(applog.ComponentLedger),
		transactions: []core.Transaction{},
		isLoading:    true,
	}
}

// LoadData fetches the list and the summary concurrently and waits for
// both. It does nothing when the view has no user.
func (t *Transactions) LoadData(ctx context.Context) {
	if t.userID == "" {
		return
	}

	t.mu.Lock()
	t.isLoading = true
	t.mu.Unlock()

	// Each fetch handles its own failure so neither cancels the other.
	var g errgroup.Group
	g.Go(func() error {
		t.fetchTransactions(ctx)
		return nil
	})
	g.Go(func() error {
		t.fetchSummary(ctx)
		return nil
	})
	_ = g.Wait()

	t.mu.Lock()
	t.isLoading = false
	t.mu.Unlock()
}

func (t *Transactions) fetchTransactions(ctx context.Context) {
	txs, err := t.api.ListTransactions(ctx, t.userID)
	if err != nil {
		t.logger.ErrorContext(ctx, "Error fetching transactions",
			applog.FieldOperation, applog.OpList,
			applog.FieldUserID, t.userID,
			applog.FieldError, err)
		txs = []core.Transaction{}
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	t.mu.Lock()
	t.transactions = txs
	t.mu.Unlock()
}

func (t *Transactions) fetchSummary(ctx context.Context) {
	summary, err := t.api.GetSummary(ctx, t.userID)
	if err != nil {
		t.logger.ErrorContext(ctx, "Error fetching summary",
			applog.FieldOperation, applog.OpSummary,
			applog.FieldUserID, t.userID,
			applog.FieldError, err)
		summary = core.Summary{}
	}
	t.mu.Lock()
	t.summary = summary
	t.mu.Unlock()
}

// DeleteTransaction deletes id and, on success, reloads the list and the
// summary once before alerting. The returned error is informational; the
// user has already been alerted.
func (t *Transactions) DeleteTransaction(ctx context.Context, id string) error {
	if err := t.api.DeleteTransaction(ctx, id); err != nil {
		t.logger.ErrorContext(ctx, "Error deleting transaction",
			applog.FieldOperation, applog.OpDelete,
			applog.FieldTransactionID, id,
			applog.FieldError, err)
		t.alert(AlertErrorTitle, deleteErrorMessage(err))
		return err
	}

	t.LoadData(ctx)
	t.alert(AlertDeleted, "")
	return nil
}

func deleteErrorMessage(err error) string {
	if errors.Is(err, api.ErrDeleteFailed) {
		return deleteFailedAlert
	}
	return err.Error()
}

func (t *Transactions) alert(title, message string) {
	if t.notifier != nil {
		t.notifier.Alert(title, message)
	}
}

// Snapshot returns a copy of the current state.
func (t *Transactions) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	txs := make([]core.Transaction, len(t.transactions))
	copy(txs, t.transactions)
	return Snapshot{
		Transactions: txs,
		Summary:      t.summary,
		IsLoading:    t.isLoading,
	}
}
