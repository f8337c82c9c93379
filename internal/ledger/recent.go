package ledger

import (
	"context"
	"sync"

	"github.com/codingniket/FinApp/internal/core"
	applog "github.com/codingniket/FinApp/internal/log"
)

// RecentWindow is the number of transactions the backend returns for the
// trend chart.
const RecentWindow = 10

// Recent holds the last RecentWindow transactions of a user.
type Recent struct {
	api    RecentAPI
	userID string
	logger *applog.Logger

	mu           sync.RWMutex
	transactions []core.Transaction
	isLoading    bool
}

// NewRecent returns a view in its initial loading state.
func NewRecent(client RecentAPI, userID string, logger *applog.Logger) *Recent {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Recent{
		api:          client,
		userID:       userID,
		logger:       logger.WithComponent(applog.ComponentLedger),
		transactions: []core.Transaction{},
		isLoading:    true,
	}
}

// Fetch loads the window on first display. It is skipped when the view
// has no user, in which case the view stays loading.
func (r *Recent) Fetch(ctx context.Context) {
	if r.userID == "" {
		return
	}
	r.Refetch(ctx)
}

// Refetch reloads the window unconditionally.
func (r *Recent) Refetch(ctx context.Context) {
	txs, err := r.api.LastTransactions(ctx, r.userID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error fetching last 10 transactions",
			applog.FieldOperation, applog.OpRecent,
			applog.FieldUserID, r.userID,
			applog.FieldError, err)
		txs = nil
	}
	if txs == nil {
		txs = []core.Transaction{}
	}

	r.mu.Lock()
	r.transactions = txs
	r.isLoading = false
	r.mu.Unlock()
}

// Transactions returns a copy of the window as received.
func (r *Recent) Transactions() []core.Transaction {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Transaction, len(r.transactions))
	copy(out, r.transactions)
	return out
}

// IsLoading reports whether no fetch attempt has finished yet.
func (r *Recent) IsLoading() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isLoading
}
