package sheets

import (
	"context"
	"errors"

	"github.com/codingniket/FinApp/internal/core"
)

// Row status values written to the status column.
const (
	StatusActive  = "active"
	StatusDeleted = "deleted"
)

// ErrRowNotFound is returned by MarkDeleted when no row carries the id.
var ErrRowNotFound = errors.New("transaction row not found")

// Ports for outbound adapters.
type (
	// TransactionExporter mirrors wallet transactions into a spreadsheet.
	TransactionExporter interface {
		Append(ctx context.Context, userID string, tx core.Transaction) (rowRef string, err error)
		// MarkDeleted sets the row's status column; rows are never removed.
		MarkDeleted(ctx context.Context, transactionID string) error
	}
)
