package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/codingniket/FinApp/internal/amqp"
	applog "github.com/codingniket/FinApp/internal/log"
	"github.com/codingniket/FinApp/internal/sheets"
)

// ExportWorker mirrors transaction events into a spreadsheet.
type ExportWorker struct {
	exporter sheets.TransactionExporter
	logger   *applog.Logger
}

func NewExportWorker(exporter sheets.TransactionExporter, logger *applog.Logger) *ExportWorker {
	if logger == nil {
		logger = applog.Discard()
	}
	return &ExportWorker{
		exporter: exporter,
		logger:   logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleEvent processes a single event from AMQP. Errors are returned so the
// consumer can requeue the message.
func (w *ExportWorker) HandleEvent(ctx context.Context, event *amqp.TransactionEvent) error {
	w.logger.InfoContext(ctx, "Processing transaction event",
		applog.FieldEventType, event.Type,
		applog.FieldTransactionID, event.TransactionID,
		applog.FieldUserID, event.UserID)

	switch event.Type {
	case amqp.EventTransactionCreated:
		return w.handleCreated(ctx, event)
	case amqp.EventTransactionDeleted:
		return w.handleDeleted(ctx, event)
	default:
		w.logger.WarnContext(ctx, "Ignoring unknown event type", applog.FieldEventType, event.Type)
		return nil
	}
}

func (w *ExportWorker) handleCreated(ctx context.Context, event *amqp.TransactionEvent) error {
	if event.Transaction == nil {
		return fmt.Errorf("created event %s has no transaction", event.TransactionID)
	}
	tx := *event.Transaction
	if tx.ID == "" {
		tx.ID = event.TransactionID
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = event.Timestamp
	}

	ref, err := w.exporter.Append(ctx, event.UserID, tx)
	if err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}

	w.logger.InfoContext(ctx, "Exported transaction",
		applog.FieldTransactionID, tx.ID,
		applog.FieldOperation, applog.OpExport,
		"row_ref", ref)
	return nil
}

func (w *ExportWorker) handleDeleted(ctx context.Context, event *amqp.TransactionEvent) error {
	err := w.exporter.MarkDeleted(ctx, event.TransactionID)
	if errors.Is(err, sheets.ErrRowNotFound) {
		// Never exported (e.g. created before the worker ran); nothing to mark.
		w.logger.WarnContext(ctx, "No exported row for deleted transaction",
			applog.FieldTransactionID, event.TransactionID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("mark transaction deleted: %w", err)
	}

	w.logger.InfoContext(ctx, "Marked transaction deleted",
		applog.FieldTransactionID, event.TransactionID)
	return nil
}
