package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/codingniket/FinApp/internal/amqp"
	"github.com/codingniket/FinApp/internal/core"
	"github.com/codingniket/FinApp/internal/sheets"
	"github.com/codingniket/FinApp/internal/sheets/memory"
)

type failingExporter struct{ err error }

func (f failingExporter) Append(context.Context, string, core.Transaction) (string, error) {
	return "", f.err
}

func (f failingExporter) MarkDeleted(context.Context, string) error { return f.err }

func TestExportWorker_CreatedThenDeleted(t *testing.T) {
	store := memory.New()
	w := NewExportWorker(store, nil)
	ctx := context.Background()

	tx := core.Transaction{ID: "tx_1", Title: "Rent", Category: "bills", Amount: decimal.NewFromInt(-900)}
	if err := w.HandleEvent(ctx, amqp.NewCreatedEvent("user_1", tx)); err != nil {
		t.Fatalf("created: %v", err)
	}
	if err := w.HandleEvent(ctx, amqp.NewDeletedEvent("user_1", "tx_1")); err != nil {
		t.Fatalf("deleted: %v", err)
	}

	rows := store.Rows()
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].UserID != "user_1" || rows[0].Status != sheets.StatusDeleted {
		t.Errorf("row = %+v", rows[0])
	}
	if rows[0].Transaction.CreatedAt.IsZero() {
		t.Error("missing created_at should fall back to the event timestamp")
	}
}

func TestExportWorker_KeepsTransactionDate(t *testing.T) {
	store := memory.New()
	w := NewExportWorker(store, nil)
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	err := w.HandleEvent(context.Background(), amqp.NewCreatedEvent("u", core.Transaction{ID: "tx", CreatedAt: created}))
	if err != nil {
		t.Fatal(err)
	}
	if got := store.Rows()[0].Transaction.CreatedAt; !got.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got, created)
	}
}

func TestExportWorker_Errors(t *testing.T) {
	boom := errors.New("quota exceeded")

	tests := []struct {
		name     string
		exporter sheets.TransactionExporter
		event    *amqp.TransactionEvent
		wantErr  bool
	}{
		{
			name:     "append failure is returned",
			exporter: failingExporter{err: boom},
			event:    amqp.NewCreatedEvent("u", core.Transaction{ID: "tx"}),
			wantErr:  true,
		},
		{
			name:     "mark failure is returned",
			exporter: failingExporter{err: boom},
			event:    amqp.NewDeletedEvent("u", "tx"),
			wantErr:  true,
		},
		{
			name:     "unknown row on delete is ignored",
			exporter: memory.New(),
			event:    amqp.NewDeletedEvent("u", "tx"),
		},
		{
			name:     "created without payload",
			exporter: memory.New(),
			event:    &amqp.TransactionEvent{Type: amqp.EventTransactionCreated, TransactionID: "tx"},
			wantErr:  true,
		},
		{
			name:     "unknown type is ignored",
			exporter: failingExporter{err: boom},
			event:    &amqp.TransactionEvent{Type: "transaction.updated", TransactionID: "tx"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewExportWorker(tt.exporter, nil).HandleEvent(context.Background(), tt.event)
			if (err != nil) != tt.wantErr {
				t.Fatalf("HandleEvent() error = %v, wantErr %v", err, tt.wantErr)
			}
			if _, ok := tt.exporter.(failingExporter); ok && tt.wantErr && !errors.Is(err, boom) {
				t.Errorf("error should wrap exporter error, got %v", err)
			}
		})
	}
}
