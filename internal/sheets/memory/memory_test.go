package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/codingniket/FinApp/internal/core"
	"github.com/codingniket/FinApp/internal/sheets"
)

func TestMemoryStoreAppendAndMarkDeleted(t *testing.T) {
	s := New()
	ctx := context.Background()

	ref, err := s.Append(ctx, "user_1", core.Transaction{ID: "tx_1", Title: "t"})
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}
	if _, err := s.Append(ctx, "user_1", core.Transaction{ID: "tx_2"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	if err := s.MarkDeleted(ctx, "tx_1"); err != nil {
		t.Fatalf("mark deleted: %v", err)
	}

	rows := s.Rows()
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Status != sheets.StatusDeleted || rows[1].Status != sheets.StatusActive {
		t.Errorf("statuses = %q, %q", rows[0].Status, rows[1].Status)
	}
}

func TestMemoryStoreErrors(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.Append(ctx, "u", core.Transaction{}); err == nil {
		t.Error("expected error for missing id")
	}
	if err := s.MarkDeleted(ctx, "nope"); !errors.Is(err, sheets.ErrRowNotFound) {
		t.Errorf("MarkDeleted unknown = %v, want ErrRowNotFound", err)
	}
}
