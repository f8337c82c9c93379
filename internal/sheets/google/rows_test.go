package google

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/codingniket/FinApp/internal/core"
)

func TestToRow(t *testing.T) {
	tx := core.Transaction{
		ID:        "tx_1",
		Title:     "Coffee",
		Category:  "food",
		Amount:    decimal.RequireFromString("-3.5"),
		CreatedAt: time.Date(2025, 3, 7, 23, 0, 0, 0, time.UTC),
	}

	row := toRow("user_1", tx)

	want := []any{"tx_1", "2025-03-07", "Coffee", "food", "-3.50", "user_1", "active"}
	if len(row) != len(header) {
		t.Fatalf("row has %d columns, header has %d", len(row), len(header))
	}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("column %v = %v, want %v", header[i], row[i], want[i])
		}
	}
}

func TestToRowWithoutDate(t *testing.T) {
	row := toRow("u", core.Transaction{ID: "x"})
	if row[1] != "" {
		t.Errorf("date = %v, want empty", row[1])
	}
}

func TestFindRow(t *testing.T) {
	values := [][]any{
		{"id"},
		{"tx_1"},
		{},
		{" tx_3 "},
	}

	tests := []struct {
		id   string
		want int
	}{
		{"tx_1", 2},
		{"tx_3", 4},
		{"missing", 0},
	}
	for _, tt := range tests {
		if got := findRow(values, tt.id); got != tt.want {
			t.Errorf("findRow(%q) = %d, want %d", tt.id, got, tt.want)
		}
	}
}

func TestColumnLetter(t *testing.T) {
	if got := columnLetter(colStatus); got != "G" || lastCol != "G" {
		t.Errorf("columnLetter(status) = %q", got)
	}
}
