package google

import (
	"fmt"
	"strings"

	"github.com/codingniket/FinApp/internal/core"
	"github.com/codingniket/FinApp/internal/sheets"
)

// Column layout of the transactions sheet.
var header = []any{"id", "date", "title", "category", "amount", "user_id", "status"}

const (
	colID     = 0
	colStatus = 6
	lastCol   = "G"
)

func toRow(userID string, tx core.Transaction) []any {
	date := ""
	if !tx.CreatedAt.IsZero() {
		date = tx.CreatedAt.UTC().Format("2006-01-02")
	}
	return []any{
		tx.ID,
		date,
		tx.Title,
		tx.Category,
		tx.Amount.StringFixed(2),
		userID,
		sheets.StatusActive,
	}
}

// findRow returns the 1-based sheet row holding id in the first column, or 0.
func findRow(values [][]any, id string) int {
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[colID])) == id {
			return i + 1
		}
	}
	return 0
}

func columnLetter(idx int) string {
	return string(rune('A' + idx))
}
