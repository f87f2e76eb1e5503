package sheets

import (
	"context"

	"smartfinance/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionMirror keeps a copy of every transaction in an external sheet.
	TransactionMirror interface {
		// Upsert writes the transaction row, replacing an existing row with
		// the same id. It returns a reference to the written range.
		Upsert(ctx context.Context, t core.Transaction) (rowRef string, err error)
		// Delete clears the row holding the transaction id. A missing row
		// is not an error.
		Delete(ctx context.Context, id int64) error
	}
)

// Header is the first row of a mirror sheet.
var Header = []string{"ID", "Date", "Type", "Category", "Description", "Amount", "Notes"}

// Row renders a transaction as the mirror columns, in Header order.
func Row(t core.Transaction) []any {
	return []any{t.ID, t.Date.String(), string(t.Type), t.Category, t.Description, t.Amount.String(), t.Notes}
}
