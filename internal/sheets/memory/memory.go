package memory

import (
	"context"
	"fmt"
	"sync"

	"smartfinance/internal/core"
	"smartfinance/internal/sheets"
)

// Mirror is an in-process TransactionMirror. Rows keep their insertion slot
// and deleted rows are left blank, like a cleared sheet row.
type Mirror struct {
	mu   sync.Mutex
	rows [][]any
	idx  map[int64]int
}

var _ sheets.TransactionMirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{idx: map[int64]int{}}
}

// Upsert stores the transaction row and returns a synthetic row reference.
func (m *Mirror) Upsert(_ context.Context, t core.Transaction) (string, error) {
	if t.ID <= 0 {
		return "", fmt.Errorf("%w: transaction id is required", core.ErrValidation)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	row := sheets.Row(t)
	if i, ok := m.idx[t.ID]; ok {
		m.rows[i] = row
		return fmt.Sprintf("mem:%d", i+1), nil
	}
	m.rows = append(m.rows, row)
	m.idx[t.ID] = len(m.rows) - 1
	return fmt.Sprintf("mem:%d", len(m.rows)), nil
}

func (m *Mirror) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.idx[id]
	if !ok {
		return nil
	}
	m.rows[i] = nil
	delete(m.idx, id)
	return nil
}

// Rows returns the non-blank rows in sheet order.
func (m *Mirror) Rows() [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]any, 0, len(m.idx))
	for _, r := range m.rows {
		if r != nil {
			out = append(out, append([]any(nil), r...))
		}
	}
	return out
}
