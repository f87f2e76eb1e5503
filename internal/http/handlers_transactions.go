package http

import (
	"net/http"

	"smartfinance/internal/core"
)

// transactionRequest is the writable part of a transaction.
type transactionRequest struct {
	Type        core.TransactionType `json:"type"`
	Amount      core.Money           `json:"amount"`
	Category    string               `json:"category"`
	Description string               `json:"description"`
	Date        core.Date            `json:"date"`
	Notes       string               `json:"notes"`
}

func (req transactionRequest) toTransaction() core.Transaction {
	return core.Transaction{
		Type:        req.Type,
		Amount:      req.Amount,
		Category:    sanitizeInput(req.Category),
		Description: sanitizeInput(req.Description),
		Date:        req.Date,
		Notes:       sanitizeInput(req.Notes),
	}
}

type transactionList struct {
	Transactions []core.Transaction `json:"transactions"`
	Totals       core.Totals        `json:"totals"`
}

// handleListTransactions supports ?type, ?category, ?start, ?end and ?q.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	typ, bad := ParseTypeParam(q, "type")
	if bad != nil {
		bad.Write(w)
		return
	}
	start, bad := ParseDateParam(q, "start")
	if bad != nil {
		bad.Write(w)
		return
	}
	end, bad := ParseDateParam(q, "end")
	if bad != nil {
		bad.Write(w)
		return
	}

	txs, err := s.svc.Transactions.List(r.Context(), core.TransactionFilter{
		Type:      typ,
		Category:  sanitizeInput(q.Get("category")),
		StartDate: start,
		EndDate:   end,
		Search:    sanitizeInput(q.Get("q")),
	})
	if err != nil {
		s.respondError(w, r, "list transactions", err)
		return
	}
	NewJSONResponse().Body(transactionList{Transactions: txs, Totals: core.SumTotals(txs)}).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, bad := ParseID(r)
	if bad != nil {
		bad.Write(w)
		return
	}
	t, err := s.svc.Transactions.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, "get transaction", err)
		return
	}
	NewJSONResponse().Body(t).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if bad := DecodeJSON(w, r, &req); bad != nil {
		bad.Write(w)
		return
	}
	t, err := s.svc.Transactions.Create(r.Context(), req.toTransaction())
	if err != nil {
		s.respondError(w, r, "create transaction", err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(t).Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, bad := ParseID(r)
	if bad != nil {
		bad.Write(w)
		return
	}
	var req transactionRequest
	if bad := DecodeJSON(w, r, &req); bad != nil {
		bad.Write(w)
		return
	}
	t, err := s.svc.Transactions.Update(r.Context(), id, req.toTransaction())
	if err != nil {
		s.respondError(w, r, "update transaction", err)
		return
	}
	NewJSONResponse().Body(t).Write(w)
}

// handleDeleteTransaction returns the removed record.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, bad := ParseID(r)
	if bad != nil {
		bad.Write(w)
		return
	}
	t, err := s.svc.Transactions.Delete(r.Context(), id)
	if err != nil {
		s.respondError(w, r, "delete transaction", err)
		return
	}
	NewJSONResponse().Body(t).Write(w)
}
