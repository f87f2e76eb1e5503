package http

import (
	"net/http"

	"smartfinance/internal/core"
)

// budgetRequest omits spent: stored spend is only written by refreshes.
type budgetRequest struct {
	CategoryID int64      `json:"categoryId"`
	Amount     core.Money `json:"amount"`
	Month      core.Month `json:"month"`
}

func (req budgetRequest) toBudget() core.Budget {
	return core.Budget{CategoryID: req.CategoryID, Amount: req.Amount, Month: req.Month}
}

// handleListBudgets supports ?month=YYYY-MM and ?categoryId.
func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	month, bad := ParseMonthParam(q, "month")
	if bad != nil {
		bad.Write(w)
		return
	}
	categoryID, bad := ParseIntParam(q, "categoryId")
	if bad != nil {
		bad.Write(w)
		return
	}
	budgets, err := s.svc.Budgets.List(r.Context(), month, categoryID)
	if err != nil {
		s.respondError(w, r, "list budgets", err)
		return
	}
	NewJSONResponse().Body(budgets).Write(w)
}

// handleBudgetOverview defaults to the current month.
func (s *Server) handleBudgetOverview(w http.ResponseWriter, r *http.Request) {
	month, bad := ParseMonthParam(r.URL.Query(), "month")
	if bad != nil {
		bad.Write(w)
		return
	}
	if month == "" {
		month = core.MonthOf(s.now())
	}
	ov, err := s.svc.Budgets.Overview(r.Context(), month)
	if err != nil {
		s.respondError(w, r, "budget overview", err)
		return
	}
	NewJSONResponse().Body(ov).Write(w)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	id, bad := ParseID(r)
	if bad != nil {
		bad.Write(w)
		return
	}
	b, err := s.svc.Budgets.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, "get budget", err)
		return
	}
	NewJSONResponse().Body(b).Write(w)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if bad := DecodeJSON(w, r, &req); bad != nil {
		bad.Write(w)
		return
	}
	b, err := s.svc.Budgets.Create(r.Context(), req.toBudget())
	if err != nil {
		s.respondError(w, r, "create budget", err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(b).Write(w)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, bad := ParseID(r)
	if bad != nil {
		bad.Write(w)
		return
	}
	var req budgetRequest
	if bad := DecodeJSON(w, r, &req); bad != nil {
		bad.Write(w)
		return
	}
	b, err := s.svc.Budgets.Update(r.Context(), id, req.toBudget())
	if err != nil {
		s.respondError(w, r, "update budget", err)
		return
	}
	NewJSONResponse().Body(b).Write(w)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, bad := ParseID(r)
	if bad != nil {
		bad.Write(w)
		return
	}
	b, err := s.svc.Budgets.Delete(r.Context(), id)
	if err != nil {
		s.respondError(w, r, "delete budget", err)
		return
	}
	NewJSONResponse().Body(b).Write(w)
}
