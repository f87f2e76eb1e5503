package http

import (
	"net/http"
	"strings"

	"smartfinance/internal/core"
	"smartfinance/internal/services"
)

type goalRequest struct {
	Name          string     `json:"name"`
	TargetAmount  core.Money `json:"targetAmount"`
	CurrentAmount core.Money `json:"currentAmount"`
	Deadline      core.Date  `json:"deadline"`
}

func (req goalRequest) toGoal() core.Goal {
	return core.Goal{
		Name:          sanitizeInput(req.Name),
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		Deadline:      req.Deadline,
	}
}

type fundsRequest struct {
	Amount core.Money `json:"amount"`
}

// handleListGoals supports ?status=active|completed.
func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	status := services.GoalStatusFilter(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status"))))
	switch status {
	case services.GoalsAll, services.GoalsActive, services.GoalsCompleted:
	default:
		BadRequestError("status must be active or completed").Write(w)
		return
	}
	goals, err := s.svc.Goals.List(r.Context(), status)
	if err != nil {
		s.respondError(w, r, "list goals", err)
		return
	}
	NewJSONResponse().Body(goals).Write(w)
}

func (s *Server) handleGoalsSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.svc.Goals.Summary(r.Context())
	if err != nil {
		s.respondError(w, r, "goals summary", err)
		return
	}
	NewJSONResponse().Body(sum).Write(w)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	id, bad := ParseID(r)
	if bad != nil {
		bad.Write(w)
		return
	}
	g, err := s.svc.Goals.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, "get goal", err)
		return
	}
	NewJSONResponse().Body(g).Write(w)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if bad := DecodeJSON(w, r, &req); bad != nil {
		bad.Write(w)
		return
	}
	g, err := s.svc.Goals.Create(r.Context(), req.toGoal())
	if err != nil {
		s.respondError(w, r, "create goal", err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(g).Write(w)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	id, bad := ParseID(r)
	if bad != nil {
		bad.Write(w)
		return
	}
	var req goalRequest
	if bad := DecodeJSON(w, r, &req); bad != nil {
		bad.Write(w)
		return
	}
	g, err := s.svc.Goals.Update(r.Context(), id, req.toGoal())
	if err != nil {
		s.respondError(w, r, "update goal", err)
		return
	}
	NewJSONResponse().Body(g).Write(w)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, bad := ParseID(r)
	if bad != nil {
		bad.Write(w)
		return
	}
	g, err := s.svc.Goals.Delete(r.Context(), id)
	if err != nil {
		s.respondError(w, r, "delete goal", err)
		return
	}
	NewJSONResponse().Body(g).Write(w)
}

func (s *Server) handleAddFunds(w http.ResponseWriter, r *http.Request) {
	id, bad := ParseID(r)
	if bad != nil {
		bad.Write(w)
		return
	}
	var req fundsRequest
	if bad := DecodeJSON(w, r, &req); bad != nil {
		bad.Write(w)
		return
	}
	g, err := s.svc.Goals.AddFunds(r.Context(), id, req.Amount)
	if err != nil {
		s.respondError(w, r, "add funds", err)
		return
	}
	NewJSONResponse().Body(g).Write(w)
}

func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	id, bad := ParseID(r)
	if bad != nil {
		bad.Write(w)
		return
	}
	p, err := s.svc.Goals.Progress(r.Context(), id)
	if err != nil {
		s.respondError(w, r, "goal progress", err)
		return
	}
	NewJSONResponse().Body(p).Write(w)
}
