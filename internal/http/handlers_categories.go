package http

import (
	"net/http"

	"smartfinance/internal/core"
)

type categoryRequest struct {
	Name  string               `json:"name"`
	Type  core.TransactionType `json:"type"`
	Color string               `json:"color"`
	Icon  string               `json:"icon"`
}

func (req categoryRequest) toCategory() core.Category {
	return core.Category{
		Name:  sanitizeInput(req.Name),
		Type:  req.Type,
		Color: sanitizeInput(req.Color),
		Icon:  sanitizeInput(req.Icon),
	}
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	typ, bad := ParseTypeParam(r.URL.Query(), "type")
	if bad != nil {
		bad.Write(w)
		return
	}
	cats, err := s.svc.Categories.List(r.Context(), typ)
	if err != nil {
		s.respondError(w, r, "list categories", err)
		return
	}
	NewJSONResponse().Body(cats).Write(w)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, bad := ParseID(r)
	if bad != nil {
		bad.Write(w)
		return
	}
	c, err := s.svc.Categories.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, "get category", err)
		return
	}
	NewJSONResponse().Body(c).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if bad := DecodeJSON(w, r, &req); bad != nil {
		bad.Write(w)
		return
	}
	c, err := s.svc.Categories.Create(r.Context(), req.toCategory())
	if err != nil {
		s.respondError(w, r, "create category", err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(c).Write(w)
}

// handleUpdateCategory keeps the stored color and icon when they are blank.
func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, bad := ParseID(r)
	if bad != nil {
		bad.Write(w)
		return
	}
	var req categoryRequest
	if bad := DecodeJSON(w, r, &req); bad != nil {
		bad.Write(w)
		return
	}
	c, err := s.svc.Categories.Update(r.Context(), id, req.toCategory())
	if err != nil {
		s.respondError(w, r, "update category", err)
		return
	}
	NewJSONResponse().Body(c).Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, bad := ParseID(r)
	if bad != nil {
		bad.Write(w)
		return
	}
	c, err := s.svc.Categories.Delete(r.Context(), id)
	if err != nil {
		s.respondError(w, r, "delete category", err)
		return
	}
	NewJSONResponse().Body(c).Write(w)
}
