package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/TimurManjosov/apollo/internal/console"
)

type audienceRequest struct {
	Name string `json:"name"`
}

// handleAddAudience handles POST /v1/toggles/{id}/audiences
func (s *Server) handleAddAudience(w http.ResponseWriter, r *http.Request) {
	t, ok := s.resolveToggle(w, r)
	if !ok {
		return
	}
	var req audienceRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req, "expected optional field 'name'") {
		return
	}
	created, err := s.console.AddAudience(r.Context(), t.ID, req.Name)
	if err != nil {
		writeConsoleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleRenameAudience handles PATCH /v1/toggles/{id}/audiences/{aid}
func (s *Server) handleRenameAudience(w http.ResponseWriter, r *http.Request) {
	t, ok := s.resolveToggle(w, r)
	if !ok {
		return
	}
	var req audienceRequest
	if !decodeJSON(w, r, &req, "expected field 'name'") {
		return
	}
	renamed, err := s.console.RenameAudience(r.Context(), t.ID, chi.URLParam(r, "aid"), req.Name)
	if err != nil {
		writeConsoleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, renamed)
}

// handleDeleteAudience handles DELETE /v1/toggles/{id}/audiences/{aid}
func (s *Server) handleDeleteAudience(w http.ResponseWriter, r *http.Request) {
	t, ok := s.resolveToggle(w, r)
	if !ok {
		return
	}
	if err := s.console.DeleteAudience(r.Context(), t.ID, chi.URLParam(r, "aid")); err != nil {
		writeConsoleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAddRule handles POST /v1/toggles/{id}/audiences/{aid}/rules
func (s *Server) handleAddRule(w http.ResponseWriter, r *http.Request) {
	t, ok := s.resolveToggle(w, r)
	if !ok {
		return
	}
	created, err := s.console.AddRule(r.Context(), t.ID, chi.URLParam(r, "aid"))
	if err != nil {
		writeConsoleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleUpdateRule handles PATCH /v1/toggles/{id}/audiences/{aid}/rules/{rid}
func (s *Server) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	t, ok := s.resolveToggle(w, r)
	if !ok {
		return
	}
	var patch console.RulePatch
	if !decodeJSON(w, r, &patch, "expected any of 'attribute', 'customAttribute', 'operator', 'value'") {
		return
	}
	updated, err := s.console.UpdateRule(r.Context(), t.ID, chi.URLParam(r, "aid"), chi.URLParam(r, "rid"), patch)
	if err != nil {
		writeConsoleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// handleDeleteRule handles DELETE /v1/toggles/{id}/audiences/{aid}/rules/{rid}
func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	t, ok := s.resolveToggle(w, r)
	if !ok {
		return
	}
	if err := s.console.DeleteRule(r.Context(), t.ID, chi.URLParam(r, "aid"), chi.URLParam(r, "rid")); err != nil {
		writeConsoleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
