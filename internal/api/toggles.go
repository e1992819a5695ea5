package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/TimurManjosov/apollo/internal/assist"
	"github.com/TimurManjosov/apollo/internal/console"
	"github.com/TimurManjosov/apollo/internal/snippet"
	"github.com/TimurManjosov/apollo/internal/toggle"
)

type listResponse struct {
	Toggles  []console.Summary `json:"toggles"`
	ActiveID string            `json:"activeId,omitempty"`
}

type suggestionsResponse struct {
	Suggestions []assist.Suggestion `json:"suggestions"`
}

type snippetsResponse struct {
	Key      string            `json:"key"`
	Snippets []snippet.Snippet `json:"snippets"`
}

// resolveToggle looks up the {id} path parameter, which may be an id or a key.
func (s *Server) resolveToggle(w http.ResponseWriter, r *http.Request) (toggle.Toggle, bool) {
	t, err := s.console.Lookup(chi.URLParam(r, "id"))
	if err != nil {
		writeConsoleError(w, r, err)
		return toggle.Toggle{}, false
	}
	return t, true
}

// handleListToggles handles GET /v1/toggles?q=
func (s *Server) handleListToggles(w http.ResponseWriter, r *http.Request) {
	resp := listResponse{Toggles: s.console.List(r.URL.Query().Get("q"))}
	if active, ok := s.console.Active(); ok {
		resp.ActiveID = active.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCreateToggle handles POST /v1/toggles
func (s *Server) handleCreateToggle(w http.ResponseWriter, r *http.Request) {
	var req console.CreateParams
	if !decodeJSON(w, r, &req, "expected fields 'name' and 'key'") {
		return
	}
	created, err := s.console.Create(r.Context(), req)
	if err != nil {
		writeConsoleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleGetToggle handles GET /v1/toggles/{id}
func (s *Server) handleGetToggle(w http.ResponseWriter, r *http.Request) {
	t, ok := s.resolveToggle(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// handleUpdateToggle handles PATCH /v1/toggles/{id}
func (s *Server) handleUpdateToggle(w http.ResponseWriter, r *http.Request) {
	t, ok := s.resolveToggle(w, r)
	if !ok {
		return
	}
	var patch console.Patch
	if !decodeJSON(w, r, &patch, "expected any of 'name', 'key', 'description', 'status'") {
		return
	}
	updated, err := s.console.Update(r.Context(), t.ID, patch)
	if err != nil {
		writeConsoleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// handleDeleteToggle handles DELETE /v1/toggles/{id}
func (s *Server) handleDeleteToggle(w http.ResponseWriter, r *http.Request) {
	t, ok := s.resolveToggle(w, r)
	if !ok {
		return
	}
	if err := s.console.Delete(r.Context(), t.ID); err != nil {
		writeConsoleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExportToggle handles GET /v1/toggles/{id}/export
func (s *Server) handleExportToggle(w http.ResponseWriter, r *http.Request) {
	t, ok := s.resolveToggle(w, r)
	if !ok {
		return
	}
	name, body, err := s.console.Export(t.ID)
	if err != nil {
		writeConsoleError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// handleImportToggle handles POST /v1/toggles/import
func (s *Server) handleImportToggle(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	imported, err := s.console.Import(r.Context(), body)
	if err != nil {
		writeConsoleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, imported)
}

// handleDescribeToggle handles POST /v1/toggles/{id}/describe
func (s *Server) handleDescribeToggle(w http.ResponseWriter, r *http.Request) {
	t, ok := s.resolveToggle(w, r)
	if !ok {
		return
	}
	updated, err := s.console.Regenerate(r.Context(), t.ID)
	if err != nil {
		writeConsoleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// handleSuggestions handles GET /v1/toggles/{id}/suggestions
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	t, ok := s.resolveToggle(w, r)
	if !ok {
		return
	}
	out, err := s.console.Suggest(r.Context(), t.ID)
	if err != nil {
		writeConsoleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestionsResponse{Suggestions: out})
}

// handleSnippets handles GET /v1/toggles/{id}/snippets?lang=
func (s *Server) handleSnippets(w http.ResponseWriter, r *http.Request) {
	t, ok := s.resolveToggle(w, r)
	if !ok {
		return
	}

	var (
		out []snippet.Snippet
		err error
	)
	if lang := strings.TrimSpace(r.URL.Query().Get("lang")); lang != "" {
		var one snippet.Snippet
		one, err = snippet.Render(snippet.Lang(strings.ToLower(lang)), t.Key)
		out = []snippet.Snippet{one}
	} else {
		out, err = snippet.RenderAll(t.Key)
	}
	if err != nil {
		writeConsoleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snippetsResponse{Key: t.Key, Snippets: out})
}
