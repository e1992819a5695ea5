package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/TimurManjosov/apollo/internal/engine"
	"github.com/TimurManjosov/apollo/internal/toggle"
)

// evaluateRequest represents the request body for POST /v1/evaluate
type evaluateRequest struct {
	Toggle  string         `json:"toggle"` // id or key
	Context engine.Context `json:"context"`
	Explain bool           `json:"explain,omitempty"`
}

type selectionRequest struct {
	ID string `json:"id"`
}

type selectionResponse struct {
	ActiveID string         `json:"activeId"`
	Toggle   *toggle.Toggle `json:"toggle"`
}

// handleEvaluate handles POST /v1/evaluate. An unknown toggle is a NOT_FOUND
// result, not an HTTP error.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	// numbers stay json.Number so large user ids keep every digit
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var req evaluateRequest
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RequestTooLargeError(w, r, "Request body too large")
			return
		}
		BadRequestError(w, r, ErrCodeInvalidJSON, "Invalid JSON: expected fields 'toggle', 'context' and optional 'explain'")
		return
	}
	if strings.TrimSpace(req.Toggle) == "" {
		ValidationError(w, r, "Validation failed", map[string]string{"toggle": "Toggle id or key is required"})
		return
	}
	if req.Context == nil {
		req.Context = engine.Context{}
	}

	writeJSON(w, http.StatusOK, s.console.Evaluate(r.Context(), req.Toggle, req.Context, req.Explain))
}

// handleGetSelection handles GET /v1/selection
func (s *Server) handleGetSelection(w http.ResponseWriter, r *http.Request) {
	var resp selectionResponse
	if active, ok := s.console.Active(); ok {
		resp.ActiveID = active.ID
		resp.Toggle = &active
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSelect handles PUT /v1/selection
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if !decodeJSON(w, r, &req, "expected field 'id'") {
		return
	}
	t, err := s.console.Lookup(req.ID)
	if err == nil {
		err = s.console.Select(t.ID)
	}
	if err != nil {
		writeConsoleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, selectionResponse{ActiveID: t.ID, Toggle: &t})
}
