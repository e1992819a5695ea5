// Package client is the HTTP client the apollo CLI uses to talk to the server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/TimurManjosov/apollo/internal/engine"
	"github.com/TimurManjosov/apollo/internal/rules"
	"github.com/TimurManjosov/apollo/internal/snippet"
	"github.com/TimurManjosov/apollo/internal/toggle"
)

// Client is an HTTP client for the apollo API
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Summary is one row of the toggle list.
type Summary struct {
	ID        string        `json:"id"`
	Key       string        `json:"key"`
	Name      string        `json:"name"`
	Status    toggle.Status `json:"status"`
	Audiences int           `json:"audiences"`
	UpdatedAt string        `json:"updatedAt"`
}

// ListResult is the response of ListToggles.
type ListResult struct {
	Toggles  []Summary `json:"toggles"`
	ActiveID string    `json:"activeId,omitempty"`
}

// UpdateParams holds the toggle fields to change. Nil fields are left as is.
type UpdateParams struct {
	Name        *string        `json:"name,omitempty"`
	Key         *string        `json:"key,omitempty"`
	Description *string        `json:"description,omitempty"`
	Status      *toggle.Status `json:"status,omitempty"`
}

// RuleParams holds the rule fields to change. Nil fields are left as is.
type RuleParams struct {
	Attribute       *rules.Attribute `json:"attribute,omitempty"`
	CustomAttribute *string          `json:"customAttribute,omitempty"`
	Operator        *rules.Operator  `json:"operator,omitempty"`
	Value           *string          `json:"value,omitempty"`
}

// Suggestion is a proposed targeting rule.
type Suggestion struct {
	Attribute string `json:"attribute"`
	Value     string `json:"value"`
	Reason    string `json:"reason,omitempty"`
}

// Selection is the active toggle on the server.
type Selection struct {
	ActiveID string         `json:"activeId"`
	Toggle   *toggle.Toggle `json:"toggle"`
}

// ListToggles returns the toggle summaries matching query.
func (c *Client) ListToggles(ctx context.Context, query string) (*ListResult, error) {
	path := "/v1/toggles"
	if query != "" {
		path += "?q=" + url.QueryEscape(query)
	}
	var out ListResult
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetToggle retrieves a toggle by id or key
func (c *Client) GetToggle(ctx context.Context, ref string) (*toggle.Toggle, error) {
	var out toggle.Toggle
	if err := c.do(ctx, http.MethodGet, togglePath(ref), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateToggle creates a disabled toggle. The server normalizes the key.
func (c *Client) CreateToggle(ctx context.Context, name, key string) (*toggle.Toggle, error) {
	var out toggle.Toggle
	body := map[string]string{"name": name, "key": key}
	if err := c.do(ctx, http.MethodPost, "/v1/toggles", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateToggle applies params to a toggle.
func (c *Client) UpdateToggle(ctx context.Context, ref string, params UpdateParams) (*toggle.Toggle, error) {
	var out toggle.Toggle
	if err := c.do(ctx, http.MethodPatch, togglePath(ref), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteToggle deletes a toggle
func (c *Client) DeleteToggle(ctx context.Context, ref string) error {
	return c.do(ctx, http.MethodDelete, togglePath(ref), nil, nil)
}

// ExportToggle returns the suggested file name and the exported document.
func (c *Client) ExportToggle(ctx context.Context, ref string) (string, []byte, error) {
	resp, err := c.send(ctx, http.MethodGet, togglePath(ref)+"/export", nil, "")
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read response: %w", err)
	}
	name := ""
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		name = params["filename"]
	}
	return name, body, nil
}

// ImportToggle uploads a document produced by ExportToggle.
func (c *Client) ImportToggle(ctx context.Context, doc []byte) (*toggle.Toggle, error) {
	resp, err := c.send(ctx, http.MethodPost, "/v1/toggles/import", bytes.NewReader(doc), "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out toggle.Toggle
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}

// Describe regenerates a toggle's description.
func (c *Client) Describe(ctx context.Context, ref string) (*toggle.Toggle, error) {
	var out toggle.Toggle
	if err := c.do(ctx, http.MethodPost, togglePath(ref)+"/describe", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Suggestions returns rule suggestions for a toggle.
func (c *Client) Suggestions(ctx context.Context, ref string) ([]Suggestion, error) {
	var out struct {
		Suggestions []Suggestion `json:"suggestions"`
	}
	if err := c.do(ctx, http.MethodGet, togglePath(ref)+"/suggestions", nil, &out); err != nil {
		return nil, err
	}
	return out.Suggestions, nil
}

// Snippets returns SDK snippets for a toggle, all languages when lang is empty.
func (c *Client) Snippets(ctx context.Context, ref, lang string) ([]snippet.Snippet, error) {
	path := togglePath(ref) + "/snippets"
	if lang != "" {
		path += "?lang=" + url.QueryEscape(lang)
	}
	var out struct {
		Snippets []snippet.Snippet `json:"snippets"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Snippets, nil
}

// AddAudience appends an audience; an empty name gets the server default.
func (c *Client) AddAudience(ctx context.Context, ref, name string) (*toggle.Audience, error) {
	var out toggle.Audience
	if err := c.do(ctx, http.MethodPost, togglePath(ref)+"/audiences", map[string]string{"name": name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RenameAudience renames an audience.
func (c *Client) RenameAudience(ctx context.Context, ref, audienceID, name string) (*toggle.Audience, error) {
	var out toggle.Audience
	if err := c.do(ctx, http.MethodPatch, audiencePath(ref, audienceID), map[string]string{"name": name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAudience removes an audience and its rules.
func (c *Client) DeleteAudience(ctx context.Context, ref, audienceID string) error {
	return c.do(ctx, http.MethodDelete, audiencePath(ref, audienceID), nil, nil)
}

// AddRule appends a draft rule to an audience.
func (c *Client) AddRule(ctx context.Context, ref, audienceID string) (*rules.Rule, error) {
	var out rules.Rule
	if err := c.do(ctx, http.MethodPost, audiencePath(ref, audienceID)+"/rules", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateRule applies params to a rule.
func (c *Client) UpdateRule(ctx context.Context, ref, audienceID, ruleID string, params RuleParams) (*rules.Rule, error) {
	var out rules.Rule
	if err := c.do(ctx, http.MethodPatch, rulePath(ref, audienceID, ruleID), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteRule removes a rule.
func (c *Client) DeleteRule(ctx context.Context, ref, audienceID, ruleID string) error {
	return c.do(ctx, http.MethodDelete, rulePath(ref, audienceID, ruleID), nil, nil)
}

// Selection returns the active toggle.
func (c *Client) Selection(ctx context.Context) (*Selection, error) {
	var out Selection
	if err := c.do(ctx, http.MethodGet, "/v1/selection", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Select makes ref the active toggle.
func (c *Client) Select(ctx context.Context, ref string) (*Selection, error) {
	var out Selection
	if err := c.do(ctx, http.MethodPut, "/v1/selection", map[string]string{"id": ref}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Evaluate asks the server whether the toggle is on for evalCtx.
func (c *Client) Evaluate(ctx context.Context, ref string, evalCtx map[string]any, explain bool) (*engine.Result, error) {
	body := map[string]any{"toggle": ref, "context": evalCtx, "explain": explain}
	var out engine.Result
	if err := c.do(ctx, http.MethodPost, "/v1/evaluate", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func togglePath(ref string) string {
	return "/v1/toggles/" + url.PathEscape(ref)
}

func audiencePath(ref, audienceID string) string {
	return togglePath(ref) + "/audiences/" + url.PathEscape(audienceID)
}

func rulePath(ref, audienceID, ruleID string) string {
	return audiencePath(ref, audienceID) + "/rules/" + url.PathEscape(ruleID)
}

// do sends in as JSON (when non-nil) and decodes the response into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var (
		body        io.Reader
		contentType string
	)
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	resp, err := c.send(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// send performs the request and turns any non-2xx status into an APIError.
// The caller closes the body of a successful response.
func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(bodyBytes))}
	}
	return resp, nil
}
