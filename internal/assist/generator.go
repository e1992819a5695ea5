// Package assist wraps the generative model used to draft toggle descriptions
// and suggest targeting rules. Every call degrades to a static answer.
package assist

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// ErrNoCredential is returned by a Generator that has no API key configured.
var ErrNoCredential = errors.New("generative model credential not configured")

// Generator is the narrow slice of the model API the assist calls need.
type Generator interface {
	// GenerateText returns the model's plain text answer.
	GenerateText(ctx context.Context, prompt string) (string, error)
	// GenerateJSON asks for application/json constrained by schema.
	GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
}

// GeminiGenerator talks to the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator returns a Generator for model. With an empty apiKey it
// returns a generator whose calls fail with ErrNoCredential, so callers fall back.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (Generator, error) {
	if apiKey == "" {
		return noCredential{}, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (g *GeminiGenerator) GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

type noCredential struct{}

func (noCredential) GenerateText(context.Context, string) (string, error) {
	return "", ErrNoCredential
}

func (noCredential) GenerateJSON(context.Context, string, *genai.Schema) (string, error) {
	return "", ErrNoCredential
}
