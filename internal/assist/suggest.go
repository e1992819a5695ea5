package assist

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/TimurManjosov/apollo/internal/i18n"
	"github.com/TimurManjosov/apollo/internal/telemetry"
)

// Suggestion is one proposed targeting rule. Attribute is free text from the
// model and is not guaranteed to be a supported rule attribute.
type Suggestion struct {
	Attribute string `json:"attribute"`
	Value     string `json:"value"`
	Reason    string `json:"reason,omitempty"`
}

var suggestionSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"attribute": {Type: genai.TypeString},
			"value":     {Type: genai.TypeString},
			"reason":    {Type: genai.TypeString},
		},
		Required: []string{"attribute", "value"},
	},
}

// Suggester proposes targeting rules for a toggle.
type Suggester struct {
	gen     Generator
	lang    i18n.Lang
	timeout time.Duration
	logger  zerolog.Logger
}

// NewSuggester returns a Suggester backed by gen.
func NewSuggester(gen Generator, opts Options) *Suggester {
	return &Suggester{gen: gen, lang: opts.Lang, timeout: opts.timeout(), logger: opts.Logger}
}

// Suggest never fails; any problem yields an empty, non-nil list.
func (s *Suggester) Suggest(ctx context.Context, name string) []Suggestion {
	ctx, span := telemetry.StartSpan(ctx, "assist.suggest")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.gen.GenerateJSON(ctx, i18n.Textf(s.lang, i18n.SuggestPrompt, name), suggestionSchema)
	if err != nil {
		return s.fallback(err, "suggestion generation failed")
	}

	out, err := parseSuggestions(text)
	if err != nil {
		return s.fallback(err, "suggestion response rejected")
	}
	return out
}

func (s *Suggester) fallback(err error, msg string) []Suggestion {
	s.logger.Warn().Err(err).Msg(msg + ", returning no suggestions")
	telemetry.AssistFallbacks.WithLabelValues("suggest").Inc()
	return []Suggestion{}
}

// parseSuggestions decodes the model output and enforces the required fields
// even though the schema already asked for them.
func parseSuggestions(text string) ([]Suggestion, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []Suggestion{}, nil
	}

	var out []Suggestion
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Attribute = strings.TrimSpace(out[i].Attribute)
		if out[i].Attribute == "" || strings.TrimSpace(out[i].Value) == "" {
			return nil, errMissingField
		}
	}
	if out == nil {
		out = []Suggestion{}
	}
	return out, nil
}

var errMissingField = errors.New("suggestion is missing attribute or value")
