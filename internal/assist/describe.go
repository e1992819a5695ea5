package assist

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/TimurManjosov/apollo/internal/i18n"
	"github.com/TimurManjosov/apollo/internal/telemetry"
)

// Describer drafts a one-sentence description for a toggle.
type Describer struct {
	gen     Generator
	lang    i18n.Lang
	timeout time.Duration
	logger  zerolog.Logger
}

// Options configures Describer and Suggester.
type Options struct {
	Lang    i18n.Lang
	Timeout time.Duration
	Logger  zerolog.Logger
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return 10 * time.Second
	}
	return o.Timeout
}

// NewDescriber returns a Describer backed by gen.
func NewDescriber(gen Generator, opts Options) *Describer {
	return &Describer{gen: gen, lang: opts.Lang, timeout: opts.timeout(), logger: opts.Logger}
}

// Describe never fails. It returns the trimmed model answer, the "no description"
// text when the model answered with nothing, or a static fallback on any error.
func (d *Describer) Describe(ctx context.Context, name, key string) string {
	ctx, span := telemetry.StartSpan(ctx, "assist.describe", "toggle.key", key)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	text, err := d.gen.GenerateText(ctx, i18n.Textf(d.lang, i18n.DescribePrompt, name, key))
	if err != nil {
		d.logger.Warn().Err(err).Str("key", key).Msg("description generation failed, using fallback")
		telemetry.AssistFallbacks.WithLabelValues("describe").Inc()
		return i18n.Text(d.lang, i18n.FallbackDescription)
	}
	if text = strings.TrimSpace(text); text == "" {
		return i18n.Text(d.lang, i18n.EmptyDescription)
	}
	return text
}
