package i18n

import (
	"strings"
	"testing"
)

func TestText(t *testing.T) {
	if got := Text(ZH, DefaultAudienceName); got != "新人群组" {
		t.Errorf("Text(zh) = %q", got)
	}
	if got := Text("fr", DefaultAudienceName); got != "New Audience Group" {
		t.Errorf("unknown lang should fall back to English, got %q", got)
	}
}

func TestTextf(t *testing.T) {
	got := Textf(EN, DescribePrompt, "Dark mode", "dark_mode")
	if !strings.Contains(got, `"Dark mode"`) || !strings.Contains(got, `"dark_mode"`) {
		t.Errorf("Textf() = %q", got)
	}
}

func TestParse(t *testing.T) {
	for _, s := range []string{"en", "zh"} {
		if _, err := Parse(s); err != nil {
			t.Errorf("Parse(%q): %v", s, err)
		}
	}
	if _, err := Parse("EN"); err == nil {
		t.Error("expected error for EN")
	}
}

func TestCatalogComplete(t *testing.T) {
	for lang, msgs := range catalog {
		for _, m := range []Message{DefaultAudienceName, FallbackDescription, EmptyDescription, DescribePrompt, SuggestPrompt} {
			if msgs[m] == "" {
				t.Errorf("%s missing message %d", lang, m)
			}
		}
	}
}
