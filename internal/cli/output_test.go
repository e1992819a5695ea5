package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/TimurManjosov/apollo/internal/client"
	"github.com/TimurManjosov/apollo/internal/engine"
	"github.com/TimurManjosov/apollo/internal/rules"
	"github.com/TimurManjosov/apollo/internal/toggle"
)

func sampleToggle() *toggle.Toggle {
	return &toggle.Toggle{
		ID:        "t1",
		Key:       "new_checkout",
		Name:      "New checkout",
		Status:    toggle.StatusEnabled,
		CreatedAt: "2024-01-01",
		UpdatedAt: "2024-01-02",
		Audiences: []toggle.Audience{
			{ID: "a1", Name: "Beta", Rules: []rules.Rule{
				{ID: "r1", Attribute: rules.AttrCustom, CustomAttribute: "plan", Operator: rules.OpEquals, Value: "pro"},
			}},
			{ID: "a2", Name: "Empty", Rules: []rules.Rule{}},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for _, in := range []string{"table", "JSON", "yaml"} {
		if _, err := ParseFormat(in); err != nil {
			t.Errorf("ParseFormat(%q): %v", in, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for xml")
	}
}

func TestPrintToggles_Table(t *testing.T) {
	var buf bytes.Buffer
	list := &client.ListResult{
		ActiveID: "t1",
		Toggles: []client.Summary{
			{ID: "t1", Key: "k1", Name: "First", Status: toggle.StatusEnabled, Audiences: 2},
			{ID: "t2", Key: "k2", Name: strings.Repeat("n", 50), Status: toggle.StatusDisabled},
		},
	}
	if err := PrintToggles(&buf, list, FormatTable); err != nil {
		t.Fatalf("PrintToggles: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"k1", "k2", "*", "...", "disabled"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestPrintToggle_Formats(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintToggle(&buf, sampleToggle(), FormatTable); err != nil {
		t.Fatalf("table: %v", err)
	}
	if !strings.Contains(buf.String(), "custom:plan") || !strings.Contains(buf.String(), "(no rules)") {
		t.Errorf("unexpected table:\n%s", buf.String())
	}

	buf.Reset()
	if err := PrintToggle(&buf, sampleToggle(), FormatJSON); err != nil {
		t.Fatalf("json: %v", err)
	}
	var back toggle.Toggle
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil || back.Key != "new_checkout" {
		t.Errorf("json output did not decode: %v", err)
	}

	buf.Reset()
	if err := PrintToggle(&buf, sampleToggle(), FormatYAML); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "customAttribute: plan") || !strings.Contains(out, "createdAt:") {
		t.Errorf("yaml should use the json field names:\n%s", out)
	}
	if strings.Contains(out, "{") {
		t.Errorf("yaml should be block style:\n%s", out)
	}
}

func TestPrintResult_Table(t *testing.T) {
	var buf bytes.Buffer
	res := &engine.Result{
		Reason: engine.ReasonNoMatch,
		Audiences: []engine.AudienceTrace{
			{ID: "a1", Name: "Beta", FailedRule: "r1"},
		},
	}
	if err := PrintResult(&buf, res, FormatTable); err != nil {
		t.Fatalf("PrintResult: %v", err)
	}
	if !strings.Contains(buf.String(), "NO_MATCH") || !strings.Contains(buf.String(), "r1") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestPrintSuggestions_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintSuggestions(&buf, nil, FormatTable); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No suggestions") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("短い文字列です", 5); got != "短い..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abc", 5); got != "abc" {
		t.Errorf("truncate = %q", got)
	}
}
