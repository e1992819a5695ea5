package validation

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name        string
		key         string
		wantValid   bool
		wantMessage string
	}{
		{name: "valid", key: "new_checkout", wantValid: true},
		{name: "unicode", key: "新结账", wantValid: true},
		{name: "empty key", key: "", wantMessage: "Key is required"},
		{name: "whitespace only", key: "   ", wantMessage: "Key is required"},
		{name: "exactly 64 chars", key: strings.Repeat("a", 64), wantValid: true},
		{name: "too long", key: strings.Repeat("a", 65), wantMessage: "Key must not exceed 64 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateKey(tt.key)
			if result.Valid != tt.wantValid {
				t.Fatalf("Valid = %v, want %v (errors: %v)", result.Valid, tt.wantValid, result.Errors)
			}
			if !tt.wantValid && result.Errors["key"] != tt.wantMessage {
				t.Errorf("message = %q, want %q", result.Errors["key"], tt.wantMessage)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	if r := ValidateName("name", "新结账体验"); !r.Valid {
		t.Errorf("unexpected errors: %v", r.Errors)
	}
	if r := ValidateName("audience", " "); r.Valid || r.Errors["audience"] != "Name is required" {
		t.Errorf("expected required error on audience field, got %v", r.Errors)
	}
	if r := ValidateName("name", strings.Repeat("名", 101)); r.Valid {
		t.Error("expected length error")
	}
}

func TestValidateDescription(t *testing.T) {
	if r := ValidateDescription(""); !r.Valid {
		t.Error("empty description should be valid")
	}
	if r := ValidateDescription(strings.Repeat("x", 501)); r.Valid {
		t.Error("expected length error")
	}
}

func TestClampDescription(t *testing.T) {
	if got := ClampDescription("short"); got != "short" {
		t.Errorf("short description changed: %q", got)
	}
	long := strings.Repeat("界", MaxDescriptionLength+10)
	got := ClampDescription(long)
	if n := utf8.RuneCountInString(got); n != MaxDescriptionLength {
		t.Errorf("clamped length = %d runes, want %d", n, MaxDescriptionLength)
	}
	if !ValidateDescription(got).Valid {
		t.Error("clamped description does not validate")
	}
}

func TestValidateRuleValue(t *testing.T) {
	if r := ValidateRuleValue(strings.Repeat("1,", 500)); !r.Valid {
		t.Errorf("unexpected errors: %v", r.Errors)
	}
	if r := ValidateRuleValue(strings.Repeat("x", 2001)); r.Valid {
		t.Error("expected length error")
	}
}

func TestValidateToggle_CollectsAllErrors(t *testing.T) {
	result := ValidateToggle(ToggleParams{Name: "", Key: "", Description: strings.Repeat("x", 600)})
	if result.Valid {
		t.Fatal("expected invalid result")
	}
	for _, field := range []string{"name", "key", "description"} {
		if _, ok := result.Errors[field]; !ok {
			t.Errorf("missing error for %s", field)
		}
	}
}
