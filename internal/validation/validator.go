// Package validation checks user supplied toggle fields before they reach the console.
package validation

import (
	"strings"
	"unicode/utf8"
)

const (
	// MaxKeyLength is the maximum length for toggle keys
	MaxKeyLength = 64
	// MaxNameLength is the maximum length for toggle and audience names
	MaxNameLength = 100
	// MaxDescriptionLength is the maximum length for toggle descriptions
	MaxDescriptionLength = 500
	// MaxRuleValueLength bounds a rule value (long "in" lists included)
	MaxRuleValueLength = 2000
)

// ValidationResult holds the result of validation
type ValidationResult struct {
	Valid  bool
	Errors map[string]string
}

// NewValidationResult creates a new validation result
func NewValidationResult() *ValidationResult {
	return &ValidationResult{
		Valid:  true,
		Errors: make(map[string]string),
	}
}

// AddError adds a field error and marks the result as invalid
func (v *ValidationResult) AddError(field, message string) {
	v.Valid = false
	v.Errors[field] = message
}

// Merge combines another validation result into this one
func (v *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	for field, message := range other.Errors {
		v.AddError(field, message)
	}
}

// ValidateName checks a required display name.
func ValidateName(field, name string) *ValidationResult {
	result := NewValidationResult()
	name = strings.TrimSpace(name)

	if name == "" {
		result.AddError(field, "Name is required")
		return result
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		result.AddError(field, "Name must not exceed 100 characters")
	}
	return result
}

// ValidateKey checks a toggle key. Keys are free text; whitespace is folded
// at creation, so only presence and length are enforced here.
func ValidateKey(key string) *ValidationResult {
	result := NewValidationResult()
	key = strings.TrimSpace(key)

	if key == "" {
		result.AddError("key", "Key is required")
		return result
	}
	if utf8.RuneCountInString(key) > MaxKeyLength {
		result.AddError("key", "Key must not exceed 64 characters")
	}
	return result
}

// ValidateDescription validates a toggle description
func ValidateDescription(description string) *ValidationResult {
	result := NewValidationResult()
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		result.AddError("description", "Description must not exceed 500 characters")
	}
	return result
}

// ClampDescription cuts description to MaxDescriptionLength runes.
func ClampDescription(description string) string {
	if utf8.RuneCountInString(description) <= MaxDescriptionLength {
		return description
	}
	runes := []rune(description)
	return strings.TrimSpace(string(runes[:MaxDescriptionLength]))
}

// ValidateRuleValue bounds the raw rule value.
func ValidateRuleValue(value string) *ValidationResult {
	result := NewValidationResult()
	if utf8.RuneCountInString(value) > MaxRuleValueLength {
		result.AddError("value", "Value must not exceed 2000 characters")
	}
	return result
}

// ToggleParams contains the fields checked when a toggle is created.
type ToggleParams struct {
	Name        string
	Key         string
	Description string
}

// ValidateToggle validates all toggle fields and returns a validation result
func ValidateToggle(params ToggleParams) *ValidationResult {
	result := NewValidationResult()
	result.Merge(ValidateName("name", params.Name))
	result.Merge(ValidateKey(params.Key))
	result.Merge(ValidateDescription(params.Description))
	return result
}
