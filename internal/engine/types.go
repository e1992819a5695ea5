package engine

// Reason explains why Evaluate returned its verdict.
type Reason string

const (
	ReasonDisabled      Reason = "DISABLED"
	ReasonNotFound      Reason = "NOT_FOUND"
	ReasonAudienceMatch Reason = "AUDIENCE_MATCH"
	ReasonNoMatch       Reason = "NO_MATCH"
)

// Context is the set of attribute values a caller evaluates a toggle against.
// Keys are rule properties ("city", "user_id", "traffic" or a custom name).
type Context map[string]any

// Result is the deterministic output of Evaluate.
type Result struct {
	Allowed         bool            `json:"allowed"`
	Reason          Reason          `json:"reason"`
	MatchedAudience string          `json:"matchedAudience,omitempty"`
	Audiences       []AudienceTrace `json:"audiences,omitempty"`
}

// AudienceTrace records how one audience fared. FailedRule is empty when the
// audience matched or had no rules.
type AudienceTrace struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Matched    bool   `json:"matched"`
	FailedRule string `json:"failedRule,omitempty"`
}
