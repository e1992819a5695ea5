// Package i18n holds the few user-facing strings Apollo generates itself.
package i18n

import "fmt"

// Lang selects the language of generated strings.
type Lang string

const (
	EN Lang = "en"
	ZH Lang = "zh"
)

// Message identifies a generated string.
type Message int

const (
	DefaultAudienceName Message = iota
	FallbackDescription
	EmptyDescription
	DescribePrompt
	SuggestPrompt
)

var catalog = map[Lang]map[Message]string{
	EN: {
		DefaultAudienceName: "New Audience Group",
		FallbackDescription: "System-generated experimental feature toggle.",
		EmptyDescription:    "No description yet",
		DescribePrompt:      "Based on the feature toggle name %q and identifier %q, write a professional one-sentence technical description.",
		SuggestPrompt:       "Suggest 3 grayscale targeting rules (attribute and a common value) for the feature named %q. Return them as a JSON array.",
	},
	ZH: {
		DefaultAudienceName: "新人群组",
		FallbackDescription: "系统自动生成的实验性功能开关。",
		EmptyDescription:    "暂无描述",
		DescribePrompt:      "基于功能开关名称 %q 和标识符 %q，写一段专业的一句话技术描述。",
		SuggestPrompt:       "为名为 %q 的功能建议 3 条灰度规则（包含属性和常见值），以 JSON 数组格式返回。",
	},
}

// Parse accepts "en" or "zh".
func Parse(s string) (Lang, error) {
	switch Lang(s) {
	case EN, ZH:
		return Lang(s), nil
	default:
		return "", fmt.Errorf("unsupported language %q", s)
	}
}

// Text returns msg in lang, falling back to English for an unknown lang.
func Text(lang Lang, msg Message) string {
	if m, ok := catalog[lang]; ok {
		return m[msg]
	}
	return catalog[EN][msg]
}

// Textf formats msg in lang with args.
func Textf(lang Lang, msg Message, args ...any) string {
	return fmt.Sprintf(Text(lang, msg), args...)
}
