package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/TimurManjosov/apollo/internal/client"
	"github.com/TimurManjosov/apollo/internal/engine"
	"github.com/TimurManjosov/apollo/internal/rules"
	"github.com/TimurManjosov/apollo/internal/snippet"
	"github.com/TimurManjosov/apollo/internal/toggle"
)

// OutputFormat specifies the output format for CLI commands
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (use table, json or yaml)", s)
	}
}

// PrintToggles outputs toggle summaries in the specified format
func PrintToggles(w io.Writer, list *client.ListResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(w, list)
	case FormatYAML:
		return printYAML(w, list)
	case FormatTable:
		table := tablewriter.NewWriter(w)
		table.Header("", "Key", "Name", "Status", "Audiences", "Updated", "ID")
		for _, s := range list.Toggles {
			marker := ""
			if s.ID == list.ActiveID {
				marker = "*"
			}
			table.Append(marker, s.Key, truncate(s.Name, 40), string(s.Status), fmt.Sprint(s.Audiences), s.UpdatedAt, s.ID)
		}
		return table.Render()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// PrintToggle outputs a single toggle in the specified format. The table form
// prints the fields followed by one row per rule.
func PrintToggle(w io.Writer, t *toggle.Toggle, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(w, t)
	case FormatYAML:
		return printYAML(w, t)
	case FormatTable:
		fmt.Fprintf(w, "Key:         %s\n", t.Key)
		fmt.Fprintf(w, "Name:        %s\n", t.Name)
		fmt.Fprintf(w, "ID:          %s\n", t.ID)
		fmt.Fprintf(w, "Status:      %s\n", t.Status)
		fmt.Fprintf(w, "Description: %s\n", t.Description)
		fmt.Fprintf(w, "Created:     %s\n", t.CreatedAt)
		fmt.Fprintf(w, "Updated:     %s\n", t.UpdatedAt)
		if len(t.Audiences) == 0 {
			fmt.Fprintln(w, "\nNo audiences.")
			return nil
		}
		fmt.Fprintln(w)

		table := tablewriter.NewWriter(w)
		table.Header("Audience", "Audience ID", "Rule ID", "Attribute", "Operator", "Value")
		for _, a := range t.Audiences {
			if len(a.Rules) == 0 {
				table.Append(a.Name, a.ID, "", "(no rules)", "", "")
				continue
			}
			for _, r := range a.Rules {
				table.Append(a.Name, a.ID, r.ID, ruleProperty(r), string(r.Operator), r.Value)
			}
		}
		return table.Render()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// PrintResult outputs an evaluation result.
func PrintResult(w io.Writer, res *engine.Result, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(w, res)
	case FormatYAML:
		return printYAML(w, res)
	case FormatTable:
		fmt.Fprintf(w, "Allowed: %t\nReason:  %s\n", res.Allowed, res.Reason)
		if res.MatchedAudience != "" {
			fmt.Fprintf(w, "Matched: %s\n", res.MatchedAudience)
		}
		if len(res.Audiences) == 0 {
			return nil
		}
		fmt.Fprintln(w)
		table := tablewriter.NewWriter(w)
		table.Header("Audience", "ID", "Matched", "Failed Rule")
		for _, a := range res.Audiences {
			table.Append(a.Name, a.ID, fmt.Sprint(a.Matched), a.FailedRule)
		}
		return table.Render()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// PrintSnippets outputs SDK snippets; the table form prints the code blocks.
func PrintSnippets(w io.Writer, snippets []snippet.Snippet, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(w, snippets)
	case FormatYAML:
		return printYAML(w, snippets)
	case FormatTable:
		for i, s := range snippets {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "// %s\n%s", s.Label, s.Code)
			if !strings.HasSuffix(s.Code, "\n") {
				fmt.Fprintln(w)
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// PrintSuggestions outputs rule suggestions.
func PrintSuggestions(w io.Writer, suggestions []client.Suggestion, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(w, suggestions)
	case FormatYAML:
		return printYAML(w, suggestions)
	case FormatTable:
		if len(suggestions) == 0 {
			fmt.Fprintln(w, "No suggestions.")
			return nil
		}
		table := tablewriter.NewWriter(w)
		table.Header("Attribute", "Value", "Reason")
		for _, s := range suggestions {
			table.Append(s.Attribute, s.Value, truncate(s.Reason, 60))
		}
		return table.Render()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// PrintObject outputs any value as JSON or YAML; the table form falls back to JSON.
func PrintObject(w io.Writer, v any, format OutputFormat) error {
	if format == FormatYAML {
		return printYAML(w, v)
	}
	return printJSON(w, v)
}

func printJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// printYAML goes through JSON so field names match the API's json tags.
func printYAML(w io.Writer, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return err
	}
	blockStyle(&node)

	encoder := yaml.NewEncoder(w)
	defer encoder.Close()
	encoder.SetIndent(2)
	return encoder.Encode(&node)
}

// blockStyle clears the flow style yaml.v3 keeps when parsing JSON.
func blockStyle(n *yaml.Node) {
	if n.Kind == yaml.MappingNode || n.Kind == yaml.SequenceNode {
		n.Style = 0
	}
	for _, c := range n.Content {
		blockStyle(c)
	}
}

func ruleProperty(r rules.Rule) string {
	if r.Attribute == rules.AttrCustom {
		return "custom:" + r.CustomAttribute
	}
	return string(r.Attribute)
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}
