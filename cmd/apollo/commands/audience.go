package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TimurManjosov/apollo/internal/client"
	"github.com/TimurManjosov/apollo/internal/rules"
)

var audienceCmd = &cobra.Command{
	Use:     "audience",
	Aliases: []string{"aud"},
	Short:   "Manage a toggle's audiences",
	Long: `Audiences are OR-combined: a toggle is on for a context that matches any
audience. Audience and rule ids are shown by 'apollo get'.`,
}

var audienceAddCmd = &cobra.Command{
	Use:   "add <toggle> [name]",
	Short: "Add an audience with one empty rule",
	Long: `Add an audience to a toggle. Without a name the server picks a default
in its configured language. The new audience starts with one draft rule.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		name := ""
		if len(args) == 2 {
			name = args[1]
		}
		a, err := c.AddAudience(cmd.Context(), args[0], name)
		if err != nil {
			return fmt.Errorf("failed to add audience: %w", err)
		}
		printf(cmd, "Added audience '%s' (%s)\n", a.Name, a.ID)
		for _, r := range a.Rules {
			printf(cmd, "  draft rule %s\n", r.ID)
		}
		return nil
	},
}

var audienceRenameCmd = &cobra.Command{
	Use:   "rename <toggle> <audience-id> <name>",
	Short: "Rename an audience",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		a, err := c.RenameAudience(cmd.Context(), args[0], args[1], args[2])
		if err != nil {
			return fmt.Errorf("failed to rename audience: %w", err)
		}
		printf(cmd, "Renamed audience %s to '%s'\n", a.ID, a.Name)
		return nil
	},
}

var audienceRemoveCmd = &cobra.Command{
	Use:     "rm <toggle> <audience-id>",
	Aliases: []string{"remove", "delete"},
	Short:   "Remove an audience and its rules",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		if err := c.DeleteAudience(cmd.Context(), args[0], args[1]); err != nil {
			return fmt.Errorf("failed to remove audience: %w", err)
		}
		printf(cmd, "Removed audience %s\n", args[1])
		return nil
	},
}

var (
	ruleAttribute string
	ruleCustom    string
	ruleOperator  string
	ruleValue     string
)

var ruleCmd = &cobra.Command{
	Use:   "rule",
	Short: "Manage the rules of an audience",
	Long: `Rules inside an audience are AND-combined. A rule with an empty value
is a draft and never matches.`,
}

var ruleAddCmd = &cobra.Command{
	Use:   "add <toggle> <audience-id>",
	Short: "Append an empty rule to an audience",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		r, err := c.AddRule(cmd.Context(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("failed to add rule: %w", err)
		}
		printf(cmd, "Added rule %s (%s %s)\n", r.ID, r.Attribute, r.Operator)
		return nil
	},
}

var ruleSetCmd = &cobra.Command{
	Use:   "set <toggle> <audience-id> <rule-id>",
	Short: "Change a rule's attribute, operator or value",
	Long: fmt.Sprintf(`Change fields of a rule. Only the flags you pass are changed.

Attributes: %s
Operators:  %s

Values: "in" takes a comma separated list, "between" takes low,high,
greater_than/less_than take a number.

Examples:
  apollo rule set new_dashboard <aid> <rid> --attribute city --operator in --value Beijing,Shanghai
  apollo rule set new_dashboard <aid> <rid> --attribute custom --custom plan --value pro
  apollo rule set new_dashboard <aid> <rid> --attribute traffic --operator between --value 0,10`,
		joinValues(rules.Attributes()), joinValues(rules.Operators())),
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		var params client.RuleParams
		if cmd.Flags().Changed("attribute") {
			a := rules.Attribute(strings.ToLower(strings.TrimSpace(ruleAttribute)))
			params.Attribute = &a
		}
		if cmd.Flags().Changed("custom") {
			params.CustomAttribute = &ruleCustom
		}
		if cmd.Flags().Changed("operator") {
			op := rules.Operator(strings.ToLower(strings.TrimSpace(ruleOperator)))
			params.Operator = &op
		}
		if cmd.Flags().Changed("value") {
			params.Value = &ruleValue
		}
		if params == (client.RuleParams{}) {
			return fmt.Errorf("nothing to change: pass --attribute, --custom, --operator or --value")
		}

		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		r, err := c.UpdateRule(cmd.Context(), args[0], args[1], args[2], params)
		if err != nil {
			return fmt.Errorf("failed to update rule: %w", err)
		}
		printf(cmd, "Rule %s: %s %s %q\n", r.ID, r.Property(), r.Operator, r.Value)
		return nil
	},
}

var ruleRemoveCmd = &cobra.Command{
	Use:     "rm <toggle> <audience-id> <rule-id>",
	Aliases: []string{"remove", "delete"},
	Short:   "Remove a rule",
	Args:    cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		if err := c.DeleteRule(cmd.Context(), args[0], args[1], args[2]); err != nil {
			return fmt.Errorf("failed to remove rule: %w", err)
		}
		printf(cmd, "Removed rule %s\n", args[2])
		return nil
	},
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

func init() {
	rootCmd.AddCommand(audienceCmd)
	audienceCmd.AddCommand(audienceAddCmd)
	audienceCmd.AddCommand(audienceRenameCmd)
	audienceCmd.AddCommand(audienceRemoveCmd)

	rootCmd.AddCommand(ruleCmd)
	ruleCmd.AddCommand(ruleAddCmd)
	ruleCmd.AddCommand(ruleSetCmd)
	ruleCmd.AddCommand(ruleRemoveCmd)

	ruleSetCmd.Flags().StringVar(&ruleAttribute, "attribute", "", "Attribute to test")
	ruleSetCmd.Flags().StringVar(&ruleCustom, "custom", "", "Context property name when --attribute is custom")
	ruleSetCmd.Flags().StringVar(&ruleOperator, "operator", "", "Comparison operator")
	ruleSetCmd.Flags().StringVar(&ruleValue, "value", "", "Value to compare with")
}
