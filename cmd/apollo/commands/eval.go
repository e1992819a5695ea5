package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TimurManjosov/apollo/internal/cli"
)

var (
	evalPairs   []string
	evalJSON    string
	evalExplain bool
)

var evalCmd = &cobra.Command{
	Use:   "eval <toggle>",
	Short: "Evaluate a toggle against a context",
	Long: `Evaluate a toggle for the given context. Context values come from
repeated --ctx key=value pairs and/or a --json object; pairs win on conflict.
Pass traffic as a 0-100 bucket to test traffic rules directly.

Examples:
  apollo eval new_dashboard --ctx city=Beijing --ctx user_id=1001
  apollo eval new_dashboard --json '{"traffic": 12, "plan": "pro"}' --explain`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := outputFormat()
		if err != nil {
			return err
		}
		evalCtx, err := parseContext(evalJSON, evalPairs)
		if err != nil {
			return err
		}
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		res, err := c.Evaluate(cmd.Context(), args[0], evalCtx, evalExplain)
		if err != nil {
			return fmt.Errorf("failed to evaluate toggle: %w", err)
		}
		return cli.PrintResult(out(cmd), res, f)
	},
}

// parseContext merges a JSON object with key=value pairs.
func parseContext(raw string, pairs []string) (map[string]any, error) {
	evalCtx := make(map[string]any)
	if strings.TrimSpace(raw) != "" {
		dec := json.NewDecoder(strings.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&evalCtx); err != nil {
			return nil, fmt.Errorf("invalid --json context: %w", err)
		}
	}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --ctx %q: expected key=value", p)
		}
		evalCtx[k] = v
	}
	return evalCtx, nil
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringArrayVar(&evalPairs, "ctx", nil, "Context entry as key=value (repeatable)")
	evalCmd.Flags().StringVar(&evalJSON, "json", "", "Context as a JSON object")
	evalCmd.Flags().BoolVar(&evalExplain, "explain", false, "Include the per-audience trace")
}
