package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TimurManjosov/apollo/internal/cli"
	"github.com/TimurManjosov/apollo/internal/snippet"
)

var snippetLang string

var snippetCmd = &cobra.Command{
	Use:   "snippet <toggle>",
	Short: "Print SDK integration snippets for a toggle",
	Long: `Print integration code for a toggle key in every supported language,
or only one with --lang (js, java, go, csharp).

Examples:
  apollo snippet new_dashboard
  apollo snippet new_dashboard --lang go`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := outputFormat()
		if err != nil {
			return err
		}
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		snippets, err := c.Snippets(cmd.Context(), args[0], snippetLang)
		if err != nil {
			return fmt.Errorf("failed to render snippets: %w", err)
		}
		return cli.PrintSnippets(out(cmd), snippets, f)
	},
}

var describeCmd = &cobra.Command{
	Use:   "describe <toggle>",
	Short: "Regenerate a toggle's description",
	Long: `Ask the server's text generator for a fresh description and save it.
Fails when the server has no generator configured.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		t, err := c.Describe(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to describe toggle: %w", err)
		}
		printf(cmd, "%s\n", t.Description)
		return nil
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <toggle>",
	Short: "Suggest targeting rules for a toggle",
	Long: `Ask the server's text generator for targeting rule suggestions.
Suggestions are only printed; add them with 'apollo rule'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := outputFormat()
		if err != nil {
			return err
		}
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		suggestions, err := c.Suggestions(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get suggestions: %w", err)
		}
		return cli.PrintSuggestions(out(cmd), suggestions, f)
	},
}

func init() {
	rootCmd.AddCommand(snippetCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(suggestCmd)

	snippetCmd.Flags().StringVar(&snippetLang, "lang", "", fmt.Sprintf("Only this language %v", snippet.Languages()))
}
