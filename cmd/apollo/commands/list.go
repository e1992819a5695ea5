package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TimurManjosov/apollo/internal/cli"
)

var listCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List feature toggles",
	Long: `List toggles, optionally filtered by a case-insensitive match on name or key.
The active toggle is marked with '*'.

Examples:
  apollo list
  apollo list checkout --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := outputFormat()
		if err != nil {
			return err
		}
		c, err := newClient(cmd)
		if err != nil {
			return err
		}

		query := ""
		if len(args) == 1 {
			query = args[0]
		}
		list, err := c.ListToggles(cmd.Context(), query)
		if err != nil {
			return fmt.Errorf("failed to list toggles: %w", err)
		}

		if len(list.Toggles) == 0 && f == cli.FormatTable {
			printf(cmd, "No toggles found\n")
			return nil
		}
		return cli.PrintToggles(out(cmd), list, f)
	},
}

var getCmd = &cobra.Command{
	Use:   "get <toggle>",
	Short: "Show a toggle with its audiences and rules",
	Long: `Show one toggle. <toggle> is an id or a key.

Examples:
  apollo get new_checkout_experience
  apollo get new_checkout_experience --format yaml`,
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
		t, err := c.GetToggle(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get toggle: %w", err)
		}
		return cli.PrintToggle(out(cmd), t, f)
	},
}

var selectCmd = &cobra.Command{
	Use:   "select [toggle]",
	Short: "Show or change the active toggle",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		if len(args) == 0 {
			sel, err := c.Selection(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get selection: %w", err)
			}
			if sel.Toggle == nil {
				printf(cmd, "No active toggle\n")
				return nil
			}
			printf(cmd, "%s (%s)\n", sel.Toggle.Key, sel.ActiveID)
			return nil
		}
		sel, err := c.Select(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to select toggle: %w", err)
		}
		printf(cmd, "Active toggle is now '%s'\n", sel.Toggle.Key)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(selectCmd)
}
