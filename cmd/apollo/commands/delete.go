package commands

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete <toggle>",
	Short: "Delete a feature toggle",
	Long: `Delete a toggle permanently. Asks for confirmation unless --yes is given.
If the toggle was active, the server selects the first remaining one.

Examples:
  apollo delete new_dashboard
  apollo delete new_dashboard --yes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := args[0]
		c, err := newClient(cmd)
		if err != nil {
			return err
		}

		if !deleteYes {
			confirmed := false
			err := huh.NewConfirm().
				Title(fmt.Sprintf("Delete toggle '%s'?", ref)).
				Description("This cannot be undone.").
				Affirmative("Delete").
				Negative("Cancel").
				Value(&confirmed).
				Run()
			if err != nil && !errors.Is(err, huh.ErrUserAborted) {
				return err
			}
			if !confirmed {
				printf(cmd, "Deletion cancelled\n")
				return nil
			}
		}

		if err := c.DeleteToggle(cmd.Context(), ref); err != nil {
			return fmt.Errorf("failed to delete toggle: %w", err)
		}
		printf(cmd, "Successfully deleted toggle '%s'\n", ref)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip confirmation prompt")
}
