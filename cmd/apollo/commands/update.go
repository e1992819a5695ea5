package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TimurManjosov/apollo/internal/cli"
	"github.com/TimurManjosov/apollo/internal/client"
	"github.com/TimurManjosov/apollo/internal/toggle"
)

var (
	updateName        string
	updateKey         string
	updateDescription string
	updateStatus      string
)

var updateCmd = &cobra.Command{
	Use:   "update <toggle>",
	Short: "Update an existing feature toggle",
	Long: `Update fields of a toggle. Only the flags you pass are changed.
The key is stored exactly as given.

Examples:
  apollo update new_dashboard --name "New dashboard v2"
  apollo update new_dashboard --description "Rolls out the redesigned dashboard"
  apollo update new_dashboard --status enabled`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := outputFormat()
		if err != nil {
			return err
		}

		var params client.UpdateParams
		if cmd.Flags().Changed("name") {
			params.Name = &updateName
		}
		if cmd.Flags().Changed("key") {
			params.Key = &updateKey
		}
		if cmd.Flags().Changed("description") {
			params.Description = &updateDescription
		}
		if cmd.Flags().Changed("status") {
			s, err := toggle.ParseStatus(updateStatus)
			if err != nil {
				return err
			}
			params.Status = &s
		}
		if params == (client.UpdateParams{}) {
			return fmt.Errorf("nothing to update: pass --name, --key, --description or --status")
		}

		return runUpdate(cmd, args[0], params, f)
	},
}

// statusCmd builds the enable and disable shortcuts.
func statusCmd(use string, status toggle.Status) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <toggle>",
		Short: fmt.Sprintf("Set a toggle's status to %s", status),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := outputFormat()
			if err != nil {
				return err
			}
			s := status
			return runUpdate(cmd, args[0], client.UpdateParams{Status: &s}, f)
		},
	}
}

func runUpdate(cmd *cobra.Command, ref string, params client.UpdateParams, f cli.OutputFormat) error {
	c, err := newClient(cmd)
	if err != nil {
		return err
	}
	updated, err := c.UpdateToggle(cmd.Context(), ref, params)
	if err != nil {
		return fmt.Errorf("failed to update toggle: %w", err)
	}
	if f != cli.FormatTable {
		return cli.PrintToggle(out(cmd), updated, f)
	}
	printf(cmd, "Successfully updated toggle '%s' (status: %s)\n", updated.Key, updated.Status)
	return nil
}

func init() {
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(statusCmd("enable", toggle.StatusEnabled))
	rootCmd.AddCommand(statusCmd("disable", toggle.StatusDisabled))

	updateCmd.Flags().StringVar(&updateName, "name", "", "Display name")
	updateCmd.Flags().StringVar(&updateKey, "key", "", "Toggle key (stored verbatim)")
	updateCmd.Flags().StringVar(&updateDescription, "description", "", "Description")
	updateCmd.Flags().StringVar(&updateStatus, "status", "", "Status (enabled or disabled)")
}
