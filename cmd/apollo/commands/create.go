package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/TimurManjosov/apollo/internal/cli"
	"github.com/TimurManjosov/apollo/internal/toggle"
)

var (
	createKey     string
	createNoInput bool
)

var errFieldRequired = errors.New("required")

var createCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new feature toggle",
	Long: `Create a disabled toggle with no audiences. The key is lowercased and runs
of whitespace become '_'. The server drafts a description.

When the name or key is missing a form asks for them, unless --no-input is set.

Examples:
  apollo create "New dashboard" --key "New Dashboard"
  apollo create`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := outputFormat()
		if err != nil {
			return err
		}

		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		key := createKey

		if strings.TrimSpace(name) == "" || strings.TrimSpace(key) == "" {
			if createNoInput {
				return fmt.Errorf("name and --key are required")
			}
			if err := createForm(&name, &key).Run(); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					printf(cmd, "Creation cancelled\n")
					return nil
				}
				return err
			}
		}

		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		created, err := c.CreateToggle(cmd.Context(), name, key)
		if err != nil {
			return fmt.Errorf("failed to create toggle: %w", err)
		}

		if f != cli.FormatTable {
			return cli.PrintToggle(out(cmd), created, f)
		}
		printf(cmd, "Successfully created toggle '%s' (%s)\n", created.Key, created.ID)
		if created.Description != "" {
			printf(cmd, "Description: %s\n", created.Description)
		}
		return nil
	},
}

// createForm asks for the name and key, previewing the normalized key.
func createForm(name, key *string) *huh.Form {
	required := func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errFieldRequired
		}
		return nil
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(name).
				Placeholder("New checkout experience").
				Validate(required),
			huh.NewInput().
				Title("Key").
				Value(key).
				Placeholder("new_checkout_experience").
				DescriptionFunc(func() string {
					if k := toggle.NormalizeKey(strings.TrimSpace(*key)); k != "" {
						return "Saved as " + k
					}
					return "Lowercased; spaces become _"
				}, key).
				Validate(required),
		).Title("New toggle"),
	)
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringVar(&createKey, "key", "", "Toggle key used by SDKs")
	createCmd.Flags().BoolVar(&createNoInput, "no-input", false, "Fail instead of prompting for missing fields")
}
