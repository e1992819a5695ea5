package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <toggle>",
	Short: "Export a toggle as JSON",
	Long: `Export one toggle as a pretty-printed JSON document.
The file is named <key>.json unless --output is given; use --output - for stdout.

Examples:
  apollo export new_dashboard
  apollo export new_dashboard --output backup.json
  apollo export new_dashboard --output -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		name, doc, err := c.ExportToggle(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to export toggle: %w", err)
		}

		if exportOutput == "-" {
			_, err := cmd.OutOrStdout().Write(doc)
			return err
		}
		if exportOutput != "" {
			name = exportOutput
		}
		if err := os.WriteFile(name, doc, 0o644); err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}
		printf(cmd, "Exported toggle to %s\n", name)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a toggle from an exported JSON file",
	Long: `Import a toggle document. A toggle with the same id is replaced,
otherwise the toggle is added. The imported toggle becomes active.

Examples:
  apollo import new_dashboard.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		imported, err := c.ImportToggle(cmd.Context(), doc)
		if err != nil {
			return fmt.Errorf("failed to import toggle: %w", err)
		}
		printf(cmd, "Imported toggle '%s' (%s)\n", imported.Key, imported.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (- for stdout)")
}
