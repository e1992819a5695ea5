package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/TimurManjosov/apollo/internal/cli"
	"github.com/TimurManjosov/apollo/internal/client"
)

var (
	// Global flags
	baseURL string
	apiKey  string
	env     string
	format  string
	quiet   bool
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "apollo",
	Short: "CLI tool for managing feature toggles",
	Long: `Apollo is a command-line console for the apollo feature toggle server.

It creates and edits toggles, their audiences and targeting rules, evaluates
toggles against a context, and prints SDK snippets.

Examples:
  apollo list
  apollo create "New dashboard" --key new_dashboard
  apollo audience add new_dashboard "Beta users"
  apollo rule set new_dashboard <audience-id> <rule-id> --attribute city --operator in --value Beijing,Shanghai
  apollo eval new_dashboard --ctx city=Beijing --ctx user_id=1001
  apollo export new_dashboard`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Base URL of the apollo API")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Admin API key (write commands)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "Environment from the config file")
	rootCmd.PersistentFlags().StringVar(&format, "format", "table", "Output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")
}

// newClient resolves the target environment and returns an API client for it.
func newClient(cmd *cobra.Command) (*client.Client, error) {
	envCfg, effectiveEnv, err := cli.GetEnvConfig(env, baseURL, apiKey)
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	if verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "Using environment '%s' at %s\n", effectiveEnv, envCfg.BaseURL)
	}
	return client.NewClient(envCfg.BaseURL, envCfg.APIKey), nil
}

func outputFormat() (cli.OutputFormat, error) {
	return cli.ParseFormat(format)
}

// out is where command results go; --quiet discards them.
func out(cmd *cobra.Command) io.Writer {
	if quiet {
		return io.Discard
	}
	return cmd.OutOrStdout()
}

// printf writes a status line unless --quiet is set.
func printf(cmd *cobra.Command, msg string, args ...any) {
	fmt.Fprintf(out(cmd), msg, args...)
}
