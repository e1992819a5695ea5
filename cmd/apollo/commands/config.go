package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TimurManjosov/apollo/internal/cli"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Manage the apollo CLI configuration file (~/.apollo/config.yaml, or $APOLLO_CONFIG).`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration file",
	Long: `Create a default configuration file with a local "dev" environment.

Example:
  apollo config init
  apollo config init --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := cli.InitConfig(configForce)
		if err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		printf(cmd, "Configuration file created at: %s\n", configPath)
		printf(cmd, "Edit it to set base URLs and admin API keys, or use 'apollo config set'.\n")
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cli.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Default Environment: %s\n\n", cfg.DefaultEnv)
		fmt.Fprintln(w, "Environments:")
		names := make([]string, 0, len(cfg.Environments))
		for name := range cfg.Environments {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			envCfg := cfg.Environments[name]
			fmt.Fprintf(w, "  %s:\n", name)
			fmt.Fprintf(w, "    base_url: %s\n", envCfg.BaseURL)
			fmt.Fprintf(w, "    api_key: %s\n", maskKey(envCfg.APIKey))
		}
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <env.key | default_env>",
	Short: "Get a configuration value",
	Long: `Get a specific configuration value.

Examples:
  apollo config get dev.base_url
  apollo config get default_env`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cli.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		w := cmd.OutOrStdout()

		if args[0] == "default_env" {
			fmt.Fprintln(w, cfg.DefaultEnv)
			return nil
		}

		envName, key, err := splitConfigKey(args[0])
		if err != nil {
			return err
		}
		envCfg, ok := cfg.Environments[envName]
		if !ok {
			return fmt.Errorf("environment '%s' not found", envName)
		}

		switch key {
		case "base_url":
			fmt.Fprintln(w, envCfg.BaseURL)
		case "api_key":
			fmt.Fprintln(w, envCfg.APIKey)
		default:
			return fmt.Errorf("unknown key '%s', valid keys: base_url, api_key", key)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <env.key | default_env> <value>",
	Short: "Set a configuration value",
	Long: `Set a specific configuration value. Unknown environments are created.

Examples:
  apollo config set dev.base_url http://localhost:8080
  apollo config set prod.api_key my-secret-key
  apollo config set default_env prod`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cli.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		value := args[1]

		if args[0] == "default_env" {
			cfg.DefaultEnv = value
		} else {
			envName, key, err := splitConfigKey(args[0])
			if err != nil {
				return err
			}
			if cfg.Environments == nil {
				cfg.Environments = make(map[string]cli.EnvConfig)
			}
			envCfg := cfg.Environments[envName]
			switch key {
			case "base_url":
				envCfg.BaseURL = value
			case "api_key":
				envCfg.APIKey = value
			default:
				return fmt.Errorf("unknown key '%s', valid keys: base_url, api_key", key)
			}
			cfg.Environments[envName] = envCfg
		}

		if err := cli.SaveConfig(cfg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		printf(cmd, "Successfully set %s\n", args[0])
		return nil
	},
}

func splitConfigKey(s string) (envName, key string, err error) {
	envName, key, ok := strings.Cut(s, ".")
	if !ok || envName == "" || key == "" || strings.Contains(key, ".") {
		return "", "", fmt.Errorf("invalid key format, expected 'env.key' (e.g., 'dev.base_url')")
	}
	return envName, key, nil
}

func maskKey(key string) string {
	if key == "" {
		return "(none)"
	}
	if len(key) > 4 {
		return key[:4] + "***"
	}
	return "***"
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")
}
