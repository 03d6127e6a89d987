package main

import (
	"fmt"

	"github.com/jpalmerr/redux"
	"github.com/jpalmerr/redux/config"
	"github.com/jpalmerr/redux/counter"
	"github.com/spf13/cobra"
)

// validateCmd validates a config file without starting the server.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a counter configuration file without starting the server.

This command parses the YAML, applies COUNTER_* environment overrides,
expands ${VAR} references, and validates every field and scripted action.
It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  counter validate -c counter.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	final := redux.Fold(counter.Reducer, cfg.Initial, cfg.Actions...)

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Port:          %d\n", cfg.Port)
	fmt.Printf("  Step interval: %s\n", cfg.StepInterval.Duration())
	fmt.Printf("  Actions:       %d (%d -> %d)\n", len(cfg.Actions), cfg.Initial, final)

	return nil
}
