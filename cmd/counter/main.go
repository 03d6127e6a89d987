// Package main is the entry point for the counter CLI.
//
// The counter binary drives a redux store whose state is an integer and
// whose actions increment or decrement it. It can replay actions once and
// print each state, or serve the store over HTTP.
//
// Usage:
//
//	counter run increment:1 decrement:2 increment:3  # Replay actions and print states
//	counter serve -c counter.yaml                    # Serve the store over HTTP
//	counter validate -c counter.yaml                 # Validate configuration
//	counter version                                  # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information, set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "counter",
	Short: "A counter driven by a redux-style store",
	Long: `Counter is a small demonstration of a redux-style store.

Every change to the counter is an action (increment or decrement by an
amount) applied by a pure reducer. Subscribers are notified with the new
value after each action.

Quick start:
  counter run increment:1 decrement:2 increment:3

Example config:
  port: 8080
  initial: 0
  step_interval: 500ms
  actions:
    - increment:1
    - decrement:2
    - kind: increment
      amount: 3`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this counter binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "counter %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
