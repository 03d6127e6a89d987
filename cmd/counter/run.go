package main

import (
	"fmt"

	"github.com/jpalmerr/redux"
	"github.com/jpalmerr/redux/counter"
	"github.com/spf13/cobra"
)

// runCmd replays actions through a store once and prints every state.
var runCmd = &cobra.Command{
	Use:   "run [actions...]",
	Short: "Dispatch actions and print each state",
	Long: `Dispatch actions through a counter store and print the state after
each one, followed by the final state.

Actions from the config file (if any) are dispatched first, then actions
given as arguments. Each argument uses the shorthand kind:amount.

Example:
  counter run increment:1 decrement:2 increment:3
  counter run --initial 10 decrement:4
  counter run -c counter.yaml increment:5`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("config", "c", "", "path to config file")
	runCmd.Flags().Int("initial", 0, "starting value (overrides the config file)")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	argActions, err := counter.ParseActions(args)
	if err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}

	initial := cfg.Initial
	if cmd.Flags().Changed("initial") {
		initial, _ = cmd.Flags().GetInt("initial")
	}

	out := cmd.OutOrStdout()
	store := counter.NewStore(initial,
		redux.WithName("counter"),
		redux.WithLogger(cfg.Logger(cmd.ErrOrStderr())),
	)
	store.Subscribe(func(state int) {
		fmt.Fprintln(out, state)
	})

	for _, a := range cfg.Actions {
		store.Dispatch(a)
	}
	for _, a := range argActions {
		store.Dispatch(a)
	}

	fmt.Fprintf(out, "final: %d\n", store.State())
	return nil
}
