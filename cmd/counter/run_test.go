package main

import (
	"bytes"
	"strings"
	"testing"
)

// executeRunCmd runs the run command with the given arguments and returns
// its output. Flags are reset first since rootCmd is shared between tests.
func executeRunCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	for name, value := range map[string]string{"config": "", "initial": "0"} {
		if err := runCmd.Flags().Set(name, value); err != nil {
			t.Fatalf("reset flag %q: %v", name, err)
		}
		runCmd.Flags().Lookup(name).Changed = false
	}

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	rootCmd.SetArgs(append([]string{"run"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRunRun_PrintsEachState(t *testing.T) {
	output, err := executeRunCmd(t, "increment:1", "decrement:2", "increment:3")
	if err != nil {
		t.Fatalf("run command error = %v", err)
	}

	want := "1\n-1\n2\nfinal: 2\n"
	if output != want {
		t.Errorf("output = %q, want %q", output, want)
	}
}

func TestRunRun_NoActions(t *testing.T) {
	output, err := executeRunCmd(t)
	if err != nil {
		t.Fatalf("run command error = %v", err)
	}
	if output != "final: 0\n" {
		t.Errorf("output = %q, want %q", output, "final: 0\n")
	}
}

func TestRunRun_InitialFlag(t *testing.T) {
	output, err := executeRunCmd(t, "--initial", "10", "decrement:4")
	if err != nil {
		t.Fatalf("run command error = %v", err)
	}
	if output != "6\nfinal: 6\n" {
		t.Errorf("output = %q, want %q", output, "6\nfinal: 6\n")
	}
}

func TestRunRun_ConfigActionsFirst(t *testing.T) {
	configPath := writeConfig(t, `
initial: 5
actions:
  - decrement:5
`)

	output, err := executeRunCmd(t, "-c", configPath, "increment:2")
	if err != nil {
		t.Fatalf("run command error = %v", err)
	}
	if output != "0\n2\nfinal: 2\n" {
		t.Errorf("output = %q, want %q", output, "0\n2\nfinal: 2\n")
	}
}

func TestRunRun_InitialFlagOverridesConfig(t *testing.T) {
	configPath := writeConfig(t, "initial: 5\n")

	output, err := executeRunCmd(t, "-c", configPath, "--initial=-3")
	if err != nil {
		t.Fatalf("run command error = %v", err)
	}
	if output != "final: -3\n" {
		t.Errorf("output = %q, want %q", output, "final: -3\n")
	}
}

func TestRunRun_InvalidAction(t *testing.T) {
	_, err := executeRunCmd(t, "increment:1", "multiply:2")
	if err == nil {
		t.Fatal("run command expected error for invalid action, got nil")
	}
	if !strings.Contains(err.Error(), "actions[1]") {
		t.Errorf("error should mention 'actions[1]', got: %v", err)
	}
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	defer rootCmd.SetOut(nil)

	rootCmd.SetArgs([]string{"version"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("version command error = %v", err)
	}
	if !strings.HasPrefix(out.String(), "counter dev") {
		t.Errorf("output = %q, want prefix %q", out.String(), "counter dev")
	}
}
