package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/iksnae/neuralguard/testutil"
)

// resetFlags puts every flag back to its default; rootCmd is shared between
// test runs and cobra keeps parsed values around.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// testEnv isolates HOME and hands out a state directory
func testEnv(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", testutil.CreateTempDir(t))
	return testutil.CreateTempDir(t)
}

// runCLI executes the root command against stateDir with no simulated latency
func runCLI(t *testing.T, stateDir, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	full := append([]string{}, args...)
	full = append(full, "--state-dir", stateDir, "--login-delay", "0s", "--analysis-delay", "0s")
	rootCmd.SetArgs(full)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))

	err := rootCmd.Execute()
	return stdout.String(), err
}

func login(t *testing.T, stateDir string, extra ...string) {
	t.Helper()
	args := append([]string{"login", "--email", "demo@example.com", "--password", "password"}, extra...)
	if _, err := runCLI(t, stateDir, "", args...); err != nil {
		t.Fatalf("login failed: %v", err)
	}
}
