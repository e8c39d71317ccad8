package cmd

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/iksnae/neuralguard/internal"
)

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
		want    string
	}{
		{
			name: "version flag",
			args: []string{"--version"},
			want: "dev",
		},
		{
			name: "help flag",
			args: []string{"--help"},
			want: "neuralguard",
		},
		{
			name:    "nonexistent command",
			args:    []string{"nonexistent-command"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testEnv(t)
			resetFlags(rootCmd)
			rootCmd.SetArgs(tt.args)
			var stdout, stderr bytes.Buffer
			rootCmd.SetOut(&stdout)
			rootCmd.SetErr(&stderr)

			err := rootCmd.Execute()
			if (err != nil) != tt.wantErr {
				t.Errorf("rootCmd.Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.want != "" && !strings.Contains(stdout.String(), tt.want) {
				t.Errorf("output %q should contain %q", stdout.String(), tt.want)
			}
		})
	}
}

func TestRootCommand_InvalidStorage(t *testing.T) {
	stateDir := testEnv(t)

	_, err := runCLI(t, stateDir, "", "logout", "--storage", "redis")
	if err == nil {
		t.Fatal("expected an error for an unsupported storage backend")
	}
	if !strings.Contains(err.Error(), "unsupported storage") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRootCommand_MissingConfigFile(t *testing.T) {
	stateDir := testEnv(t)

	_, err := runCLI(t, stateDir, "", "logout", "--config", stateDir+"/nope.yaml")
	if err == nil {
		t.Fatal("expected an error for a missing --config file")
	}
}

func TestRootCommand_VerboseFlag(t *testing.T) {
	stateDir := testEnv(t)
	defer internal.SetVerbose(false)

	if _, err := runCLI(t, stateDir, "", "--verbose", "logout"); err != nil {
		t.Fatalf("logout --verbose failed: %v", err)
	}
	if !verbose {
		t.Error("--verbose should be parsed")
	}
}

func TestRootCommand_LogLevelFlag(t *testing.T) {
	stateDir := testEnv(t)
	var logs bytes.Buffer
	internal.SetLogOutput(&logs)
	defer internal.SetLogOutput(os.Stderr)
	defer internal.SetLogLevel(internal.LogLevelInfo)

	if _, err := runCLI(t, stateDir, "", "--log-level", "debug", "logout"); err != nil {
		t.Fatalf("logout --log-level debug failed: %v", err)
	}
	if !strings.Contains(logs.String(), "[DEBUG] No session snapshot found") {
		t.Errorf("debug logging should be on, got %q", logs.String())
	}

	logs.Reset()
	if _, err := runCLI(t, stateDir, "", "--log-level", "warn", "logout"); err != nil {
		t.Fatalf("logout --log-level warn failed: %v", err)
	}
	if strings.Contains(logs.String(), "[DEBUG]") {
		t.Errorf("debug logging should be off, got %q", logs.String())
	}

	_, err := runCLI(t, stateDir, "", "--log-level", "trace", "logout")
	if err == nil || !strings.Contains(err.Error(), "unknown log_level") {
		t.Errorf("--log-level trace: error = %v, want unknown log_level", err)
	}
}
