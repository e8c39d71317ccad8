package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/iksnae/neuralguard/internal"
	"github.com/spf13/cobra"
)

var (
	verbose       bool
	logLevel      string
	configPath    string
	stateDir      string
	storageKind   string
	loginDelay    time.Duration
	analysisDelay time.Duration
	version       string = "dev"
	commit        string = "unknown"
	date          string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "neuralguard",
	Short: "Smart contract security analysis from the command line",
	Long: `NeuralGuard runs security analysis on smart contracts, either deployed
ones by address or source code you provide, and reports a security score,
the vulnerabilities found and recommended fixes.

Features:
  • Demo account sessions that persist between runs
  • Analyze deployed contracts by address on several networks
  • Analyze Solidity/Vyper source from a file, a flag or stdin
  • Export audit reports (Markdown, JSON, YAML, JSONL)

Quick Start:
  neuralguard login --email demo@example.com --password password
  neuralguard analyze address 0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D
  neuralguard analyze code --file Vault.sol --out report.md
  neuralguard profile`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		internal.SetVerbose(verbose)
		return setupApp(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		internal.PrintError(os.Stderr, fmt.Sprintf("Error: %v", err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (error, warn, info, debug); --verbose means debug")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.neuralguard/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "", "Directory holding the session snapshot (default ~/.neuralguard)")
	rootCmd.PersistentFlags().StringVar(&storageKind, "storage", internal.StorageFile, "Snapshot storage backend (file, sqlite)")
	rootCmd.PersistentFlags().DurationVar(&loginDelay, "login-delay", internal.DefaultLoginDelay, "Simulated login latency")
	rootCmd.PersistentFlags().DurationVar(&analysisDelay, "analysis-delay", internal.DefaultAnalysisDelay, "Simulated analysis latency")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
