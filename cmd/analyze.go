package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/iksnae/neuralguard/internal"
	"github.com/iksnae/neuralguard/internal/export"
	"github.com/spf13/cobra"
)

var (
	analyzeNetwork string
	analyzeFile    string
	analyzeSource  string
	analyzeYes     bool
	analyzeFormat  string
	analyzeOut     string
)

// usageAction is the usage history entry recorded for each analysis
const usageAction = "Contract Analysis"

// analyzeCmd groups the two ways of submitting a contract
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a security analysis on a smart contract",
	Long: `Run a security analysis on a deployed contract (by address) or on
contract source code. Both require a logged in session.

Examples:
  neuralguard analyze address 0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D --network polygon
  neuralguard analyze code --file Vault.sol --out report.md
  cat Vault.sol | neuralguard analyze code --format json --out -`,
}

var analyzeAddressCmd = &cobra.Command{
	Use:   "address <0x...>",
	Short: "Analyze a deployed contract by address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := prepareAnalysis(); err != nil {
			return err
		}

		pending, err := app.analyzer.SubmitAddress(cmd.Context(), args[0], analyzeNetwork)
		if err != nil {
			return err
		}
		return finishAnalysis(cmd, pending, "Analyzing "+shortAddress(args[0]))
	},
}

var analyzeCodeCmd = &cobra.Command{
	Use:   "code",
	Short: "Analyze contract source code",
	Long: `Analyze contract source code read from --file (.sol, .vy, .json),
--source, or stdin when neither is given.

Risky patterns (selfdestruct, delegatecall, owner) are reported before the
source is submitted; on a terminal you are asked to confirm unless --yes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := prepareAnalysis(); err != nil {
			return err
		}

		source, filename, fromStdin, err := readContractSource(cmd)
		if err != nil {
			return err
		}

		advisories := internal.ScanSource(source)
		for _, a := range advisories {
			internal.PrintWarning(cmd.ErrOrStderr(), a.Message)
		}
		if len(advisories) > 0 && !analyzeYes && !fromStdin && internal.IsTerminal(cmd.InOrStdin()) {
			if !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Submit anyway?") {
				internal.PrintInfo(cmd.OutOrStdout(), "Analysis cancelled")
				return nil
			}
		}

		pending, err := app.analyzer.SubmitCode(cmd.Context(), source, filename)
		if err != nil {
			return err
		}
		label := filename
		if label == "" {
			label = "source"
		}
		return finishAnalysis(cmd, pending, "Analyzing "+label)
	},
}

// prepareAnalysis runs the checks that must pass before anything is submitted
func prepareAnalysis() error {
	if err := requireLogin(); err != nil {
		return err
	}
	if analyzeOut != "" {
		if _, err := export.NewExporter(app.config.Format); err != nil {
			return err
		}
	}
	return nil
}

// readContractSource picks the source from --file, --source or stdin
func readContractSource(cmd *cobra.Command) (source, filename string, fromStdin bool, err error) {
	switch {
	case analyzeFile != "" && analyzeSource != "":
		return "", "", false, fmt.Errorf("use either --file or --source, not both")
	case analyzeFile != "":
		source, filename, err = internal.LoadContractFile(analyzeFile)
		return source, filename, false, err
	case analyzeSource != "":
		return analyzeSource, "", false, nil
	}

	in := cmd.InOrStdin()
	if internal.IsTerminal(in) {
		return "", "", false, fmt.Errorf("%w: pass --file, --source or pipe source on stdin", internal.ErrEmptyCodeSubmission)
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", "", true, fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), "", true, nil
}

func confirm(in io.Reader, out io.Writer, question string) bool {
	_, _ = fmt.Fprintf(out, "%s [y/N] ", question)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// finishAnalysis waits for the result, renders it, records the usage event
// and writes the report when --out is set.
func finishAnalysis(cmd *cobra.Command, pending *internal.Pending, message string) error {
	ctx := cmd.Context()

	var result *internal.AnalysisResult
	err := internal.ShowProgress(ctx, message, func() error {
		var waitErr error
		result, waitErr = pending.Wait(ctx)
		return waitErr
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if analyzeOut != "-" {
		displayResult(out, result)
	}

	if err := app.store.RecordUsage(usageAction, result.Target); err != nil {
		internal.LogWarn("Failed to record usage: %v", err)
	}

	if analyzeOut == "" {
		return nil
	}
	return writeReport(out, result, app.config.Format, analyzeOut)
}

func displayResult(w io.Writer, result *internal.AnalysisResult) {
	counts := result.Counts()

	_, _ = fmt.Fprintln(w, sectionStyle.Render("Analysis Result"))
	_, _ = fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Target: "), result.Target)
	if result.Network != "" {
		_, _ = fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Network:"), result.Network)
	}
	_, _ = fmt.Fprintf(w, "%s %s (%s)\n", labelStyle.Render("Score:  "),
		scoreStyle(result.Score).Render(fmt.Sprintf("%d/100", result.Score)), result.Risk())
	_, _ = fmt.Fprintf(w, "%s critical %d, high %d, medium %d, low %d\n", labelStyle.Render("Issues: "),
		counts.Critical, counts.High, counts.Medium, counts.Low)
	_, _ = fmt.Fprintln(w)

	for _, v := range result.Vulnerabilities {
		sev := severityStyles[v.Severity].Render(fmt.Sprintf("%-8s", strings.ToUpper(string(v.Severity))))
		line := fmt.Sprintf("  %s %s", sev, v.Title)
		if v.LineNumber > 0 {
			line += labelStyle.Render(fmt.Sprintf(" (line %d)", v.LineNumber))
		}
		_, _ = fmt.Fprintln(w, line)
	}

	if len(result.Recommendations) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, sectionStyle.Render("Recommendations"))
		for _, r := range result.Recommendations {
			_, _ = fmt.Fprintf(w, "  • %s\n", r.Title)
		}
	}
}

// writeReport exports to path, "-" meaning stdout. A path without an
// extension gets the exporter's.
func writeReport(out io.Writer, result *internal.AnalysisResult, format, path string) error {
	exporter, err := export.NewExporter(format)
	if err != nil {
		return err
	}

	if path == "-" {
		if err := exporter.Export(result, out); err != nil {
			return &internal.ExportError{Format: format, Path: path, Err: err}
		}
		return nil
	}

	if filepath.Ext(path) == "" {
		path = path + "." + exporter.Extension()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &internal.ExportError{Format: format, Path: path, Err: err}
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return &internal.ExportError{Format: format, Path: path, Err: err}
	}
	if err := exporter.Export(result, file); err != nil {
		_ = file.Close()
		return &internal.ExportError{Format: format, Path: path, Err: err}
	}
	if err := file.Close(); err != nil {
		return &internal.ExportError{Format: format, Path: path, Err: err}
	}

	internal.PrintSuccess(out, "Report written to "+path)
	return nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.AddCommand(analyzeAddressCmd)
	analyzeCmd.AddCommand(analyzeCodeCmd)

	analyzeCmd.PersistentFlags().StringVarP(&analyzeFormat, "format", "f", "md", "Report format: md, json, yaml, jsonl")
	analyzeCmd.PersistentFlags().StringVarP(&analyzeOut, "out", "o", "", "Write the report to this path ('-' for stdout)")

	analyzeAddressCmd.Flags().StringVarP(&analyzeNetwork, "network", "n", internal.DefaultNetwork,
		"Network: "+strings.Join(internal.Networks, ", "))

	analyzeCodeCmd.Flags().StringVar(&analyzeFile, "file", "", "Contract file (.sol, .vy, .json)")
	analyzeCodeCmd.Flags().StringVarP(&analyzeSource, "source", "s", "", "Contract source code")
	analyzeCodeCmd.Flags().BoolVarP(&analyzeYes, "yes", "y", false, "Submit without confirming risky patterns")
}
