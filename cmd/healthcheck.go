package cmd

import (
	"fmt"
	"os"

	"github.com/iksnae/neuralguard/internal"
	"github.com/spf13/cobra"
)

var (
	healthcheckDetails bool
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that neuralguard can read its config and session state",
	Long: `Check the health of neuralguard by verifying:
  • Configuration (file, environment, flags)
  • State directory
  • Snapshot storage access
  • Session state

This command is useful for debugging storage issues, especially in CI/CD environments.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		cfg := app.config

		_, _ = fmt.Fprintln(w, sectionStyle.Render("NeuralGuard Health Check"))
		_, _ = fmt.Fprintln(w)

		// Step 1: Configuration
		_, _ = fmt.Fprintln(w, infoStyle.Render("Step 1: Loading configuration..."))
		_, _ = fmt.Fprintln(w, successStyle.Render("✅ Configuration loaded"))
		if healthcheckDetails {
			_, _ = fmt.Fprintf(w, "   State dir: %s\n", cfg.StateDir)
			_, _ = fmt.Fprintf(w, "   Storage: %s\n", cfg.Storage)
			_, _ = fmt.Fprintf(w, "   Login delay: %s\n", cfg.LoginDelay)
			_, _ = fmt.Fprintf(w, "   Analysis delay: %s\n", cfg.AnalysisDelay)
			_, _ = fmt.Fprintf(w, "   Report format: %s\n", cfg.Format)
		}
		_, _ = fmt.Fprintln(w)

		// Step 2: State directory
		_, _ = fmt.Fprintln(w, infoStyle.Render("Step 2: Checking state directory..."))
		info, err := os.Stat(cfg.StateDir)
		switch {
		case err == nil && info.IsDir():
			_, _ = fmt.Fprintln(w, successStyle.Render("✅ State directory exists"))
		case err == nil:
			_, _ = fmt.Fprintln(w, errorStyle.Render("❌ State path is not a directory:"), cfg.StateDir)
			return fmt.Errorf("health check failed: %s is not a directory", cfg.StateDir)
		case os.IsNotExist(err):
			_, _ = fmt.Fprintln(w, warningStyle.Render("⚠️  State directory not created yet"))
			if healthcheckDetails {
				_, _ = fmt.Fprintln(w, "   It is created on the first login")
			}
		default:
			_, _ = fmt.Fprintln(w, errorStyle.Render("❌ Cannot access state directory:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		_, _ = fmt.Fprintln(w)

		// Step 3: Snapshot storage
		_, _ = fmt.Fprintln(w, infoStyle.Render("Step 3: Testing snapshot storage access..."))
		snapshots, err := internal.NewSnapshotStore(cfg.Storage, cfg.StateDir)
		if err != nil {
			_, _ = fmt.Fprintln(w, errorStyle.Render("❌ Failed to initialize snapshot storage:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		// Load never creates the database or its directory
		_, found, err := snapshots.Load()
		if err != nil {
			_, _ = fmt.Fprintln(w, errorStyle.Render("❌ Failed to read snapshot:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		if found {
			_, _ = fmt.Fprintln(w, successStyle.Render(fmt.Sprintf("✅ %s storage readable", cfg.Storage)))
		} else {
			_, _ = fmt.Fprintln(w, successStyle.Render(fmt.Sprintf("✅ %s storage readable, no snapshot stored yet", cfg.Storage)))
		}
		if healthcheckDetails {
			switch s := snapshots.(type) {
			case *internal.FileSnapshotStore:
				_, _ = fmt.Fprintf(w, "   File: %s\n", s.Path())
			case *internal.SQLiteSnapshotStore:
				_, _ = fmt.Fprintf(w, "   Database: %s\n", s.Path())
			}
		}
		_, _ = fmt.Fprintln(w)

		// Step 4: Session, as restored when this command started
		_, _ = fmt.Fprintln(w, infoStyle.Render("Step 4: Checking session..."))
		switch app.restored {
		case internal.RestoreRestored:
			_, _ = fmt.Fprintln(w, successStyle.Render(fmt.Sprintf("✅ Logged in as %s", app.store.Session().Email)))
		case internal.RestoreDiscarded:
			_, _ = fmt.Fprintln(w, warningStyle.Render("⚠️  Unreadable session snapshot was discarded, log in again"))
		case internal.RestoreFailed:
			_, _ = fmt.Fprintln(w, errorStyle.Render("❌ Session snapshot could not be read"))
			return fmt.Errorf("health check failed: session snapshot could not be read")
		default:
			_, _ = fmt.Fprintln(w, warningStyle.Render("⚠️  Not logged in"))
		}
		_, _ = fmt.Fprintln(w)

		_, _ = fmt.Fprintln(w, sectionStyle.Render("📊 Summary"))
		_, _ = fmt.Fprintln(w, successStyle.Render("✅ Health check passed!"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVarP(&healthcheckDetails, "details", "d", false, "Show detailed diagnostic information")
}
