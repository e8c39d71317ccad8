package cmd

import (
	"fmt"

	"github.com/iksnae/neuralguard/internal"
	"github.com/spf13/cobra"
)

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and remove the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		wasLoggedIn := app.store.IsAuthenticated()

		route, err := app.store.Logout()
		if err != nil {
			return fmt.Errorf("logout failed, the session is still stored: %w", err)
		}
		if !wasLoggedIn {
			internal.PrintInfo(out, "Not logged in")
			return nil
		}
		internal.PrintSuccess(out, fmt.Sprintf("Logged out (returned to %s)", route))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
