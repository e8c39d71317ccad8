package cmd

import (
	"fmt"

	"github.com/iksnae/neuralguard/internal"
	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with the demo account",
	Long: `Sign in and persist the session so later commands stay logged in.

Only the demo account is accepted:
  neuralguard login --email demo@example.com --password password`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var ok bool
		err := internal.ShowProgress(cmd.Context(), "Signing in...", func() error {
			var loginErr error
			ok, loginErr = app.store.Login(cmd.Context(), loginEmail, loginPassword)
			return loginErr
		})
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w (demo account: %s / %s)", internal.ErrInvalidCredentials,
				internal.DemoEmail, internal.DemoPassword)
		}
		app.nav.Navigate(internal.RouteDashboard)

		session := app.store.Session()
		internal.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Logged in as %s (%s) %s",
			session.Name, session.Email, planBadge(session.Plan)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Account email")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Account password")
}
