package cmd

import (
	"fmt"
	"io"

	"github.com/iksnae/neuralguard/internal"
	"github.com/spf13/cobra"
)

// profileCmd represents the profile command
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the logged in account and its usage history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		displayProfile(cmd.OutOrStdout(), app.store.Session())
		return nil
	},
}

func displayProfile(w io.Writer, session *internal.Session) {
	if session == nil {
		return
	}

	_, _ = fmt.Fprintln(w, sectionStyle.Render("Profile"))
	_, _ = fmt.Fprintf(w, "%s %s %s\n", labelStyle.Render("Name:       "), session.Name, planBadge(session.Plan))
	_, _ = fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Email:      "), session.Email)
	_, _ = fmt.Fprintf(w, "%s %s\n", labelStyle.Render("User ID:    "), session.ID)
	_, _ = fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Member since:"), session.JoinedAt.Format("January 2, 2006"))
	_, _ = fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Last active:"), session.LastActive.Local().Format("2006-01-02 15:04"))
	_, _ = fmt.Fprintln(w)

	_, _ = fmt.Fprintln(w, sectionStyle.Render("Usage History"))
	if len(session.UsageHistory) == 0 {
		_, _ = fmt.Fprintln(w, infoStyle.Render("No activity yet"))
		return
	}
	for _, event := range session.UsageHistory {
		line := fmt.Sprintf("  %s  %s", event.Date.Format("2006-01-02"), event.Action)
		if event.ContractAddress != "" {
			line += "  " + infoStyle.Render(shortAddress(event.ContractAddress))
		}
		_, _ = fmt.Fprintln(w, line)
	}
}

func init() {
	rootCmd.AddCommand(profileCmd)
}
