package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"example.com/grind/internal/api"
	"example.com/grind/internal/tui"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a new grind session",
	Long: `Create a new grind session. Opens an interactive form by default; pass
--title and --subject to create one directly.

Examples:
  grindtimer new
  grindtimer new --title "Integrals" --subject calculus --minutes 50`,
	Run: withApp(func(a *app, cmd *cobra.Command, args []string) {
		title, _ := cmd.Flags().GetString("title")
		subject, _ := cmd.Flags().GetString("subject")
		notes, _ := cmd.Flags().GetString("notes")
		minutes, _ := cmd.Flags().GetInt("minutes")

		if title != "" && subject != "" {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			session, message, err := a.client.CreateSession(ctx, api.CreateSessionRequest{
				Title:    title,
				Subject:  subject,
				Notes:    notes,
				Duration: minutes * 60,
			})
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return
			}
			a.mirror.SetSession(session.ID, session.Title, session.Subject)
			fmt.Printf("%s (id: %s)\n", message, session.ID)
			return
		}

		prefilled := map[string]string{}
		if title != "" {
			prefilled["title"] = title
		}
		if subject != "" {
			prefilled["subject"] = subject
		}
		if notes != "" {
			prefilled["notes"] = notes
		}

		session, err := tui.RunNewSessionTUI(a.client, prefilled)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		if session != nil {
			a.mirror.SetSession(session.ID, session.Title, session.Subject)
		}
	}),
}

func init() {
	newCmd.Flags().String("title", "", "Session title")
	newCmd.Flags().String("subject", "", "Subject being studied")
	newCmd.Flags().String("notes", "", "Free-form notes")
	newCmd.Flags().Int("minutes", 0, "Planned duration in minutes")
}
