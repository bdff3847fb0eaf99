package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your grind sessions, newest first",
	Run: withApp(func(a *app, cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		sessions, _, err := a.client.ListSessions(ctx)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		if len(sessions) == 0 {
			fmt.Println("No grind sessions yet. Create one with 'grindtimer new'.")
			return
		}

		for _, s := range sessions {
			marker := " "
			if s.Status == "ACTIVE" {
				marker = "▶"
			}
			fmt.Printf("%s %-36s  %-9s  %-8s  %-20s %s\n",
				marker, s.ID, s.Status, formatStudyTime(s.AccumulatedTime), truncate(s.Title, 20), s.Subject)
		}
	}),
}

func formatStudyTime(seconds int) string {
	if seconds >= 3600 {
		return fmt.Sprintf("%dh%02dm", seconds/3600, (seconds%3600)/60)
	}
	if seconds >= 60 {
		return fmt.Sprintf("%dm%02ds", seconds/60, seconds%60)
	}
	return fmt.Sprintf("%ds", seconds)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
