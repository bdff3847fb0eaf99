package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"example.com/grind/internal/mirror"
	"example.com/grind/internal/tui"
)

// resolveSessionID picks the session from the argument list, falling back to
// the session the mirror last tracked.
func resolveSessionID(a *app, args []string) (string, bool) {
	if len(args) > 0 {
		return args[0], true
	}
	snap := a.mirror.Snapshot()
	if snap.SessionID == "" {
		fmt.Println("No session selected. Pass a session id or create one with 'grindtimer new'.")
		return "", false
	}
	return snap.SessionID, true
}

var startCmd = &cobra.Command{
	Use:   "start [session-id]",
	Short: "Start or resume the timer for a session",
	Long: `Start or resume the server timer. Opens the interactive countdown by
default, use --no-ui for a plain start.`,
	Args: cobra.MaximumNArgs(1),
	Run: withApp(func(a *app, cmd *cobra.Command, args []string) {
		id, ok := resolveSessionID(a, args)
		if !ok {
			return
		}

		noUI, _ := cmd.Flags().GetBool("no-ui")
		if noUI {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			session, message, err := a.client.StartTimer(ctx, id)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return
			}
			a.mirror.SetSession(session.ID, session.Title, session.Subject)
			fmt.Println(message)
			return
		}

		a.mirror.Start(context.Background(), id)
		if err := tui.RunTimerTUI(a.mirror, a.client); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}),
}

var pauseCmd = &cobra.Command{
	Use:   "pause [session-id]",
	Short: "Pause the timer",
	Args:  cobra.MaximumNArgs(1),
	Run: withApp(func(a *app, cmd *cobra.Command, args []string) {
		id, ok := resolveSessionID(a, args)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		a.mirror.Pause()
		_, message, err := a.client.PauseTimer(ctx, id)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Println(message)
	}),
}

var stopCmd = &cobra.Command{
	Use:   "stop [session-id]",
	Short: "Stop the timer and complete the session",
	Args:  cobra.MaximumNArgs(1),
	Run: withApp(func(a *app, cmd *cobra.Command, args []string) {
		id, ok := resolveSessionID(a, args)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		a.mirror.Pause()
		session, message, err := a.client.StopTimer(ctx, id)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		a.mirror.Reset(mirror.DefaultFocusSeconds)
		fmt.Println(message)
		fmt.Printf("Total study time: %s\n", formatStudyTime(session.AccumulatedTime))
	}),
}

var abandonCmd = &cobra.Command{
	Use:   "abandon [session-id]",
	Short: "Abandon the session",
	Args:  cobra.MaximumNArgs(1),
	Run: withApp(func(a *app, cmd *cobra.Command, args []string) {
		id, ok := resolveSessionID(a, args)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		a.mirror.Pause()
		session, message, err := a.client.AbandonTimer(ctx, id)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		a.mirror.Reset(mirror.DefaultFocusSeconds)
		fmt.Println(message)
		fmt.Printf("Recorded study time: %s\n", formatStudyTime(session.AccumulatedTime))
	}),
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the tracked session and server timer state",
	Run: withApp(func(a *app, cmd *cobra.Command, args []string) {
		snap := a.mirror.Snapshot()
		if snap.SessionID == "" {
			fmt.Println("No session selected.")
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		session, _, err := a.client.GetSession(ctx, snap.SessionID)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		fmt.Printf("Session: %s (%s)\n", session.Title, session.Subject)
		fmt.Printf("Status:  %s\n", session.Status)
		fmt.Printf("Studied: %s\n", formatStudyTime(session.AccumulatedTime))
		if session.StartedAt != nil {
			fmt.Printf("Running since: %s\n", session.StartedAt.Local().Format("15:04:05"))
		}
	}),
}

var timerCmd = &cobra.Command{
	Use:   "timer",
	Short: "Open the interactive countdown",
	Run: withApp(func(a *app, cmd *cobra.Command, args []string) {
		if err := tui.RunTimerTUI(a.mirror, a.client); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}),
}

func init() {
	startCmd.Flags().Bool("no-ui", false, "Start timer without interactive UI")
}
