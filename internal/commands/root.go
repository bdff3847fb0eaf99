package commands

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"example.com/grind/internal/client"
	"example.com/grind/internal/mirror"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "grindtimer",
	Short: "A terminal companion for grind study sessions",
	Long: `grindtimer is the terminal client for the grind session service.
Create study sessions, run the pomodoro countdown, and control the
server-side timer without leaving the terminal.`,
}

// app bundles the REST client and the local timer mirror a command needs.
type app struct {
	client *client.Client
	mirror *mirror.Mirror
}

// newApp wires the client from environment config and restores the persisted
// mirror state.
func newApp() (*app, error) {
	baseURL := os.Getenv("GRIND_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	token := os.Getenv("GRIND_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("GRIND_TOKEN is not set")
	}

	statePath, err := mirror.DefaultStatePath()
	if err != nil {
		return nil, err
	}
	store, err := mirror.OpenStore(statePath)
	if err != nil {
		return nil, err
	}

	apiClient := client.New(baseURL, token)
	logger := zerolog.New(os.Stderr).Level(zerolog.WarnLevel).With().Timestamp().Logger()

	m, err := mirror.New(store, apiClient, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &app{client: apiClient, mirror: m}, nil
}

func (a *app) close() {
	if err := a.mirror.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
}

// withApp wraps a command function so wiring failures are reported uniformly.
func withApp(fn func(*app, *cobra.Command, []string)) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		a, err := newApp()
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		defer a.close()
		fn(a, cmd, args)
	}
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("grindtimer %s (commit %s, built %s)\n", version, commit, date)
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(abandonCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(timerCmd)
	rootCmd.AddCommand(versionCmd)
}
