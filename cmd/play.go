package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/jfmyers9/speedrun/internal/client"
	"github.com/jfmyers9/speedrun/internal/tui"
	"github.com/spf13/cobra"
)

// playCmd represents the play command
var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the game in the terminal",
	Long: `Play Related Artists Speedrun in a terminal UI against a running server.

Press 's' to start a session. Pick related artists with the arrow keys and
enter until you reach the end artist. The timer only runs while it is your
turn to pick.

Keys:
  s      start a new session
  enter  pick the highlighted artist
  1-9    jump back to an earlier guess
  r      reset
  q      quit`,
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().String("server", "http://localhost:8080", "Base URL of the speedrun server, including any prefix")
	playCmd.Flags().Duration("timeout", 30*time.Second, "Timeout for each request to the server")
}

func runPlay(cmd *cobra.Command, args []string) error {
	server, _ := cmd.Flags().GetString("server")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	server = strings.TrimSuffix(strings.TrimSpace(server), "/")
	if server == "" {
		return fmt.Errorf("--server must not be empty")
	}

	c := client.New(server, nil)

	cfg := tui.DefaultConfig()
	if timeout > 0 {
		cfg.RequestTimeout = timeout
	}

	app := tui.New(c, cfg)
	if err := app.Run(cmd.Context()); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	return nil
}
