package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "speedrun",
	Short: "Related Artists Speedrun",
	Long: `speedrun is a guessing game played across Spotify's related artists.

A session starts on one random artist and ends on another. Each turn offers
the related artists of your current pick; find a path to the end artist as
fast as you can.

The server keeps a SQLite cache of related artists and races it against the
Spotify Web API, so artists seen before come back instantly. Use 'serve' to
run the server and 'play' to play in the terminal.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}
