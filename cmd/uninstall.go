package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/jfmyers9/speedrun/internal/config"
	"github.com/jfmyers9/speedrun/internal/launchd"
	"github.com/spf13/cobra"
)

// uninstallCmd represents the uninstall command
var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Stop the speedrun server agent and remove it from launchd",
	Long: `Stop the speedrun server agent and remove its plist from ~/Library/LaunchAgents/.

The artist catalog, the related-artist cache and every session's play
history stay in the database. Pass --purge to delete the database and the
agent's logs as well.`,
	RunE: runUninstall,
}

func init() {
	rootCmd.AddCommand(uninstallCmd)

	flags := uninstallCmd.Flags()
	flags.Bool("purge", false, "also delete the database and logs")
	flags.String("db", "", "SQLite database path to purge (default: ~/.local/share/speedrun/speedrun.db)")
}

func runUninstall(cmd *cobra.Command, args []string) error {
	plistPath, err := launchd.GetPlistPath()
	if err != nil {
		return fmt.Errorf("failed to get plist path: %w", err)
	}

	switch _, err := os.Stat(plistPath); {
	case errors.Is(err, fs.ErrNotExist):
		fmt.Println("Server agent is not installed")
	case err != nil:
		return fmt.Errorf("failed to check plist: %w", err)
	default:
		unloadAgent()
		if err := os.Remove(plistPath); err != nil {
			return fmt.Errorf("failed to remove plist file: %w", err)
		}
		fmt.Printf("✓ Stopped %s and removed %s\n", launchd.Label, plistPath)
	}

	purge, _ := cmd.Flags().GetBool("purge")
	if !purge {
		fmt.Println("\nThe database was kept; run 'speedrun uninstall --purge' to delete it.")
		return nil
	}

	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logDir, err := launchd.GetDefaultLogPath()
	if err != nil {
		return fmt.Errorf("failed to get log path: %w", err)
	}

	for _, path := range purgePaths(cfg.Database.Path, logDir) {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
		fmt.Printf("✓ Removed %s\n", path)
	}

	return nil
}

// purgePaths lists what --purge deletes: the SQLite database with its WAL
// and shared-memory files, and the log directory
func purgePaths(dbPath, logDir string) []string {
	return []string{dbPath, dbPath + "-wal", dbPath + "-shm", logDir}
}
