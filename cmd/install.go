package cmd

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/jfmyers9/speedrun/internal/config"
	"github.com/jfmyers9/speedrun/internal/launchd"
	"github.com/spf13/cobra"
)

// installCmd represents the install command
var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Run the speedrun server as a launchd agent",
	Long: `Run the speedrun server as a launchd agent that starts on login.

The agent runs 'speedrun serve' with the bind address, port, prefix,
database and log level resolved now, from flags, environment, .env files
and ~/.config/speedrun/config.yaml. Spotify credentials must be saved with
'speedrun auth' first, since launchd does not pass on your shell's
environment.

After loading the agent, install waits for the server's /healthz endpoint
to answer before reporting success (--wait 0 skips the check).`,
	RunE: runInstall,
}

func init() {
	rootCmd.AddCommand(installCmd)

	fs := installCmd.Flags()
	fs.StringP("bind", "b", "0.0.0.0", "address the agent's server binds to")
	fs.IntP("port", "p", 8080, "port the agent's server listens on")
	fs.String("prefix", "", "path to prepend to all URLs, for use behind reverse proxy")
	fs.String("db", "", "SQLite database path (default: ~/.local/share/speedrun/speedrun.db)")
	fs.String("log-level", "info", "Log level (debug, info, warn, error)")
	fs.Duration("wait", 15*time.Second, "how long to wait for the server to become healthy (0 to skip)")
}

func runInstall(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !cfg.HasSpotifyCredentials() {
		return fmt.Errorf("Spotify credentials not configured. Run 'speedrun auth' first")
	}

	agent, err := newAgent(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(agent.LogDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	plist, err := agent.Plist()
	if err != nil {
		return fmt.Errorf("failed to generate plist: %w", err)
	}

	plistPath, err := launchd.GetPlistPath()
	if err != nil {
		return fmt.Errorf("failed to get plist path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(plistPath), 0755); err != nil {
		return fmt.Errorf("failed to create LaunchAgents directory: %w", err)
	}

	// An installed agent is replaced, picking up the new settings
	if _, err := os.Stat(plistPath); err == nil {
		fmt.Println("Replacing installed server agent...")
		unloadAgent()
	}

	if err := os.WriteFile(plistPath, []byte(plist), 0644); err != nil {
		return fmt.Errorf("failed to write plist file: %w", err)
	}
	fmt.Printf("✓ Installed plist to %s\n", plistPath)

	if err := loadAgent(plistPath); err != nil {
		return fmt.Errorf("failed to load agent: %w", err)
	}
	fmt.Printf("✓ Loaded %s: %s\n", launchd.Label, strings.Join(agent.Arguments()[1:], " "))

	wait, _ := cmd.Flags().GetDuration("wait")
	if wait > 0 {
		fmt.Printf("Waiting for %s...\n", agent.HealthURL())

		ctx, cancel := context.WithTimeout(cmd.Context(), wait)
		defer cancel()
		if err := launchd.WaitHealthy(ctx, healthClient(agent), agent.HealthURL(), 250*time.Millisecond); err != nil {
			return fmt.Errorf("%w (see %s)", err, agent.LogFile())
		}
		fmt.Println("✓ Server is healthy")
	}

	fmt.Printf("\nLogs: %s\n", agent.LogFile())
	fmt.Printf("Database: %s\n", cfg.Database.Path)
	fmt.Println("\nPlay against it with:")
	fmt.Printf("  speedrun play --server %s\n", strings.TrimSuffix(agent.HealthURL(), "/healthz"))
	fmt.Println("\nTo uninstall, run:")
	fmt.Println("  speedrun uninstall")

	return nil
}

// newAgent describes the launchd agent serving cfg from this binary
func newAgent(cfg *config.Config) (launchd.Agent, error) {
	binaryPath, err := os.Executable()
	if err != nil {
		return launchd.Agent{}, fmt.Errorf("failed to get executable path: %w", err)
	}
	binaryPath, err = filepath.EvalSymlinks(binaryPath)
	if err != nil {
		return launchd.Agent{}, fmt.Errorf("failed to resolve executable path: %w", err)
	}

	logDir, err := launchd.GetDefaultLogPath()
	if err != nil {
		return launchd.Agent{}, fmt.Errorf("failed to get log path: %w", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return launchd.Agent{}, fmt.Errorf("failed to get home directory: %w", err)
	}

	dbPath, err := filepath.Abs(cfg.Database.Path)
	if err != nil {
		return launchd.Agent{}, fmt.Errorf("failed to resolve database path: %w", err)
	}
	cfg.Database.Path = dbPath

	return launchd.Agent{
		BinaryPath:       binaryPath,
		WorkingDirectory: home,
		LogDir:           logDir,
		Bind:             cfg.Server.Bind,
		Port:             cfg.Server.Port,
		Prefix:           cfg.Server.Prefix,
		DatabasePath:     dbPath,
		LogLevel:         cfg.Log.Level,
		TLSCert:          cfg.Server.TLSCert,
		TLSKey:           cfg.Server.TLSKey,
	}, nil
}

// healthClient checks liveness only; a certificate need not name localhost
func healthClient(agent launchd.Agent) *http.Client {
	client := &http.Client{Timeout: 2 * time.Second}
	if agent.TLS() {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, // #nosec G402
		}
	}
	return client
}

// guiDomain returns the launchctl domain of the current user's GUI session
func guiDomain() string {
	return fmt.Sprintf("gui/%d", os.Getuid())
}

// loadAgent bootstraps the agent into the user's GUI domain
func loadAgent(plistPath string) error {
	output, err := exec.Command("launchctl", "bootstrap", guiDomain(), plistPath).CombinedOutput()
	if err != nil {
		if out := strings.TrimSpace(string(output)); out != "" {
			return fmt.Errorf("launchctl bootstrap failed: %s", out)
		}
		return fmt.Errorf("failed to run launchctl bootstrap: %w", err)
	}
	return nil
}

// unloadAgent boots the agent out. An agent that is not loaded is not an
// error, so launchctl's complaint is only printed.
func unloadAgent() {
	service := guiDomain() + "/" + launchd.Label
	output, err := exec.Command("launchctl", "bootout", service).CombinedOutput()
	if err != nil {
		if out := strings.TrimSpace(string(output)); out != "" {
			fmt.Printf("Warning: %s\n", out)
		}
	}
}
