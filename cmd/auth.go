package cmd

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/jfmyers9/speedrun/internal/config"
	"github.com/jfmyers9/speedrun/pkg/spotify"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Configure Spotify API credentials",
	Long: `Configure the Spotify client credentials the server uses to look up
related artists.

This command will:
1. Prompt for your Spotify client id and secret
2. Verify them by requesting an access token
3. Save them to your config file

You can create credentials at: https://developer.spotify.com/dashboard

Credentials can also be supplied through the SPOTIFY_CLIENT_ID and
SPOTIFY_CLIENT_SECRET environment variables or a .env file.`,
	RunE: runAuth,
}

func init() {
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(os.Stdin)

	// Load existing config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Println("Spotify Authentication")
	fmt.Println("======================")
	fmt.Println()
	fmt.Println("You can create credentials at: https://developer.spotify.com/dashboard")
	fmt.Println()

	// Check if we already have credentials
	if cfg.HasSpotifyCredentials() {
		fmt.Printf("Found existing client credentials.\n")
		fmt.Printf("Client ID: %s\n", cfg.Spotify.ClientID)
		fmt.Print("\nUse existing credentials? [Y/n]: ")
		response, err := reader.ReadString('\n')
		if err != nil {
			response = "y"
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "" && response != "y" && response != "yes" {
			cfg.Spotify.ClientID = ""
			cfg.Spotify.ClientSecret = ""
		}
	}

	if cfg.Spotify.ClientID == "" {
		fmt.Print("Enter your Spotify Client ID: ")
		id, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read client id: %w", err)
		}
		cfg.Spotify.ClientID = strings.TrimSpace(id)
	}

	if cfg.Spotify.ClientSecret == "" {
		fmt.Print("Enter your Spotify Client Secret: ")
		secret, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read client secret: %w", err)
		}
		cfg.Spotify.ClientSecret = strings.TrimSpace(secret)
	}

	if !cfg.HasSpotifyCredentials() {
		return fmt.Errorf("client id and secret are required")
	}

	// Verify by requesting a token
	fmt.Println("\nVerifying credentials...")
	client := spotify.NewClient(spotify.Config{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		HTTPClient:   &http.Client{Timeout: cfg.Spotify.RequestTimeout},
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Spotify.RequestTimeout)
	defer cancel()

	if _, err := client.Tokens().ClientCredentials(ctx); err != nil {
		return fmt.Errorf("failed to verify credentials: %w", err)
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	configPath := config.GetConfigDir()
	fmt.Printf("\n✓ Credentials verified!\n")
	fmt.Printf("✓ Saved to %s/config.yaml\n", configPath)
	fmt.Println("\nYou can now use 'speedrun serve' to start the server.")

	return nil
}
