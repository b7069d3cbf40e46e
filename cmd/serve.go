package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jfmyers9/speedrun/internal/config"
	"github.com/jfmyers9/speedrun/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the game server",
	Long: `Run the HTTP server that hosts speedrun sessions.

The server will:
- Start sessions between two random artists from the local catalog
- Resolve related artists by racing the SQLite cache against Spotify
- Backfill the cache in the background whenever Spotify's answer is used
- Record every play of every session
- Handle graceful shutdown on SIGINT/SIGTERM

Spotify client credentials are required; see 'speedrun auth'. Every flag
can also be set in ~/.config/speedrun/config.yaml or through SPEEDRUN_*
environment variables.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	fs := serveCmd.Flags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringP("bind", "b", "0.0.0.0", "address to bind to")
	fs.IntP("port", "p", 8080, "port to listen on")
	fs.String("prefix", "", "path to prepend to all URLs, for use behind reverse proxy")
	fs.Bool("profile", false, "register net/http/pprof handlers")
	fs.String("tls-cert", "", "path to tls certificate")
	fs.String("tls-key", "", "path to tls keyfile")
	fs.String("db", "", "SQLite database path (default: ~/.local/share/speedrun/speedrun.db)")
	fs.Int("related-limit", 0, "maximum related artists offered per turn (0=all)")
	fs.Duration("hedge-delay", 50*time.Millisecond, "time the cache gets before Spotify is asked too")
	fs.String("log-file", "", "Log file path (default: stderr)")
	fs.String("log-level", "info", "Log level (debug, info, warn, error)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load configuration
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

	// Set up logging
	logger := setupLogger(cfg.Log.File, cfg.Log.Level)

	logger.Info().
		Str("version", version).
		Str("database", cfg.Database.Path).
		Msg("Starting speedrun server")

	svc, err := openServices(cfg, logger)
	if err != nil {
		return err
	}

	if count, err := svc.store.CountArtists(cmd.Context()); err == nil && count < 2 {
		logger.Warn().
			Int("artists", count).
			Msg("Catalog has fewer than two artists; import some with 'speedrun import' or 'speedrun search --create'")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Config{
		Bind:    cfg.Server.Bind,
		Port:    cfg.Server.Port,
		Prefix:  cfg.Server.Prefix,
		Profile: cfg.Server.Profile,
		TLSCert: cfg.Server.TLSCert,
		TLSKey:  cfg.Server.TLSKey,
		Version: version,
	}, svc.game, logger)

	runErr := srv.Run(ctx)

	// Graceful shutdown
	if err := svc.Close(); err != nil {
		logger.Error().Err(err).Msg("Error during shutdown")
		if runErr == nil {
			runErr = err
		}
	}

	if runErr != nil {
		return runErr
	}

	logger.Info().Msg("Server stopped")
	return nil
}
