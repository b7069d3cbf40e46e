package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jfmyers9/speedrun/internal/catalog"
	"github.com/jfmyers9/speedrun/internal/config"
	"github.com/jfmyers9/speedrun/internal/game"
	"github.com/jfmyers9/speedrun/internal/resolver"
	"github.com/jfmyers9/speedrun/internal/store"
	"github.com/jfmyers9/speedrun/pkg/spotify"
	"github.com/rs/zerolog"
)

// services is the server-side object graph shared by the commands that
// work on the local database.
type services struct {
	store    *store.Store
	catalog  *catalog.Client
	backfill *resolver.Backfiller
	resolver *resolver.Resolver
	game     *game.Service
}

// spotifyLogger adapts zerolog to the Spotify client's Logger
type spotifyLogger struct {
	logger zerolog.Logger
}

func (l spotifyLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

func openServices(cfg *config.Config, logger zerolog.Logger) (*services, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	spotifyClient := spotify.NewClient(spotify.Config{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		HTTPClient:   &http.Client{Timeout: cfg.Spotify.RequestTimeout},
		Logger:       spotifyLogger{logger: logger.With().Str("component", "spotify").Logger()},
	})

	cat := catalog.New(spotifyClient, cfg.Spotify.SearchInterval, logger)
	backfill := resolver.NewBackfiller(st, cfg.Game.BackfillQueue, logger)
	res := resolver.New(resolver.Config{HedgeDelay: cfg.Game.HedgeDelay}, st, cat, backfill, logger)
	g := game.New(game.Config{RelatedLimit: cfg.Game.RelatedLimit}, st, cat, res, logger)

	return &services{
		store:    st,
		catalog:  cat,
		backfill: backfill,
		resolver: res,
		game:     g,
	}, nil
}

// Close drains pending cache writes, then closes the database.
func (s *services) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	drainErr := s.backfill.Close(ctx)
	if err := s.store.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	if drainErr != nil {
		return fmt.Errorf("failed to drain backfill queue: %w", drainErr)
	}
	return nil
}

// setupLogger creates a logger with the specified configuration
func setupLogger(logFile, logLevel string) zerolog.Logger {
	// Parse log level
	level := zerolog.InfoLevel
	switch logLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	// Set up output
	var output *os.File
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			output = os.Stderr
		} else {
			output = f
		}
	} else {
		output = os.Stderr
	}

	// Create logger
	logger := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	// Use pretty console output if logging to stderr
	if output == os.Stderr {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	return logger
}
